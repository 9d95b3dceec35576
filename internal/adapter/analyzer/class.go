package analyzer

import (
	"fmt"

	"bob/internal/domain"
)

// ExtractClasses finds class definitions and the methods in each body.
// Python bodies are cut by indentation, java and cpp bodies by brace
// matching. Other languages have no class rule and yield an empty slice.
//
// An unterminated brace body fails the whole call with an error wrapping
// *UnbalancedBlockError, whose Offset is the opening brace's position in code.
func (a *Analyzer) ExtractClasses(code string, lang domain.Language) ([]domain.ClassSpec, error) {
	classes := make([]domain.ClassSpec, 0)
	rule, ok := a.rules.classes[lang]
	if !ok {
		return classes, nil
	}

	for _, loc := range rule.pattern.FindAllStringSubmatchIndex(code, -1) {
		name := group(code, loc, 1)

		var body string
		switch rule.block {
		case indentBlock:
			body = IndentedBlock(code[loc[1]:], lineDepth(code, loc[0]))
		case bracketBlock:
			var err error
			body, err = BracketedBlock(code[loc[0]:])
			if err != nil {
				if ube, ok := err.(*UnbalancedBlockError); ok && ube.Offset >= 0 {
					// report the brace position within code, not the slice
					err = &UnbalancedBlockError{Offset: loc[0] + ube.Offset, Depth: ube.Depth}
				}
				return nil, fmt.Errorf("class %s: %w", name, err)
			}
		}

		classes = append(classes, domain.ClassSpec{
			Name:    name,
			Methods: a.ExtractFunctions(body, lang),
		})
	}
	return classes, nil
}
