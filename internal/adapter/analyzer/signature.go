package analyzer

import "bob/internal/domain"

// ExtractFunctions finds function definitions in code, in source order.
// Python uses the def pattern, javascript the function/arrow pattern and
// every other language (unknown included) the generic modifier-type-name
// pattern. Duplicate names are kept, and every generic match counts, so
// statements shaped like a declaration ("return f(x)", "else if (y)") are
// reported as functions too.
func (a *Analyzer) ExtractFunctions(code string, lang domain.Language) []domain.FunctionSignature {
	rule := a.rules.functionRule(lang)
	matches := rule.pattern.FindAllStringSubmatchIndex(code, -1)

	functions := make([]domain.FunctionSignature, 0, len(matches))
	for _, loc := range matches {
		name := firstGroup(code, loc, rule.nameGroups)
		if name == "" {
			continue
		}

		returnType := domain.UnknownReturnType
		if rule.inferReturn {
			returnType = a.InferReturnType(code, name, lang)
		}

		functions = append(functions, domain.FunctionSignature{
			Name:       name,
			Parameters: splitParams(firstGroup(code, loc, rule.paramGroups)),
			ReturnType: returnType,
		})
	}
	return functions
}
