package analyzer

import (
	"strings"

	"bob/internal/domain"
)

// Analyzer extracts code structure with regex and bracket heuristics.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	rules *Rules
}

// New creates an analyzer over the default rule table.
func New() *Analyzer {
	return NewWithRules(DefaultRules())
}

// NewWithRules creates an analyzer over rules. rules must not be modified
// afterwards.
func NewWithRules(rules *Rules) *Analyzer {
	return &Analyzer{rules: rules}
}

// Analyze detects the language when lang is empty, then extracts imports,
// classes and functions from code.
//
// An *UnbalancedBlockError from class extraction is returned together with
// a partial structure: language, imports and functions are filled in and
// Classes is empty.
func (a *Analyzer) Analyze(code string, lang domain.Language) (domain.CodeStructure, error) {
	if lang == "" {
		lang = a.Detect(code)
	}

	structure := domain.CodeStructure{
		Language:     lang,
		Imports:      a.ExtractImports(code, lang),
		Classes:      []domain.ClassSpec{},
		Functions:    a.ExtractFunctions(code, lang),
		Variables:    []string{},
		Dependencies: []string{},
	}

	classes, err := a.ExtractClasses(code, lang)
	if err != nil {
		return structure, err
	}
	structure.Classes = classes
	return structure, nil
}

// ExtractImports returns raw import captures. Languages without an import
// rule yield an empty slice.
func (a *Analyzer) ExtractImports(code string, lang domain.Language) []string {
	imports := make([]string, 0)
	rule, ok := a.rules.imports[lang]
	if !ok {
		return imports
	}

	for _, loc := range rule.pattern.FindAllStringSubmatchIndex(code, -1) {
		for n := 1; n <= rule.pattern.NumSubexp(); n++ {
			if s := strings.TrimSpace(group(code, loc, n)); s != "" {
				imports = append(imports, s)
				break
			}
		}
	}
	return imports
}
