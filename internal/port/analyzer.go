package port

import "bob/internal/domain"

// CodeAnalyzer turns a source buffer into a CodeStructure. An empty
// language asks the analyzer to detect one.
type CodeAnalyzer interface {
	Analyze(code string, lang domain.Language) (domain.CodeStructure, error)
}
