package port

import "bob/internal/domain"

type AnalysisStore interface {
	PutAnalysis(doc domain.Document, structure domain.CodeStructure) error

	GetDoc(id string) (domain.Document, error)

	GetDocByPath(path string) (domain.Document, error)

	ListDocs() ([]domain.Document, error)

	GetStructure(docID string) (domain.CodeStructure, error)

	DeleteDoc(id string) error

	GetAllSymbols() ([]domain.Symbol, error)

	GetStats() (domain.Stats, error)

	UpdateStats(stats domain.Stats) error

	Close() error
}
