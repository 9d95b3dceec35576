package usecase

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"bob/internal/domain"
	"bob/internal/port"
)

// MinSymbolScore is the lowest Jaro-Winkler similarity reported for a name
// that does not contain the query.
const MinSymbolScore = 0.7

// SymbolSearch finds stored classes, methods and functions by name.
type SymbolSearch struct {
	store port.AnalysisStore
}

func NewSymbolSearch(store port.AnalysisStore) *SymbolSearch {
	return &SymbolSearch{store: store}
}

// Search ranks symbols by similarity to query. Names containing the query
// (ignoring case) come first, then the rest by Jaro-Winkler score.
func (s *SymbolSearch) Search(query string, limit int) ([]domain.ScoredSymbol, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []domain.ScoredSymbol{}, nil
	}

	symbols, err := s.store.GetAllSymbols()
	if err != nil {
		return nil, err
	}

	type candidate struct {
		scored    domain.ScoredSymbol
		substring bool
	}
	var candidates []candidate
	for _, sym := range symbols {
		name := strings.ToLower(sym.Name)
		score := similarity(query, name)
		substring := strings.Contains(name, query)
		if !substring && score < MinSymbolScore {
			continue
		}
		candidates = append(candidates, candidate{
			scored:    domain.ScoredSymbol{Symbol: sym, Score: score},
			substring: substring,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.substring != b.substring {
			return a.substring
		}
		if a.scored.Score != b.scored.Score {
			return a.scored.Score > b.scored.Score
		}
		if a.scored.Symbol.Name != b.scored.Symbol.Name {
			return a.scored.Symbol.Name < b.scored.Symbol.Name
		}
		return a.scored.Symbol.ID < b.scored.Symbol.ID
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	paths := make(map[string]string)
	results := make([]domain.ScoredSymbol, 0, len(candidates))
	for _, c := range candidates {
		path, ok := paths[c.scored.Symbol.DocID]
		if !ok {
			if doc, err := s.store.GetDoc(c.scored.Symbol.DocID); err == nil {
				path = doc.Path
			}
			paths[c.scored.Symbol.DocID] = path
		}
		c.scored.Path = path
		results = append(results, c.scored)
	}
	return results, nil
}

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0.0
	}
	return float64(score)
}
