package analyzer

import "bob/internal/domain"

// Detect classifies code by counting matches of each language's signature
// pattern. The highest count wins, ties go to the earlier language in
// DetectionOrder, and a buffer with no matches at all is unknown.
func (a *Analyzer) Detect(code string) domain.Language {
	best := domain.LangUnknown
	bestCount := 0
	for _, rule := range a.rules.detection {
		count := len(rule.pattern.FindAllStringIndex(code, -1))
		if count > bestCount {
			best = rule.lang
			bestCount = count
		}
	}
	return best
}

// DetectionScores returns the match count for every language with a
// detection pattern.
func (a *Analyzer) DetectionScores(code string) map[domain.Language]int {
	scores := make(map[domain.Language]int, len(a.rules.detection))
	for _, rule := range a.rules.detection {
		scores[rule.lang] = len(rule.pattern.FindAllStringIndex(code, -1))
	}
	return scores
}
