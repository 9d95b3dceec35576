package analyzer

import (
	"regexp"
	"strings"

	"bob/internal/domain"
)

type blockMode int

const (
	indentBlock blockMode = iota
	bracketBlock
)

type detectionRule struct {
	lang    domain.Language
	pattern *regexp.Regexp
}

// functionRule describes one pattern family. Alternative capture groups
// are listed in priority order; the first non-empty one wins.
type functionRule struct {
	pattern     *regexp.Regexp
	nameGroups  []int
	paramGroups []int
	// annotationGroup is the python return annotation, 0 when absent.
	annotationGroup int
	inferReturn     bool
}

type classRule struct {
	pattern *regexp.Regexp
	block   blockMode
}

type importRule struct {
	pattern *regexp.Regexp
}

// Rules is the per-language pattern table. It is built once and shared
// read-only by every Analyzer.
type Rules struct {
	detection []detectionRule
	functions map[domain.Language]*functionRule
	generic   *functionRule
	classes   map[domain.Language]classRule
	imports   map[domain.Language]importRule
}

var defaultRules = buildRules()

// DefaultRules returns the process-wide rule table.
func DefaultRules() *Rules {
	return defaultRules
}

// DetectionOrder returns the languages that detection can return, in
// tie-break order.
func (r *Rules) DetectionOrder() []domain.Language {
	out := make([]domain.Language, len(r.detection))
	for i, d := range r.detection {
		out[i] = d.lang
	}
	return out
}

func (r *Rules) functionRule(lang domain.Language) *functionRule {
	if fr, ok := r.functions[lang]; ok {
		return fr
	}
	return r.generic
}

func buildRules() *Rules {
	javaClass := `(?:public|private|protected)?\s*\bclass\s+(\w+)(?:\s+extends\s+\w+)?(?:\s+implements\s+[^{]+)?\s*\{`
	cppClass := `(?:public|private|protected)?\s*\bclass\s+(\w+)(?:\s*:\s*[^{;]+)?\s*\{`

	return &Rules{
		// Order matters: ties go to the earliest entry.
		detection: []detectionRule{
			{domain.LangPython, regexp.MustCompile(`import\s+|def\s+|class\s+|if\s+__name__\s*==\s*['"]__main__['"]`)},
			{domain.LangJavaScript, regexp.MustCompile(`const\s+|let\s+|function\s+|=>|import\s+from|export\s+`)},
			{domain.LangJava, regexp.MustCompile(`public\s+class|private\s+|protected\s+|import\s+java\.`)},
			{domain.LangCpp, regexp.MustCompile(`#include\s+<|std::|namespace\s+|template\s*<`)},
			{domain.LangRust, regexp.MustCompile(`fn\s+main|let\s+mut|impl\s+|use\s+std::`)},
			{domain.LangGo, regexp.MustCompile(`package\s+main|func\s+|import\s+\(|type\s+struct`)},
		},
		functions: map[domain.Language]*functionRule{
			domain.LangPython: {
				pattern:         regexp.MustCompile(`def\s+(\w+)\s*\(([^)]*)\)\s*(?:->\s*([^:]+))?:`),
				nameGroups:      []int{1},
				paramGroups:     []int{2},
				annotationGroup: 3,
				inferReturn:     true,
			},
			domain.LangJavaScript: {
				pattern:     regexp.MustCompile(`function\s+(\w+)\s*\(([^)]*)\)|const\s+(\w+)\s*=\s*(?:\(([^)]*)\)|(\w+))\s*=>`),
				nameGroups:  []int{1, 3},
				paramGroups: []int{2, 4, 5},
			},
		},
		generic: &functionRule{
			pattern:     regexp.MustCompile(`(?:public|private|protected)?\s*(?:static\s+)?([\w<>\[\]]+)\s+(\w+)\s*\(([^)]*)\)`),
			nameGroups:  []int{2},
			paramGroups: []int{3},
		},
		classes: map[domain.Language]classRule{
			domain.LangPython: {regexp.MustCompile(`\bclass\s+(\w+)(?:\([^)]*\))?\s*:`), indentBlock},
			domain.LangJava:   {regexp.MustCompile(javaClass), bracketBlock},
			domain.LangCpp:    {regexp.MustCompile(cppClass), bracketBlock},
		},
		imports: map[domain.Language]importRule{
			domain.LangPython:     {regexp.MustCompile(`\bimport\s+([\w.]+)|\bfrom\s+([\w.]+)\s+import\b`)},
			domain.LangJavaScript: {regexp.MustCompile(`import\s+\{\s*([^}]+)\}\s*from|require\(\s*['"]([^'"]+)['"]\s*\)`)},
		},
	}
}

// group returns capture group n of a submatch index slice, or "" when
// the group did not participate.
func group(code string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return code[loc[2*n]:loc[2*n+1]]
}

func firstGroup(code string, loc []int, groups []int) string {
	for _, n := range groups {
		if s := group(code, loc, n); s != "" {
			return s
		}
	}
	return ""
}

// splitParams splits a raw parameter list on commas, dropping empty pieces.
func splitParams(raw string) []string {
	params := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			params = append(params, p)
		}
	}
	return params
}
