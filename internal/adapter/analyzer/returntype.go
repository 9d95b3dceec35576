package analyzer

import (
	"regexp"
	"strings"

	"bob/internal/domain"
)

var (
	returnStmt   = regexp.MustCompile(`(?m)\breturn[ \t]+([^\n]+)`)
	stringLit    = regexp.MustCompile(`^[rRbBuUfF]{0,2}["']`)
	intLit       = regexp.MustCompile(`^[+-]?(?:0[xX][0-9a-fA-F_]+|0[oO][0-7_]+|0[bB][01_]+|\d[\d_]*)$`)
	floatLit     = regexp.MustCompile(`^[+-]?(?:(?:\d[\d_]*\.[\d_]*|\.\d[\d_]*)(?:[eE][+-]?\d+)?|\d[\d_]*[eE][+-]?\d+)$`)
	trailComment = regexp.MustCompile(`\s+#.*$`)
)

// InferReturnType guesses the return type of the first python function
// named name in code. A `-> T:` annotation wins and is returned verbatim;
// otherwise the first `return` expression in the body is classified by
// shape. Other languages, and functions without any return statement,
// report "unknown".
func (a *Analyzer) InferReturnType(code, name string, lang domain.Language) string {
	if lang != domain.LangPython {
		return domain.UnknownReturnType
	}

	rule := a.rules.functions[domain.LangPython]
	for _, loc := range rule.pattern.FindAllStringSubmatchIndex(code, -1) {
		if group(code, loc, rule.nameGroups[0]) != name {
			continue
		}
		if annotation := strings.TrimSpace(group(code, loc, rule.annotationGroup)); annotation != "" {
			return annotation
		}

		body := IndentedBlock(code[loc[1]:], lineDepth(code, loc[0]))
		ret := returnStmt.FindStringSubmatch(body)
		if ret == nil {
			return domain.UnknownReturnType
		}
		return classifyPythonValue(ret[1])
	}
	return domain.UnknownReturnType
}

// classifyPythonValue maps the shape of a return expression to a coarse
// type name.
func classifyPythonValue(expr string) string {
	expr = strings.TrimSpace(expr)
	if stringLit.MatchString(expr) {
		return "str"
	}
	expr = strings.TrimSuffix(trailComment.ReplaceAllString(expr, ""), ";")

	switch {
	case expr == "True" || expr == "False":
		return "bool"
	case expr == "None":
		return "None"
	case intLit.MatchString(expr):
		return "int"
	case floatLit.MatchString(expr):
		return "float"
	case strings.HasPrefix(expr, "["):
		return "list"
	case strings.HasPrefix(expr, "{"):
		return "dict"
	case strings.HasPrefix(expr, "(") && (expr == "()" || strings.Contains(expr, ",")):
		return "tuple"
	}
	return domain.UnknownReturnType
}
