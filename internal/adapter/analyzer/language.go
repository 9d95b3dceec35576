package analyzer

import (
	"path/filepath"
	"strings"

	"bob/internal/domain"
)

// Languages lists every named language in canonical order.
var Languages = []domain.Language{
	domain.LangPython,
	domain.LangJavaScript,
	domain.LangJava,
	domain.LangCpp,
	domain.LangRust,
	domain.LangGo,
	domain.LangRuby,
	domain.LangPHP,
	domain.LangCSharp,
	domain.LangSwift,
}

var languageExtensions = map[domain.Language][]string{
	domain.LangPython:     {".py"},
	domain.LangJavaScript: {".js", ".jsx", ".ts", ".tsx"},
	domain.LangJava:       {".java"},
	domain.LangCpp:        {".cpp", ".hpp", ".cc", ".h"},
	domain.LangRust:       {".rs"},
	domain.LangGo:         {".go"},
	domain.LangRuby:       {".rb"},
	domain.LangPHP:        {".php"},
	domain.LangCSharp:     {".cs"},
	domain.LangSwift:      {".swift"},
}

var extensionLanguages = func() map[string]domain.Language {
	m := make(map[string]domain.Language)
	for lang, exts := range languageExtensions {
		for _, ext := range exts {
			m[ext] = lang
		}
	}
	return m
}()

// Extensions returns the file extensions recognized for lang.
func Extensions(lang domain.Language) []string {
	exts := languageExtensions[lang]
	out := make([]string, len(exts))
	copy(out, exts)
	return out
}

// AllExtensions returns every recognized extension in canonical language order.
func AllExtensions() []string {
	var out []string
	for _, lang := range Languages {
		out = append(out, languageExtensions[lang]...)
	}
	return out
}

// LanguageForExtension maps an extension (with or without the dot) to a language.
func LanguageForExtension(ext string) domain.Language {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	return domain.LangUnknown
}

// LanguageForPath maps a file path to a language by its extension.
func LanguageForPath(path string) domain.Language {
	return LanguageForExtension(filepath.Ext(path))
}

// ParseLanguage resolves a language name. The second result is false for
// names outside the supported set.
func ParseLanguage(name string) (domain.Language, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "unknown":
		return domain.LangUnknown, true
	case "js":
		return domain.LangJavaScript, true
	case "c++":
		return domain.LangCpp, true
	case "c#", "cs":
		return domain.LangCSharp, true
	case "golang":
		return domain.LangGo, true
	}
	for _, lang := range Languages {
		if string(lang) == name {
			return lang, true
		}
	}
	return domain.LangUnknown, false
}
