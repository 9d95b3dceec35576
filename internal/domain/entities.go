package domain

import "time"

// Language is one of the languages the analyzer recognizes by name.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangJava       Language = "java"
	LangCpp        Language = "cpp"
	LangRust       Language = "rust"
	LangGo         Language = "go"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangCSharp     Language = "csharp"
	LangSwift      Language = "swift"
	LangUnknown    Language = "unknown"
)

// UnknownReturnType is reported when no return type can be determined.
const UnknownReturnType = "unknown"

// FunctionSignature is a function or method found in source.
type FunctionSignature struct {
	Name       string   `json:"name"`
	Parameters []string `json:"parameters"`
	ReturnType string   `json:"return_type"`
}

// ClassSpec is a class definition and the methods found in its body.
type ClassSpec struct {
	Name    string              `json:"name"`
	Methods []FunctionSignature `json:"methods"`
}

// CodeStructure is the result of analyzing one buffer.
//
// Functions is a scan of the whole buffer, so it also contains every
// method already listed under Classes. Variables and Dependencies are
// reserved and always empty.
type CodeStructure struct {
	Language     Language            `json:"language"`
	Imports      []string            `json:"imports"`
	Classes      []ClassSpec         `json:"classes"`
	Functions    []FunctionSignature `json:"functions"`
	Variables    []string            `json:"variables"`
	Dependencies []string            `json:"dependencies"`
}

// Document is a stored source file.
type Document struct {
	ID       string
	Path     string
	ModTime  time.Time
	Lang     Language
	Hash     uint64
	Size     int64
	Complete bool
}

type Stats struct {
	TotalDocs      int `json:"total_docs"`
	TotalFunctions int `json:"total_functions"`
	TotalClasses   int `json:"total_classes"`
	Incomplete     int `json:"incomplete"`
}

type Symbol struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Parent     string   `json:"parent,omitempty"`
	DocID      string   `json:"doc_id"`
	Lang       Language `json:"lang"`
	Parameters []string `json:"parameters,omitempty"`
	ReturnType string   `json:"return_type,omitempty"`
}

type ScoredSymbol struct {
	Symbol Symbol  `json:"symbol"`
	Path   string  `json:"path"`
	Score  float64 `json:"score"`
}
