package ir

import (
	"path"
	"strings"
)

// Language identifies the source language of a walked file.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangUnknown    Language = "unknown"
)

// KnownLanguages lists the languages the extractor understands, in report order.
var KnownLanguages = []Language{LangPython, LangJavaScript, LangTypeScript}

// DetectLanguage maps a file extension to a Language.
// Both .ts and .tsx are reported as TypeScript.
func DetectLanguage(p string) Language {
	switch strings.ToLower(path.Ext(p)) {
	case ".py":
		return LangPython
	case ".js", ".mjs", ".cjs":
		return LangJavaScript
	case ".ts", ".tsx":
		return LangTypeScript
	default:
		return LangUnknown
	}
}

// FullySupported reports whether every detector, including documentation
// and testing-gap analysis, applies to the language.
func (l Language) FullySupported() bool {
	return l == LangPython
}

// Known reports whether the extractor can produce functions for l.
func (l Language) Known() bool {
	switch l {
	case LangPython, LangJavaScript, LangTypeScript:
		return true
	}
	return false
}

func (l Language) String() string {
	return string(l)
}
