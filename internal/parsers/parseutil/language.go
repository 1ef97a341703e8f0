package parseutil

import (
	"path/filepath"
	"strings"
)

// extLanguages maps file extensions to language names.
var extLanguages = map[string]string{
	".go":       "go",
	".js":       "javascript",
	".jsx":      "javascript",
	".mjs":      "javascript",
	".cjs":      "javascript",
	".ts":       "typescript",
	".tsx":      "typescript",
	".py":       "python",
	".rb":       "ruby",
	".java":     "java",
	".c":        "c",
	".h":        "c",
	".cpp":      "cpp",
	".cc":       "cpp",
	".hpp":      "cpp",
	".cs":       "csharp",
	".php":      "php",
	".rs":       "rust",
	".swift":    "swift",
	".kt":       "kotlin",
	".sh":       "shell",
	".bash":     "shell",
	".json":     "json",
	".html":     "html",
	".htm":      "html",
	".md":       "markdown",
	".markdown": "markdown",
	".txt":      "text",
	".yml":      "yaml",
	".yaml":     "yaml",
	".toml":     "toml",
}

// DetectLanguage returns the language name for a file path, or "" when the
// extension is unknown.
func DetectLanguage(path string) string {
	return extLanguages[strings.ToLower(filepath.Ext(path))]
}

// TitleFromPath derives a human-readable title from a filename:
// extension stripped, separators turned into spaces.
func TitleFromPath(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
