package document

import (
	"path/filepath"
	"strings"
)

// languageByExtension maps lowercased file extensions (without the
// dot) to language tags. Extensions absent from the table fall back to
// the raw extension string as the tag.
var languageByExtension = map[string]string{
	"go":    "go",
	"py":    "python",
	"js":    "javascript",
	"mjs":   "javascript",
	"jsx":   "javascriptreact",
	"ts":    "typescript",
	"tsx":   "typescriptreact",
	"rs":    "rust",
	"rb":    "ruby",
	"java":  "java",
	"c":     "c",
	"h":     "c",
	"cpp":   "cpp",
	"cc":    "cpp",
	"hpp":   "cpp",
	"cs":    "csharp",
	"php":   "php",
	"zig":   "zig",
	"swift": "swift",
	"kt":    "kotlin",
	"lua":   "lua",
	"sh":    "shell",
	"bash":  "shell",
	"html":  "html",
	"css":   "css",
	"json":  "json",
	"yaml":  "yaml",
	"yml":   "yaml",
	"toml":  "toml",
	"md":    "markdown",
	"sql":   "sql",
	"xml":   "xml",
	"txt":   "plaintext",
}

// DetectLanguage maps a file path to its language tag using the
// built-in extension table. Unknown extensions become the tag
// themselves; files without an extension use the lowercased base name.
func DetectLanguage(path string) string {
	return detectLanguage(path, nil)
}

// detectLanguage consults overrides before the built-in table.
// Override keys are extensions without the dot.
func detectLanguage(path string, overrides map[string]string) string {
	base := filepath.Base(path)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))

	// Dotfiles like .gitignore have no extension, only a name.
	if ext == "" || "."+ext == strings.ToLower(base) {
		return strings.ToLower(base)
	}
	if tag, ok := overrides[ext]; ok {
		return tag
	}
	if tag, ok := languageByExtension[ext]; ok {
		return tag
	}
	return ext
}
