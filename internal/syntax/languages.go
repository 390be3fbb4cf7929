package syntax

import (
	"sort"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// languageFor returns the grammar for a language tag, or nil when the
// tag has no registered grammar. Tags follow the extension mapping in
// the document package; C shares the C++ grammar.
func languageFor(tag string) *tree_sitter.Language {
	switch tag {
	case "go":
		return tree_sitter.NewLanguage(tree_sitter_go.Language())
	case "javascript", "javascriptreact":
		return tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	case "typescript":
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	case "typescriptreact":
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	case "python":
		return tree_sitter.NewLanguage(tree_sitter_python.Language())
	case "rust":
		return tree_sitter.NewLanguage(tree_sitter_rust.Language())
	case "java":
		return tree_sitter.NewLanguage(tree_sitter_java.Language())
	case "c", "cpp":
		return tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	case "csharp":
		return tree_sitter.NewLanguage(tree_sitter_csharp.Language())
	case "php":
		return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP())
	case "zig":
		return tree_sitter.NewLanguage(tree_sitter_zig.Language())
	default:
		return nil
	}
}

// supportedTags lists every language tag with a registered grammar.
var supportedTags = []string{
	"c",
	"cpp",
	"csharp",
	"go",
	"java",
	"javascript",
	"javascriptreact",
	"php",
	"python",
	"rust",
	"typescript",
	"typescriptreact",
	"zig",
}

// Supported returns true if the language tag has a structural parser.
func Supported(tag string) bool {
	return languageFor(tag) != nil
}

// SupportedLanguages returns the sorted tags with structural parsers.
func SupportedLanguages() []string {
	tags := make([]string, len(supportedTags))
	copy(tags, supportedTags)
	sort.Strings(tags)
	return tags
}
