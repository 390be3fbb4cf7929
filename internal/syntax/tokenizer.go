package syntax

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Tokenizer owns the per-language parsers and produces token lists for
// row ranges of a document snapshot. Parsers are created lazily on
// first use and reused; parsing is serialized internally, so a single
// Tokenizer is safe for concurrent use.
type Tokenizer struct {
	mu      sync.RWMutex
	parsers map[string]*tree_sitter.Parser

	// parseMu serializes parse and tree access. Parsers and trees are
	// CGO objects that must not be used concurrently.
	parseMu   sync.Mutex
	cacheKey  uint64
	cacheTree *tree_sitter.Tree
	closed    bool
}

// NewTokenizer creates a tokenizer with no parsers instantiated yet.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		parsers: make(map[string]*tree_sitter.Parser),
	}
}

// Tokenize produces the token list for rows [startRow, endRow] of the
// given line snapshot. Both bounds are clamped into the snapshot and
// swapped if reversed. A snapshot with no lines yields an empty list.
//
// Languages with a registered grammar are parsed structurally and each
// leaf node of the span tree inside the range becomes one token,
// tagged with the grammar's node kind. Any other outcome (no grammar,
// failed parse, or no structural tokens in range) produces the
// fallback: one KindUntokenized token per line spanning the full line.
func (t *Tokenizer) Tokenize(lines []string, language string, startRow, endRow int) []Token {
	if len(lines) == 0 {
		return []Token{}
	}

	last := len(lines) - 1
	startRow = clampRow(startRow, last)
	endRow = clampRow(endRow, last)
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}

	tokens := t.structuralTokens(lines, language, startRow, endRow)
	if len(tokens) == 0 {
		return fallbackTokens(lines, startRow, endRow)
	}
	return tokens
}

// Close releases all parser and tree resources. The tokenizer must not
// be used afterwards.
func (t *Tokenizer) Close() {
	t.parseMu.Lock()
	if t.cacheTree != nil {
		t.cacheTree.Close()
		t.cacheTree = nil
	}
	t.closed = true
	t.parseMu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	for tag, parser := range t.parsers {
		parser.Close()
		delete(t.parsers, tag)
	}
}

// structuralTokens runs the grammar path. A nil return means the
// caller should fall back; grammar panics are treated as parse
// failures.
func (t *Tokenizer) structuralTokens(lines []string, language string, startRow, endRow int) (tokens []Token) {
	parser := t.parserFor(language)
	if parser == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			tokens = nil
		}
	}()

	source := []byte(strings.Join(lines, "\n"))

	t.parseMu.Lock()
	defer t.parseMu.Unlock()
	if t.closed {
		return nil
	}

	tree := t.treeFor(parser, language, source)
	if tree == nil {
		return nil
	}

	root := tree.RootNode()
	if root == nil {
		return nil
	}
	collectLeafTokens(root, uint(startRow), uint(endRow), &tokens)
	return tokens
}

// treeFor returns the parse tree for the snapshot, reusing the cached
// tree when language and content are unchanged. Must be called with
// parseMu held.
func (t *Tokenizer) treeFor(parser *tree_sitter.Parser, language string, source []byte) *tree_sitter.Tree {
	key := snapshotKey(language, source)
	if t.cacheTree != nil && t.cacheKey == key {
		return t.cacheTree
	}

	// The tree-sitter C library can scribble on input buffers through
	// CGO; parse a private copy.
	buffer := make([]byte, len(source))
	copy(buffer, source)

	tree := parser.Parse(buffer, nil)
	if tree == nil {
		return nil
	}

	if t.cacheTree != nil {
		t.cacheTree.Close()
	}
	t.cacheTree = tree
	t.cacheKey = key
	return tree
}

// parserFor returns the lazily created parser for a language tag, or
// nil when the tag has no grammar.
func (t *Tokenizer) parserFor(language string) *tree_sitter.Parser {
	t.mu.RLock()
	parser, ok := t.parsers[language]
	t.mu.RUnlock()
	if ok {
		return parser
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if parser, ok := t.parsers[language]; ok {
		return parser
	}

	grammar := languageFor(language)
	if grammar == nil {
		return nil
	}

	parser = tree_sitter.NewParser()
	if err := parser.SetLanguage(grammar); err != nil {
		parser.Close()
		return nil
	}
	t.parsers[language] = parser
	return parser
}

// collectLeafTokens walks the span tree in pre-order, pruning subtrees
// entirely outside [startRow, endRow] and emitting one token per
// surviving leaf.
func collectLeafTokens(node *tree_sitter.Node, startRow, endRow uint, tokens *[]Token) {
	start := node.StartPosition()
	end := node.EndPosition()
	if end.Row < startRow || start.Row > endRow {
		return
	}

	count := node.ChildCount()
	if count == 0 {
		*tokens = append(*tokens, Token{
			Start: Position{Row: int(start.Row), Col: int(start.Column)},
			End:   Position{Row: int(end.Row), Col: int(end.Column)},
			Kind:  node.Kind(),
		})
		return
	}

	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		collectLeafTokens(child, startRow, endRow, tokens)
	}
}

// fallbackTokens emits one full-width untokenized token per line in
// the range.
func fallbackTokens(lines []string, startRow, endRow int) []Token {
	tokens := make([]Token, 0, endRow-startRow+1)
	for row := startRow; row <= endRow; row++ {
		tokens = append(tokens, Token{
			Start: Position{Row: row, Col: 0},
			End:   Position{Row: row, Col: len(lines[row])},
			Kind:  KindUntokenized,
		})
	}
	return tokens
}

// snapshotKey hashes a language tag and snapshot for cache identity.
func snapshotKey(language string, source []byte) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(language)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(source)
	return h.Sum64()
}

func clampRow(row, last int) int {
	if row < 0 {
		return 0
	}
	if row > last {
		return last
	}
	return row
}
