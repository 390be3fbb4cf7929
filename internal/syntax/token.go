// Package syntax turns document text into token spans for display.
//
// Tokenization runs a tree-sitter structural parse for languages with a
// registered grammar and walks the resulting tree, emitting one token
// per leaf node inside the requested row range. Languages without a
// grammar, failed parses, and ranges with no structural tokens all
// degrade to a deterministic per-line fallback so callers always
// receive a usable token list.
package syntax

// KindUntokenized is the token kind used by the per-line fallback when
// no structural parse is available for a range.
const KindUntokenized = "untokenized"

// Position is a zero-based row/column location. Columns count bytes,
// matching tree-sitter's coordinates.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Token is a contiguous span of the document tagged with a
// syntactic kind. Start and End are inclusive-start, exclusive-end in
// row-major order; Start never exceeds End.
type Token struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
	Kind  string   `json:"kind"`
}
