// Package buffer provides handlers for document buffer operations:
// opening, line-level reads and writes, tokenization requests, saving,
// and closing the active document.
package buffer
