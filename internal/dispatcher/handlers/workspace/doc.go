// Package workspace provides handlers for workspace operations:
// listing the project tree and copying, moving, or deleting paths.
package workspace
