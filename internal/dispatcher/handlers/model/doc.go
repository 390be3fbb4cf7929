// Package model provides handlers for the model runner: status checks,
// background pulls, and single-shot generation.
package model
