// Package settings provides handlers for reading and updating the
// application settings blob.
package settings
