// Package queue provides handlers for the background ingestion queue:
// enqueuing paths and starting the consumer loop.
package queue
