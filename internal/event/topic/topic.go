// Package topic defines the event topic type used by the notification bus.
package topic

import "strings"

// Topic identifies an event stream on the notification bus.
// Topic strings are the wire names delivered to frontends,
// e.g. "file-opened" or "tokenization".
type Topic string

// All matches every topic when used as a subscription filter.
const All Topic = "*"

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// IsValid returns true if the topic is non-empty and contains no
// whitespace. The wildcard is valid only as a subscription filter,
// never as a published topic.
func (t Topic) IsValid() bool {
	s := string(t)
	if s == "" {
		return false
	}
	return !strings.ContainsAny(s, " \t\n")
}

// Matches returns true if this topic satisfies the given filter.
// A filter matches on exact equality or when it is All.
func (t Topic) Matches(filter Topic) bool {
	return filter == All || t == filter
}
