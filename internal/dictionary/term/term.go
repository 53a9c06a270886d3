// Package term provides lookup-key normalization for the dictionary.
// It lower-cases input, trims surrounding whitespace, and collapses internal
// whitespace runs to single spaces.
//
// Normalize is applied identically at index time and query time; any
// asymmetry between the two silently produces empty results, so this is the
// only place a lookup key may be derived.
package term

import (
	"strings"
	"unicode"
)

// Normalize derives the index key for a raw word or phrase. It is pure and
// idempotent. Multi-word terms remain a single key ("Virtual  Machine" and
// "virtual machine" normalize to the same key); there is no tokenization,
// stemming, or stop-word removal, since lookups are exact-match.
func Normalize(raw string) string {
	fields := strings.FieldsFunc(raw, unicode.IsSpace)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Join(fields, " "))
}
