// Package normalize canonicalizes free-text item and store names so that
// "UBER RIDE", "uber   ride" and " Uber Ride " resolve to the same
// preference key.
package normalize

import "strings"

// Text lowercases s, trims leading and trailing whitespace, and collapses
// internal whitespace runs to single spaces. Empty input normalizes to "".
// Pure, total, idempotent.
func Text(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
