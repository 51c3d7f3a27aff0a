// Package texts holds the small text helpers shared by the kiosk screens.
package texts

import "strings"

// Upper formats menu text for the big kiosk display.
func Upper(s string) string {
	return strings.ToUpper(s)
}

// NormalizeDish produces the matching key used to consolidate the same
// dish across servings; display keeps the first-seen original casing.
func NormalizeDish(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
