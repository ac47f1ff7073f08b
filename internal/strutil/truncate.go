// Package strutil provides small string helpers shared across the server.
package strutil

// Truncate shortens a string to at most maxLen runes, appending "..." when
// anything was cut. Rune-level truncation keeps multi-byte characters intact.
// Returns an empty string when maxLen <= 0.
func Truncate(s string, maxLen int) string {
	if s == "" || maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
