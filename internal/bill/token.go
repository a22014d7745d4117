package bill

import "strings"

// NormalizeTableToken canonicalizes a table token typed or scanned by a
// guest. A purely numeric value like "12" becomes "table-12"; anything else
// (an already-formed token, a future QR payload) passes through unchanged.
func NormalizeTableToken(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return s
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	return "table-" + s
}
