package phone

import "strings"

// Normalize strips every non-digit rune from a phone number.
// "+1 (555) 123-4567" becomes "5551234567". Normalized phones are the
// canonical form for cache keys, the phone->record mapping and billing
// phone matching; raw phones only appear in human-readable notes.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MinDigits is the minimum number of digits a phone number must contain
// to be accepted by the capture endpoint.
const MinDigits = 7

// Valid reports whether the normalized form of raw has at least MinDigits digits.
func Valid(raw string) bool {
	return len(Normalize(raw)) >= MinDigits
}
