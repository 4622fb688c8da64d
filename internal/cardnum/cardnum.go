// Package cardnum validates and formats 16-digit card numbers.
package cardnum

import "strings"

// Length is the only card number length the system accepts.
const Length = 16

// Normalize strips every non-digit character from s.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether s contains exactly 16 digits (after stripping
// separators) forming a valid Luhn sequence.
func Valid(s string) bool {
	digits := Normalize(s)
	if len(digits) != Length {
		return false
	}
	return luhn(digits)
}

// luhn runs the standard checksum: double every second digit from the right,
// subtract 9 when the doubled value exceeds 9, sum everything, valid iff the
// sum is a multiple of 10.
func luhn(digits string) bool {
	sum := 0
	alternate := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if alternate {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		alternate = !alternate
	}
	return sum%10 == 0
}

// Mask redacts the middle digits for display: 4532-****-****-0366.
// Inputs that are not plain 16-digit numbers are returned unchanged.
func Mask(number string) string {
	if len(number) != Length {
		return number
	}
	return number[:4] + "-****-****-" + number[12:]
}

// Format groups a 16-digit number for display: 4532-0151-1283-0366.
func Format(number string) string {
	if len(number) != Length {
		return number
	}
	return number[:4] + "-" + number[4:8] + "-" + number[8:12] + "-" + number[12:]
}
