// Package phone validates and formats Brazilian WhatsApp numbers.
package phone

import (
	"strings"
	"unicode"
)

// Digits strips everything but ASCII digits.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate reports whether raw is a plausible national number: 10 or 11
// digits, area code 11-99, and a leading 9 on 11-digit mobile numbers.
func Validate(raw string) bool {
	digits := Digits(raw)
	if len(digits) < 10 || len(digits) > 11 {
		return false
	}
	ddd := int(digits[0]-'0')*10 + int(digits[1]-'0')
	if ddd < 11 || ddd > 99 {
		return false
	}
	if len(digits) == 11 && digits[2] != '9' {
		return false
	}
	return true
}

// Normalize returns the digits of a valid number and false otherwise.
func Normalize(raw string) (string, bool) {
	if !Validate(raw) {
		return "", false
	}
	return Digits(raw), true
}

// Format renders "(XX) XXXXX-XXXX" or "(XX) XXXX-XXXX". Invalid input is
// returned trimmed and unchanged.
func Format(raw string) string {
	digits, ok := Normalize(raw)
	if !ok {
		return strings.TrimSpace(raw)
	}
	split := len(digits) - 4
	return "(" + digits[:2] + ") " + digits[2:split] + "-" + digits[split:]
}

// Mask hides all but the last four digits for logging.
func Mask(raw string) string {
	digits := Digits(raw)
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

// Blank reports whether raw has no visible characters.
func Blank(raw string) bool {
	return strings.IndexFunc(raw, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
