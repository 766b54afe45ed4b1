package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	mobileDigits     = 10
	countryCodeIndia = "91"
	trunkPrefix      = "0"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeMobile reduces user input such as "+91 98765 43210" or "09876543210"
// to the canonical 10-digit form. Normalizing an already canonical number is a no-op.
func NormalizeMobile(raw string) (string, error) {
	digits := nonDigits.ReplaceAllString(raw, "")

	switch {
	case len(digits) == mobileDigits+len(countryCodeIndia) && strings.HasPrefix(digits, countryCodeIndia):
		digits = digits[len(countryCodeIndia):]
	case len(digits) == mobileDigits+len(trunkPrefix) && strings.HasPrefix(digits, trunkPrefix):
		digits = digits[len(trunkPrefix):]
	}

	if len(digits) != mobileDigits {
		return "", fmt.Errorf("%w: got %d digits", ErrInvalidMobile, len(digits))
	}
	return digits, nil
}

// NormalizeEmail trims and lower-cases an address before it is sent anywhere.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// MaskEmail keeps the first character of the local part and the domain, so
// "ana@example.com" becomes "a***@example.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// MaskMobile keeps only the last four digits.
func MaskMobile(mobile string) string {
	const visible = 4
	if len(mobile) <= visible {
		return strings.Repeat("*", len(mobile))
	}
	return strings.Repeat("*", len(mobile)-visible) + mobile[len(mobile)-visible:]
}
