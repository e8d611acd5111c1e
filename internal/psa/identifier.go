package psa

import (
	"regexp"

	"github.com/nyaruka/phonenumbers"
)

const (
	// IdentifierMaxLength bounds the company identifier slug.
	IdentifierMaxLength = 30
	// FallbackIdentifier is used when a company name has no alphanumerics.
	FallbackIdentifier = "TempCo"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// CompanyIdentifier derives the PSA company slug from a display name.
func CompanyIdentifier(name string) string {
	id := nonAlphanumeric.ReplaceAllString(name, "")
	if len(id) > IdentifierMaxLength {
		id = id[:IdentifierMaxLength]
	}
	if id == "" {
		return FallbackIdentifier
	}
	return id
}

// NormalizePhone keeps only the digits of a phone number. It is the sole matching key.
func NormalizePhone(phone string) string {
	return phonenumbers.NormalizeDigitsOnly(phone)
}
