package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	ClientNameMinLength = 3
	ClientNameMaxLength = 100
	DocumentIDMinLength = 5
	DocumentIDMaxLength = 20
	MaxInitialAmount    = 1_000_000_000
)

// Field validators return the violated rules as messages; an empty result
// means the value is valid. Validators that normalize also return the
// normalized value, which callers keep even when the value is invalid.

// ClientName trims raw and checks it is 3 to 100 characters long and
// contains at least one letter.
func ClientName(raw string) (string, []string) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return name, []string{"must not be empty"}
	}

	var msgs []string
	n := utf8.RuneCountInString(name)
	if n < ClientNameMinLength {
		msgs = append(msgs, fmt.Sprintf("must be at least %d characters", ClientNameMinLength))
	}
	if n > ClientNameMaxLength {
		msgs = append(msgs, fmt.Sprintf("must not exceed %d characters", ClientNameMaxLength))
	}
	if strings.IndexFunc(name, unicode.IsLetter) < 0 {
		msgs = append(msgs, "must contain at least one letter")
	}
	return name, msgs
}

// DocumentID trims raw and checks it is 5 to 20 ASCII digits.
func DocumentID(raw string) (string, []string) {
	doc := strings.TrimSpace(raw)
	if doc == "" {
		return doc, []string{"must not be empty"}
	}

	var msgs []string
	if strings.IndexFunc(doc, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		msgs = append(msgs, "must contain only digits")
	}
	n := utf8.RuneCountInString(doc)
	if n < DocumentIDMinLength {
		msgs = append(msgs, fmt.Sprintf("must be at least %d characters", DocumentIDMinLength))
	}
	if n > DocumentIDMaxLength {
		msgs = append(msgs, fmt.Sprintf("must not exceed %d characters", DocumentIDMaxLength))
	}
	return doc, msgs
}

// Email checks raw is a syntactically valid address.
func Email(raw string) []string {
	if raw == "" {
		return []string{"is required"}
	}
	if err := Validator().Var(raw, "email"); err != nil {
		return []string{"must be a valid email address"}
	}
	return nil
}

// InitialAmount checks amount is present, > 0 and <= 1,000,000,000.
func InitialAmount(amount *float64) []string {
	if amount == nil {
		return []string{"is required"}
	}
	if *amount <= 0 {
		return []string{"must be greater than 0"}
	}
	if *amount > MaxInitialAmount {
		return []string{fmt.Sprintf("must not exceed %d", MaxInitialAmount)}
	}
	return nil
}

// OneOf checks value is exactly one of allowed. Matching is case-sensitive.
func OneOf(value string, allowed ...string) []string {
	if value == "" {
		return []string{"is required"}
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return []string{"must be one of: " + strings.Join(allowed, ", ")}
}
