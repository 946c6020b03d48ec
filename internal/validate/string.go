// Package validate provides input validation and sanitization utilities
// for the API.
package validate

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrEmpty             = errors.New("string is empty")
	ErrTooManyTags       = errors.New("too many tags")
)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength      int            // Minimum length (0 = no minimum)
	MaxLength      int            // Maximum length (0 = no maximum)
	AllowedPattern *regexp.Regexp // Optional regex pattern for allowed characters
	AllowEmpty     bool           // Whether empty strings are allowed
	TrimSpace      bool           // Whether to trim whitespace before validation
}

// String validates a string against the given constraints.
// Returns the validated (and optionally trimmed) string and an error if validation fails.
func String(s string, constraints StringConstraints) (string, error) {
	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	// Character count, not byte count.
	length := utf8.RuneCountInString(s)

	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, constraints.MinLength)
	}
	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, constraints.MaxLength)
	}
	if constraints.AllowedPattern != nil && !constraints.AllowedPattern.MatchString(s) {
		return "", fmt.Errorf("%w: does not match required pattern", ErrInvalidCharacters)
	}

	return s, nil
}

// SanitizeHTML escapes HTML special characters to prevent XSS attacks.
// This should be called on all user-generated text that will be displayed in HTML.
func SanitizeHTML(s string) string {
	return html.EscapeString(s)
}

// SanitizeString performs both validation and HTML sanitization.
func SanitizeString(s string, constraints StringConstraints) (string, error) {
	validated, err := String(s, constraints)
	if err != nil {
		return "", err
	}
	return SanitizeHTML(validated), nil
}

// EventTitle validates an event title: 1-200 characters, required.
func EventTitle(title string) (string, error) {
	return SanitizeString(title, StringConstraints{
		MinLength: 1,
		MaxLength: 200,
		TrimSpace: true,
	})
}

// Description validates a description field: optional, max 5000 characters.
func Description(desc string) (string, error) {
	return SanitizeString(desc, StringConstraints{
		MaxLength:  5000,
		AllowEmpty: true,
		TrimSpace:  true,
	})
}

// Location validates an event location: optional, max 300 characters.
func Location(loc string) (string, error) {
	return SanitizeString(loc, StringConstraints{
		MaxLength:  300,
		AllowEmpty: true,
		TrimSpace:  true,
	})
}

var tagPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]*$`)

// MaxTagsPerEvent caps how many tags an event may carry.
const MaxTagsPerEvent = 10

// Tag validates a single tag: 1-50 characters, lowercase letters, digits
// and dashes.
func Tag(tag string) (string, error) {
	return String(strings.ToLower(tag), StringConstraints{
		MinLength:      1,
		MaxLength:      50,
		AllowedPattern: tagPattern,
		TrimSpace:      true,
	})
}

// Tags validates and normalizes an event tag list: each tag is lowercased,
// duplicates are dropped, and the list is capped at MaxTagsPerEvent.
func Tags(tags []string) ([]string, error) {
	if len(tags) > MaxTagsPerEvent {
		return nil, fmt.Errorf("%w: got %d, maximum is %d", ErrTooManyTags, len(tags), MaxTagsPerEvent)
	}

	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized, err := Tag(tag)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", tag, err)
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out, nil
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-\.]+$`)

// Username validates a profile username: 1-50 characters, letters, digits,
// underscore, dash and period.
func Username(name string) (string, error) {
	return String(name, StringConstraints{
		MinLength:      1,
		MaxLength:      50,
		AllowedPattern: usernamePattern,
		TrimSpace:      true,
	})
}

// FullName validates a profile display name: optional, max 100 characters.
func FullName(name string) (string, error) {
	return SanitizeString(name, StringConstraints{
		MaxLength:  100,
		AllowEmpty: true,
		TrimSpace:  true,
	})
}

// Bio validates a profile bio: optional, max 1000 characters.
func Bio(bio string) (string, error) {
	return SanitizeString(bio, StringConstraints{
		MaxLength:  1000,
		AllowEmpty: true,
		TrimSpace:  true,
	})
}
