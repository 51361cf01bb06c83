package subscription

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidName indicates a subscriber name is not valid.
var ErrInvalidName = errors.New("invalid subscriber name")

const (
	// maxNameLen is the maximum number of characters in a subscriber name.
	maxNameLen = 256

	// forbiddenNameChars are characters that are never part of a legitimate
	// name but do show up in injection attempts.
	forbiddenNameChars = `/()"<>\{}`
)

// Name is a validated subscriber name. Always construct via ParseName.
type Name string

// ParseName parses the given string into a subscriber name.
// Leading and trailing whitespace is trimmed before validation.
func ParseName(raw string) (Name, error) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return Name(""), fmt.Errorf("%w: name is empty", ErrInvalidName)
	}

	if utf8.RuneCountInString(trimmed) > maxNameLen {
		return Name(""), fmt.Errorf("%w: name is longer than %d characters", ErrInvalidName, maxNameLen)
	}

	if i := strings.IndexAny(trimmed, forbiddenNameChars); i >= 0 {
		return Name(""), fmt.Errorf("%w: name contains forbidden character %q", ErrInvalidName, trimmed[i])
	}

	return Name(trimmed), nil
}
