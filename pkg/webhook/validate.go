package webhook

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingURL is returned when a webhook config has no delivery URL.
var ErrMissingURL = errors.New("webhook config is missing a delivery url")

// HeaderEntry is one submitted header row from a configuration edit.
type HeaderEntry struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Secret bool   `json:"secret"`
}

// inUse reports whether a row carries anything. Fully empty rows are form
// placeholders and skip validation entirely.
func (h HeaderEntry) inUse() bool {
	return h.Name != "" || h.Value != ""
}

// ValidateHeaders checks a submitted header set against the saved header map
// of the same action. It collects every violation instead of stopping at the
// first one; an empty result means the submission is acceptable.
//
// A secret header may be submitted without a value: the stored value is
// kept. Flipping the secret flag in either direction requires a fresh value,
// because the plaintext of a previously secret value is never available for
// re-display or reuse.
func ValidateHeaders(entries []HeaderEntry, previous map[string]HeaderValue) []string {
	var violations []string

	seen := make(map[string]int)
	reserved := ReservedHeaderNames()

	previousByName := make(map[string]HeaderValue, len(previous))
	for name, header := range previous {
		previousByName[strings.ToLower(name)] = header
	}

	for _, entry := range entries {
		if !entry.inUse() {
			continue
		}

		if entry.Name == "" {
			violations = append(violations, "header name must not be empty")

			continue
		}

		lower := strings.ToLower(entry.Name)
		seen[lower]++

		if reserved[lower] {
			violations = append(violations, fmt.Sprintf("header %q conflicts with a default header", entry.Name))
		}

		saved, wasSaved := previousByName[lower]
		wasSecret := wasSaved && saved.Secret

		switch {
		case entry.Secret != wasSecret && entry.Value == "":
			violations = append(violations, fmt.Sprintf("header %q requires a value", entry.Name))
		case !entry.Secret && entry.Value == "":
			violations = append(violations, fmt.Sprintf("header %q requires a value", entry.Name))
		}
	}

	for _, entry := range entries {
		lower := strings.ToLower(entry.Name)
		if seen[lower] > 1 {
			violations = append(violations, fmt.Sprintf("duplicate header %q", strings.ToLower(entry.Name)))
			seen[lower] = 0
		}
	}

	return violations
}
