// Package query builds search queries from raw post captions.
package query

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aluiziolira/go-post-search/profile"
)

// InsufficientTextError marks a caption whose query is too short to search.
// It is a policy skip, not a failure: callers count it separately.
type InsufficientTextError struct {
	Length int
}

func (e *InsufficientTextError) Error() string {
	return fmt.Sprintf("insufficient text: query is %d characters", e.Length)
}

// Build joins the profile's site restriction with the caption, stripped of
// characters outside the Basic Multilingual Plane. Queries shorter than
// minLength runes are rejected with InsufficientTextError. The query is not
// URL-encoded here; the transport escapes it.
func Build(raw string, p profile.Profile, minLength int) (string, error) {
	q := p.SiteQuery + "+" + FilterBMP(raw)
	if length := utf8.RuneCountInString(q); length < minLength {
		return "", &InsufficientTextError{Length: length}
	}
	return q, nil
}

// FilterBMP removes every character above U+FFFF. Characters inside the
// BMP, combining marks included, pass through unchanged.
func FilterBMP(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= 0xFFFF {
			b.WriteRune(r)
		}
	}
	return b.String()
}
