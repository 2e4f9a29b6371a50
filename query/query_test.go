package query

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aluiziolira/go-post-search/profile"
)

const minLength = 200

func facebookProfile(t *testing.T) profile.Profile {
	t.Helper()
	p, err := profile.Select(profile.Builtin(), 1)
	if err != nil {
		t.Fatalf("select profile: %v", err)
	}
	return p
}

// captionOfQueryLength returns a caption whose built query has exactly n runes.
func captionOfQueryLength(p profile.Profile, n int) string {
	prefix := utf8.RuneCountInString(p.SiteQuery) + 1
	return strings.Repeat("a", n-prefix)
}

func TestBuildLengthBoundary(t *testing.T) {
	p := facebookProfile(t)

	if _, err := Build(captionOfQueryLength(p, minLength), p, minLength); err != nil {
		t.Fatalf("query of exactly %d runes should be accepted, got %v", minLength, err)
	}

	_, err := Build(captionOfQueryLength(p, minLength-1), p, minLength)
	var short *InsufficientTextError
	if !errors.As(err, &short) {
		t.Fatalf("query of %d runes should be rejected, got %v", minLength-1, err)
	}
	if short.Length != minLength-1 {
		t.Fatalf("rejected length = %d, want %d", short.Length, minLength-1)
	}
}

func TestBuildPrependsSiteQuery(t *testing.T) {
	p := facebookProfile(t)
	caption := captionOfQueryLength(p, minLength)

	q, err := Build(caption, p, minLength)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if want := p.SiteQuery + "+" + caption; q != want {
		t.Fatalf("query = %q, want %q", q, want)
	}
}

func TestBuildCountsLengthAfterFiltering(t *testing.T) {
	p := facebookProfile(t)

	// Enough emoji to cross the threshold before filtering, one rune short after.
	caption := captionOfQueryLength(p, minLength-1) + strings.Repeat("\U0001F600", 10)

	_, err := Build(caption, p, minLength)
	var short *InsufficientTextError
	if !errors.As(err, &short) {
		t.Fatalf("expected rejection after emoji stripping, got %v", err)
	}
	if short.Length != minLength-1 {
		t.Fatalf("rejected length = %d, want %d", short.Length, minLength-1)
	}
}

func TestFilterBMP(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "ascii untouched", input: "plain text", want: "plain text"},
		{name: "emoji stripped", input: "new post \U0001F600\U0001F680 today", want: "new post  today"},
		{name: "accented kept", input: "promoção à vista", want: "promoção à vista"},
		{name: "combining mark kept", input: "café", want: "café"},
		{name: "cjk kept", input: "日本語のテキスト", want: "日本語のテキスト"},
		{name: "bmp boundary kept", input: "a\uFFFDb", want: "a\uFFFDb"},
		{name: "supplementary plane stripped", input: "math \U0001D400 bold", want: "math  bold"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilterBMP(tt.input); got != tt.want {
				t.Fatalf("FilterBMP(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
