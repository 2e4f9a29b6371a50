package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSelectBuiltin(t *testing.T) {
	profiles := Builtin()

	facebook, err := Select(profiles, 1)
	if err != nil {
		t.Fatalf("select facebook: %v", err)
	}
	if facebook.Name != "Facebook" {
		t.Fatalf("choice 1 = %q, want Facebook", facebook.Name)
	}
	if facebook.DomainURL != "https://www.facebook.com/" {
		t.Fatalf("facebook domain = %q", facebook.DomainURL)
	}

	instagram, err := Select(profiles, 2)
	if err != nil {
		t.Fatalf("select instagram: %v", err)
	}
	if instagram.Name != "Instagram" {
		t.Fatalf("choice 2 = %q, want Instagram", instagram.Name)
	}
	if instagram.SiteQuery != "site: instagram.com" {
		t.Fatalf("instagram site query = %q", instagram.SiteQuery)
	}
}

func TestSelectInvalid(t *testing.T) {
	profiles := Builtin()
	for _, choice := range []int{0, -1, 3, 99} {
		if _, err := Select(profiles, choice); err == nil {
			t.Fatalf("choice %d should be rejected", choice)
		}
	}
}

func TestMerge(t *testing.T) {
	extra := []Profile{{
		Name:       "LinkedIn",
		DomainURL:  "https://www.linkedin.com/",
		ValidPaths: []string{"posts/"},
		TextColumn: "Caption",
		URLColumn:  "URL",
		SiteQuery:  "site: linkedin.com",
	}}

	merged, err := Merge(Builtin(), extra)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(merged) != 3 || merged[2].Name != "LinkedIn" {
		t.Fatalf("merged = %v", merged)
	}
}

func TestMergeRejectsDuplicateNames(t *testing.T) {
	duplicate := []Profile{{
		Name:       "Facebook",
		DomainURL:  "https://fb.example/",
		ValidPaths: []string{"posts/"},
		TextColumn: "Caption",
		URLColumn:  "URL",
		SiteQuery:  "site: fb.example",
	}}
	if _, err := Merge(Builtin(), duplicate); err == nil || !strings.Contains(err.Error(), "Facebook") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}

	twice := []Profile{
		{Name: "X", DomainURL: "https://x.example/", ValidPaths: []string{"status/"}, TextColumn: "Caption", URLColumn: "URL", SiteQuery: "site: x.example"},
		{Name: "X", DomainURL: "https://x.example/", ValidPaths: []string{"status/"}, TextColumn: "Caption", URLColumn: "URL", SiteQuery: "site: x.example"},
	}
	if _, err := Merge(Builtin(), twice); err == nil || !strings.Contains(err.Error(), "X") {
		t.Fatalf("expected duplicate name error within extras, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	content := `
- name: LinkedIn
  domain_url: https://www.linkedin.com/
  valid_paths: ["posts/", "pulse/"]
  text_column: Caption
  url_column: URL
  site_query: "site: linkedin.com"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile file: %v", err)
	}

	profiles, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load profile file: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("profiles=%d, want 1", len(profiles))
	}
	if profiles[0].Name != "LinkedIn" || len(profiles[0].ValidPaths) != 2 {
		t.Fatalf("unexpected profile: %+v", profiles[0])
	}
}

func TestLoadFileRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	content := `
- name: Broken
  domain_url: https://example.test/
  valid_paths: []
  text_column: Caption
  url_column: URL
  site_query: "site: example.test"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile file: %v", err)
	}

	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "valid paths") {
		t.Fatalf("expected valid paths error, got %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
