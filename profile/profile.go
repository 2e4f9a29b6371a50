// Package profile defines the per-network configuration used to build
// queries and filter search results.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the immutable configuration for one social network.
type Profile struct {
	Name       string   `yaml:"name"`
	DomainURL  string   `yaml:"domain_url"`
	ValidPaths []string `yaml:"valid_paths"`
	TextColumn string   `yaml:"text_column"`
	URLColumn  string   `yaml:"url_column"`
	SiteQuery  string   `yaml:"site_query"`
}

// Builtin returns the built-in network profiles in selection order.
func Builtin() []Profile {
	return []Profile{
		{
			Name:       "Facebook",
			DomainURL:  "https://www.facebook.com/",
			ValidPaths: []string{"posts/", "videos/", "photos/", "groups/"},
			TextColumn: "Caption",
			URLColumn:  "URL",
			SiteQuery:  "site: facebook.com",
		},
		{
			Name:       "Instagram",
			DomainURL:  "https://www.instagram.com/",
			ValidPaths: []string{"p/", "tv/", "reel/", "video/", "photo/"},
			TextColumn: "Caption",
			URLColumn:  "URL",
			SiteQuery:  "site: instagram.com",
		},
	}
}

// Select returns the profile at the given 1-based choice.
func Select(profiles []Profile, choice int) (Profile, error) {
	if choice < 1 || choice > len(profiles) {
		return Profile{}, fmt.Errorf("invalid network selection: %d", choice)
	}
	return profiles[choice-1], nil
}

// Merge appends extra profiles to base. Profile names must be unique: they
// key per-network state such as the search result cache.
func Merge(base, extra []Profile) ([]Profile, error) {
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, p := range base {
		seen[p.Name] = struct{}{}
	}

	merged := append([]Profile(nil), base...)
	for _, p := range extra {
		if _, ok := seen[p.Name]; ok {
			return nil, fmt.Errorf("duplicate profile name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		merged = append(merged, p)
	}
	return merged, nil
}

// LoadFile reads additional profiles from a YAML file. The file holds a
// list of profile entries; every field is required.
func LoadFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}

	var profiles []Profile
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse profile file %q: %w", path, err)
	}

	for i, p := range profiles {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("profile %d in %q: %w", i+1, path, err)
		}
	}
	return profiles, nil
}

func validate(p Profile) error {
	if p.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if p.DomainURL == "" {
		return fmt.Errorf("domain url cannot be empty")
	}
	if len(p.ValidPaths) == 0 {
		return fmt.Errorf("valid paths cannot be empty")
	}
	if p.TextColumn == "" {
		return fmt.Errorf("text column cannot be empty")
	}
	if p.URLColumn == "" {
		return fmt.Errorf("url column cannot be empty")
	}
	if p.SiteQuery == "" {
		return fmt.Errorf("site query cannot be empty")
	}
	return nil
}
