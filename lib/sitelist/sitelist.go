// Package sitelist loads the YAML list of sites to scrape.
package sitelist

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultTimeout = 30 * time.Second

// Site is one scrape target.
type Site struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	// omitted means enabled
	Enabled *bool `yaml:"enabled,omitempty"`
	// seconds, 0 means the default
	TimeoutSeconds int    `yaml:"timeout,omitempty"`
	Notes          string `yaml:"notes,omitempty"`
}

func (s Site) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

func (s Site) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type file struct {
	Sites []Site `yaml:"sites"`
}

// Load reads a site list file. Entries missing a name or url are
// rejected, this is the one input whose absence is fatal to a run.
func Load(path string) ([]Site, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]Site, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	for i, site := range f.Sites {
		if site.Name == "" || site.URL == "" {
			return nil, fmt.Errorf("site %d: name and url are required", i)
		}
	}
	return f.Sites, nil
}

// Enabled filters the list down to enabled entries.
func Enabled(sites []Site) []Site {
	out := make([]Site, 0, len(sites))
	for _, s := range sites {
		if s.IsEnabled() {
			out = append(out, s)
		}
	}
	return out
}
