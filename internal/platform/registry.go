// Package platform holds the static configuration of every external listing
// portal the pipeline can crawl. The registry is loaded once at process start
// and never mutated afterwards.
package platform

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// RateLimit is the crawl budget of one external source, shared by every
// organization crawling it.
type RateLimit struct {
	Requests   int
	PerMinutes int
}

// Pagination describes how to walk a portal's result pages.
type Pagination struct {
	Type     string // "query" or "path"
	Param    string
	MaxPages int
}

// Selectors are the extraction rules for one portal. The keys are a contract
// with the crawl executor adapter; the core treats the map as opaque.
type Selectors map[string]string

type Config struct {
	ID         string
	BaseURL    string
	SearchPath string
	RateLimit  RateLimit
	Pagination Pagination
	Selectors  Selectors
}

type Registry struct {
	platforms map[string]Config
	ids       []string
}

// LoadRegistry reads platforms.yaml (a top-level `platforms` list) and
// validates every entry.
func LoadRegistry(filename string) (*Registry, error) {
	v := viper.New()
	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/marketintel")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cannot read platforms file: %w", err)
	}
	var raw struct {
		Platforms []Config
	}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("cannot unmarshal platforms file: %w", err)
	}
	return NewRegistry(raw.Platforms)
}

func NewRegistry(configs []Config) (*Registry, error) {
	r := &Registry{platforms: make(map[string]Config, len(configs))}
	for _, pc := range configs {
		if err := validate(pc); err != nil {
			return nil, fmt.Errorf("platform %q: %w", pc.ID, err)
		}
		if _, dup := r.platforms[pc.ID]; dup {
			return nil, fmt.Errorf("platform %q: duplicate id", pc.ID)
		}
		r.platforms[pc.ID] = pc
		r.ids = append(r.ids, pc.ID)
	}
	sort.Strings(r.ids)
	return r, nil
}

func validate(pc Config) error {
	if pc.ID == "" {
		return errors.New("missing id")
	}
	if pc.BaseURL == "" {
		return errors.New("missing base url")
	}
	if pc.RateLimit.Requests <= 0 || pc.RateLimit.PerMinutes <= 0 {
		return errors.New("rate limit must be positive")
	}
	if pc.Pagination.MaxPages <= 0 {
		return errors.New("pagination max pages must be positive")
	}
	return nil
}

func (r *Registry) Get(id string) (Config, error) {
	pc, ok := r.platforms[id]
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownPlatform, id)
	}
	return pc, nil
}

// IDs returns the registered platform ids in stable order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}
