// Package regulatory implements the regulatory change watch: fetching monitored
// sources, fingerprint based change detection, MKB impact classification,
// result caching and critical-update alerting.
package regulatory

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/qeme/sentinel-lite/model"
)

// DefaultSources returns the built-in monitored sources in check order.
func DefaultSources() []model.Source {
	return []model.Source{
		{
			Name:      "EU_AI_Act_Latest",
			Framework: "eu_ai_act",
			URL:       "https://eur-lex.europa.eu/legal-content/EN/TXT/?uri=CELEX:52021PC0206",
			Type:      "html",
			Keywords:  []string{"sme", "small", "medium", "enterprise", "startup"},
		},
		{
			Name:      "GDPR_EDPB_Guidelines",
			Framework: "gdpr",
			URL:       "https://edpb.europa.eu/news/news_en",
			Type:      "html",
			Keywords:  []string{"small business", "sme", "practical", "guidance"},
		},
		{
			Name:      "DNB_FinTech_Updates",
			Framework: "fintech",
			URL:       "https://www.dnb.nl/en/sector-information/fintech/",
			Type:      "html",
			Keywords:  []string{"startup", "fintech", "innovation", "sandbox"},
		},
	}
}

// Registry is the fixed, ordered list of monitored sources.
type Registry struct {
	sources []model.Source
}

// NewRegistry validates sources and returns a registry holding a private copy.
// Names must be unique and non-empty; URLs must be absolute http(s) URLs.
func NewRegistry(sources []model.Source) (*Registry, error) {
	seen := make(map[string]struct{}, len(sources))
	copied := make([]model.Source, 0, len(sources))

	for i, src := range sources {
		if strings.TrimSpace(src.Name) == "" {
			return nil, fmt.Errorf("source %d: name is required", i)
		}
		if _, dup := seen[src.Name]; dup {
			return nil, fmt.Errorf("source %q: duplicate name", src.Name)
		}
		seen[src.Name] = struct{}{}

		u, err := url.Parse(src.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("source %q: invalid url %q", src.Name, src.URL)
		}

		src.Keywords = append([]string(nil), src.Keywords...)
		copied = append(copied, src)
	}

	return &Registry{sources: copied}, nil
}

// MustDefaultRegistry returns the registry of DefaultSources.
func MustDefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultSources())
	if err != nil {
		panic(err)
	}
	return r
}

// Sources returns the monitored sources in registry order.
func (r *Registry) Sources() []model.Source {
	out := make([]model.Source, len(r.sources))
	for i, src := range r.sources {
		src.Keywords = append([]string(nil), src.Keywords...)
		out[i] = src
	}
	return out
}

// Len returns the number of monitored sources.
func (r *Registry) Len() int { return len(r.sources) }

// Frameworks returns the distinct framework tags in first-seen order.
func (r *Registry) Frameworks() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, src := range r.sources {
		if _, ok := seen[src.Framework]; ok {
			continue
		}
		seen[src.Framework] = struct{}{}
		out = append(out, src.Framework)
	}
	return out
}
