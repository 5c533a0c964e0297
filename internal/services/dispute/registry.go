package dispute

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Provider maps a selectable insurer or payer to its preloaded policy PDF.
type Provider struct {
	Name string
	File string
}

// DefaultProviders is the fixed set of policy documents shipped with the
// service.
var DefaultProviders = []Provider{
	{Name: "United", File: "United Healthcare Charge Policy.pdf"},
	{Name: "Providence", File: "Providence HealthCare Charge.pdf"},
	{Name: "Molina", File: "Molina HealthCare Charge.pdf"},
	{Name: "CMS", File: "CMS Charge.pdf"},
}

// Registry resolves provider names to policy documents under one directory.
type Registry struct {
	dir       string
	providers []Provider
}

// NewRegistry creates a registry rooted at dir. With no providers it uses
// DefaultProviders.
func NewRegistry(dir string, providers ...Provider) *Registry {
	if len(providers) == 0 {
		providers = DefaultProviders
	}
	return &Registry{dir: dir, providers: providers}
}

// Names returns the provider names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name
	}
	return names
}

// Path returns the policy document for an exact provider name.
func (r *Registry) Path(name string) (string, bool) {
	for _, p := range r.providers {
		if p.Name == name {
			return filepath.Join(r.dir, p.File), true
		}
	}
	return "", false
}

// Verify reports providers whose policy document is missing. A missing file
// only fails requests that select that provider.
func (r *Registry) Verify() []string {
	var missing []string
	for _, p := range r.providers {
		path := filepath.Join(r.dir, p.File)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			log.Warn().Str("provider", p.Name).Str("path", path).Msg("Policy document not found")
			missing = append(missing, p.Name)
			continue
		}
		log.Debug().Str("provider", p.Name).Str("path", path).Msg("Policy document found")
	}
	return missing
}
