// Package fonts registers the font families an element needs so the host
// page can load them.
package fonts

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/image/font/sfnt"
)

// DefaultBaseURL is the web font service used for families without a
// local asset.
const DefaultBaseURL = "https://fonts.googleapis.com/css"

// systemFamilies are available everywhere and never enqueued.
var systemFamilies = []string{
	"arial", "tahoma", "verdana", "helvetica", "times new roman",
	"trebuchet ms", "georgia", "serif", "sans-serif", "monospace",
}

// Loader ensures a font family is registered for loading.
type Loader interface {
	Enqueue(family string)
}

// Asset describes how one enqueued family is loaded.
type Asset struct {
	Family string
	// URL is the stylesheet URL for remote families, or the font file
	// path for local ones.
	URL   string
	Local bool
}

// Registry tracks enqueued families and the local font files known to the
// editor. It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	baseURL  string
	local    map[string]Asset
	enqueued []Asset
	seen     map[string]bool
}

// NewRegistry creates a registry resolving remote families against baseURL.
// An empty baseURL uses DefaultBaseURL.
func NewRegistry(baseURL string) *Registry {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Registry{
		baseURL: baseURL,
		local:   make(map[string]Asset),
		seen:    make(map[string]bool),
	}
}

// RegisterFont parses an OpenType/TrueType font and makes its family
// available as a local asset served from path. It returns the family name.
func (r *Registry) RegisterFont(src []byte, path string) (string, error) {
	f, err := sfnt.Parse(src)
	if err != nil {
		return "", fmt.Errorf("fonts: parse %s: %w", path, err)
	}
	var buf sfnt.Buffer
	family, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		return "", fmt.Errorf("fonts: family name of %s: %w", path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.local[normalize(family)] = Asset{Family: family, URL: path, Local: true}
	return family, nil
}

// LoadDir registers every .ttf and .otf file in dir.
func (r *Registry) LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("fonts: read %s: %w", dir, err)
	}
	var families []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		src, err := os.ReadFile(path)
		if err != nil {
			return families, fmt.Errorf("fonts: read %s: %w", path, err)
		}
		family, err := r.RegisterFont(src, path)
		if err != nil {
			return families, err
		}
		families = append(families, family)
	}
	return families, nil
}

// Enqueue registers family for loading. Empty names, system families and
// families already enqueued are ignored.
func (r *Registry) Enqueue(family string) {
	family = strings.TrimSpace(family)
	key := normalize(family)
	if key == "" || slices.Contains(systemFamilies, key) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	if asset, ok := r.local[key]; ok {
		r.enqueued = append(r.enqueued, asset)
		return
	}
	r.enqueued = append(r.enqueued, Asset{
		Family: family,
		URL:    r.baseURL + "?family=" + url.QueryEscape(family),
	})
}

// Assets returns the enqueued families in enqueue order.
func (r *Registry) Assets() []Asset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.enqueued)
}

// FontFaces returns @font-face rules for the enqueued local families.
func (r *Registry) FontFaces() string {
	var sb strings.Builder
	for _, a := range r.Assets() {
		if !a.Local {
			continue
		}
		fmt.Fprintf(&sb, "@font-face{font-family:%q;src:url(%q);}", a.Family, a.URL)
	}
	return sb.String()
}

func normalize(family string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(family), `"'`))
}
