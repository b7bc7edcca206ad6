// Package i18n holds the zh-tw/en label catalogs and the language switcher.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when a label is missing in the requested language.
const DefaultLanguage = "zh-tw"

var ErrUnsupportedLanguage = errors.New("unsupported language")

//go:embed locales/*.yaml
var localeFS embed.FS

type localeFile struct {
	Language string            `yaml:"language"`
	Name     string            `yaml:"name"`
	Labels   map[string]string `yaml:"labels"`
}

type Catalog struct {
	names  map[string]string
	labels map[string]map[string]string
}

// Load reads the embedded locale files.
func Load() (*Catalog, error) {
	c := &Catalog{
		names:  make(map[string]string),
		labels: make(map[string]map[string]string),
	}

	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	for _, e := range entries {
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", e.Name(), err)
		}
		if err := c.Add(data); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", e.Name(), err)
		}
	}
	if _, ok := c.labels[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("default language %q missing", DefaultLanguage)
	}
	return c, nil
}

// Add parses one YAML locale document and merges it into the catalog.
func (c *Catalog) Add(data []byte) error {
	var f localeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	lang := strings.ToLower(strings.TrimSpace(f.Language))
	if lang == "" {
		return errors.New("locale has no language")
	}

	dst, ok := c.labels[lang]
	if !ok {
		dst = make(map[string]string, len(f.Labels))
		c.labels[lang] = dst
	}
	for k, v := range f.Labels {
		dst[k] = v
	}
	if f.Name != "" {
		c.names[lang] = f.Name
	}
	return nil
}

// Label returns the text for key in lang, falling back to the default
// language and finally to the key itself.
func (c *Catalog) Label(lang, key string) string {
	if v, ok := c.labels[lang][key]; ok {
		return v
	}
	if v, ok := c.labels[DefaultLanguage][key]; ok {
		return v
	}
	return key
}

func (c *Catalog) Supported(lang string) bool {
	_, ok := c.labels[lang]
	return ok
}

// Languages lists language codes with their display names, sorted by code.
func (c *Catalog) Languages() []Language {
	out := make([]Language, 0, len(c.labels))
	for code := range c.labels {
		out = append(out, Language{Code: code, Name: c.names[code]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
