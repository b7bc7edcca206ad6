package i18n

import (
	"fmt"
	"strings"
	"sync"

	"github.com/qdashboard/qdashboard/internal/eventbus"
)

// Switcher owns the active UI language.
type Switcher struct {
	catalog *Catalog
	bus     *eventbus.Bus

	mu      sync.RWMutex
	current string
}

func NewSwitcher(catalog *Catalog, bus *eventbus.Bus, initial string) (*Switcher, error) {
	lang := normalize(initial)
	if lang == "" {
		lang = DefaultLanguage
	}
	if !catalog.Supported(lang) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, initial)
	}
	return &Switcher{catalog: catalog, bus: bus, current: lang}, nil
}

func (s *Switcher) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Switcher) Catalog() *Catalog { return s.catalog }

// Set switches the language and publishes language-changed when it differs
// from the current one.
func (s *Switcher) Set(lang string) error {
	lang = normalize(lang)
	if !s.catalog.Supported(lang) {
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	s.mu.Lock()
	changed := s.current != lang
	s.current = lang
	s.mu.Unlock()

	if changed && s.bus != nil {
		s.bus.Publish(eventbus.TopicLanguageChanged, eventbus.LanguageChanged{Language: lang})
	}
	return nil
}

// Toggle flips between zh-tw and en.
func (s *Switcher) Toggle() error {
	if s.Current() == DefaultLanguage {
		return s.Set("en")
	}
	return s.Set(DefaultLanguage)
}

func normalize(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// Label returns key in the active language.
func (s *Switcher) Label(key string) string {
	return s.catalog.Label(s.Current(), key)
}
