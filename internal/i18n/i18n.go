// Package i18n serves the panel's French, English and Arabic string tables.
package i18n

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"strings"

	"backoffice/internal/shared/eventbus"
	"backoffice/internal/shared/logger"
	"backoffice/internal/store"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// LanguageKey is where the selected language is persisted.
const LanguageKey = "aromefloral_lang"

// Fallback is used for unknown languages and missing keys.
const Fallback = "fr"

// Text directions.
const (
	LTR = "ltr"
	RTL = "rtl"
)

//go:embed locales/*.yaml
var locales embed.FS

// Supported languages, fallback first; the matcher defaults to index 0.
var supported = []language.Tag{language.French, language.English, language.Arabic}

// Table is one language's strings as sent to the front end.
type Table struct {
	Lang    string            `json:"lang"`
	Dir     string            `json:"dir"`
	Name    string            `json:"name"`
	Strings map[string]string `json:"strings"`
}

// Catalog holds the parsed tables.
type Catalog struct {
	tables  map[string]map[string]string
	matcher language.Matcher
}

// Load parses the embedded tables.
func Load() (*Catalog, error) {
	c := &Catalog{
		tables:  make(map[string]map[string]string, len(supported)),
		matcher: language.NewMatcher(supported),
	}
	for _, tag := range supported {
		code := tag.String()
		raw, err := locales.ReadFile(path.Join("locales", code+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("read %s table: %w", code, err)
		}
		table := map[string]string{}
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("parse %s table: %w", code, err)
		}
		c.tables[code] = table
	}
	return c, nil
}

// Languages lists the supported codes.
func (c *Catalog) Languages() []string {
	out := make([]string, len(supported))
	for i, tag := range supported {
		out[i] = tag.String()
	}
	return out
}

// Resolve maps any language code or Accept-Language value onto a supported
// code; anything unrecognised resolves to the fallback.
func (c *Catalog) Resolve(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return Fallback
	}
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return Fallback
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return Fallback
	}
	return supported[idx].String()
}

// Direction is rtl for Arabic and ltr otherwise.
func Direction(lang string) string {
	if lang == "ar" {
		return RTL
	}
	return LTR
}

// T looks key up in lang, then in the fallback, then returns key itself.
func (c *Catalog) T(lang, key string) string {
	if v, ok := c.tables[c.Resolve(lang)][key]; ok && v != "" {
		return v
	}
	if v, ok := c.tables[Fallback][key]; ok && v != "" {
		return v
	}
	return key
}

// Table returns every key for lang with fallback values filled in.
func (c *Catalog) Table(lang string) Table {
	code := c.Resolve(lang)
	strs := make(map[string]string, len(c.tables[Fallback]))
	for k, v := range c.tables[Fallback] {
		strs[k] = v
	}
	for k, v := range c.tables[code] {
		if v != "" {
			strs[k] = v
		}
	}
	return Table{Lang: code, Dir: Direction(code), Name: strs["language.name"], Strings: strs}
}

// Preference persists the operator's language choice.
type Preference struct {
	catalog *Catalog
	store   store.Store
	bus     eventbus.Bus
	def     string
	log     logger.Logger
}

// NewPreference returns a preference defaulting to def.
func NewPreference(c *Catalog, s store.Store, bus eventbus.Bus, def string, log logger.Logger) *Preference {
	if log == nil {
		log = logger.NewNop()
	}
	return &Preference{catalog: c, store: s, bus: bus, def: c.Resolve(def), log: log.WithComponent("i18n")}
}

// Current returns the persisted language, or the default when none is stored.
func (p *Preference) Current(ctx context.Context) (string, error) {
	raw, err := p.store.Get(ctx, LanguageKey)
	if errors.Is(err, store.ErrNotFound) {
		return p.def, nil
	}
	if err != nil {
		return p.def, fmt.Errorf("read language: %w", err)
	}
	return p.catalog.Resolve(string(raw)), nil
}

// Set resolves lang, persists the result and returns it.
func (p *Preference) Set(ctx context.Context, lang string) (string, error) {
	code := p.catalog.Resolve(lang)
	if err := p.store.Set(ctx, LanguageKey, []byte(code)); err != nil {
		return "", fmt.Errorf("persist language: %w", err)
	}
	p.log.WithFields(map[string]interface{}{"lang": code, "requested": lang}).Debug("Language changed")
	if p.bus != nil {
		p.bus.PublishAndForget(ctx, eventbus.NewEvent(eventbus.EventTypeLanguageChanged, code, "i18n"))
	}
	return code, nil
}
