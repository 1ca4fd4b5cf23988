// Package i18n holds the storefront's message catalog: short user-facing
// strings (toast messages, cart labels, the preview placeholder) keyed by
// dotted names, one flat JSON file per language under locales/.
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Bundle maps language code to message table. German is the shop's primary
// language; every key must exist there, other languages may lag behind.
type Bundle struct {
	messages map[string]map[string]string
	fallback string
}

// Load reads <dir>/<lang>.json for each language in langs. A missing file
// is an error only for the fallback language; secondary languages may ship
// later.
func Load(dir, fallback string, langs []string) (*Bundle, error) {
	if len(langs) == 0 {
		langs = []string{fallback}
	}
	b := &Bundle{
		messages: make(map[string]map[string]string, len(langs)),
		fallback: fallback,
	}
	for _, lang := range langs {
		raw, err := os.ReadFile(filepath.Join(dir, lang+".json"))
		if err != nil {
			if lang == fallback {
				return nil, fmt.Errorf("i18n: load %s: %w", lang, err)
			}
			continue
		}
		table := map[string]string{}
		if err := json.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", lang, err)
		}
		b.messages[lang] = table
	}
	if _, ok := b.messages[fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback language %s missing", fallback)
	}
	return b, nil
}

// Fallback returns the primary language code.
func (b *Bundle) Fallback() string { return b.fallback }

// Has reports whether a message table was loaded for lang.
func (b *Bundle) Has(lang string) bool {
	_, ok := b.messages[lang]
	return ok
}

// T looks key up in lang, then in the fallback language, and finally
// returns the key itself so a missing message stays visible in the UI.
func (b *Bundle) T(lang, key string) string {
	if msg, ok := b.messages[lang][key]; ok {
		return msg
	}
	if msg, ok := b.messages[b.fallback][key]; ok {
		return msg
	}
	return key
}

// Resolve picks the loaded language the Accept-Language header prefers
// most. Region subtags are reduced to their base language (de-AT counts as
// de); among equal q-values the header's own order wins. An empty or
// unusable header resolves to the fallback.
func (b *Bundle) Resolve(header string) string {
	best := b.fallback
	bestQ := -1.0
	for _, part := range strings.Split(header, ",") {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}
		lang := entry
		q := 1.0
		if tag, params, ok := strings.Cut(entry, ";"); ok {
			lang = strings.TrimSpace(tag)
			if qs, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
				if v, err := strconv.ParseFloat(qs, 64); err == nil {
					q = min(max(v, 0), 1)
				}
			}
		}
		if i := strings.IndexByte(lang, '-'); i >= 0 {
			lang = lang[:i]
		}
		lang = strings.ToLower(lang)
		if q > bestQ && b.Has(lang) {
			best = lang
			bestQ = q
		}
	}
	return best
}
