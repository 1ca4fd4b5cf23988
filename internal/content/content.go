// Package content serves the static help pages around the customizer:
// care instructions, mounting guide, shipping notes. Pages are markdown
// files with YAML front matter, rendered once and cached; a missing file
// falls back to the baked-in German copy.
package content

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

const defaultCacheTTL = 10 * time.Minute

// Page is a rendered help page. Body is already sanitized HTML.
type Page struct {
	Slug      string
	Lang      string
	Title     string
	Summary   string
	Body      template.HTML
	UpdatedAt time.Time
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
}

// Library loads and caches help pages from a content directory.
type Library struct {
	dir    string
	ttl    time.Duration
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu    sync.Mutex
	cache map[string]cached
}

type cached struct {
	page    Page
	expires time.Time
}

func NewLibrary(dir string) *Library {
	return &Library{
		dir:    dir,
		ttl:    defaultCacheTTL,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
		cache:  make(map[string]cached),
	}
}

// Page returns the page for slug in lang, trying lang-specific markdown
// first, then the bare slug, then the built-in fallback copy.
func (l *Library) Page(slug, lang string) (Page, error) {
	key := slug + "|" + lang
	l.mu.Lock()
	if c, ok := l.cache[key]; ok && time.Now().Before(c.expires) {
		l.mu.Unlock()
		return c.page, nil
	}
	l.mu.Unlock()

	page, err := l.load(slug, lang)
	if err != nil {
		if fb, ok := fallbackPage(slug, lang); ok {
			return fb, nil
		}
		return Page{}, err
	}

	l.mu.Lock()
	l.cache[key] = cached{page: page, expires: time.Now().Add(l.ttl)}
	l.mu.Unlock()
	return page, nil
}

func (l *Library) load(slug, lang string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, fmt.Errorf("content: empty slug")
	}
	candidates := []string{
		filepath.Join(l.dir, slug+"."+lang+".md"),
		filepath.Join(l.dir, slug+".md"),
	}
	var raw []byte
	var err error
	for _, path := range candidates {
		raw, err = os.ReadFile(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		return Page{}, fmt.Errorf("content: %s (%s): %w", slug, lang, err)
	}

	meta, body := splitFrontMatter(string(raw))
	var fm frontMatter
	if meta != "" {
		if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
			return Page{}, fmt.Errorf("content: front matter of %s: %w", slug, err)
		}
	}

	var buf bytes.Buffer
	if err := l.md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("content: render %s: %w", slug, err)
	}

	page := Page{
		Slug:    slug,
		Lang:    lang,
		Title:   fm.Title,
		Summary: fm.Summary,
		Body:    template.HTML(l.policy.SanitizeBytes(buf.Bytes())),
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(fm.UpdatedAt)); err == nil {
		page.UpdatedAt = t
	}
	return page, nil
}

// splitFrontMatter separates a leading "---" YAML block from the body.
func splitFrontMatter(input string) (meta, body string) {
	if !strings.HasPrefix(input, "---\n") && !strings.HasPrefix(input, "---\r\n") {
		return "", input
	}
	rest := input[strings.Index(input, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", input
	}
	meta = rest[:end]
	body = rest[end+len("\n---"):]
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	}
	return meta, body
}

func sanitizeSlug(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	var b strings.Builder
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func prettifySlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
