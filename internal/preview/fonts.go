package preview

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gg/text"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"
)

// builtinFamily is the embedded Go Regular face. It backs every render
// when a configured family is missing, so the preview always draws text.
const builtinFamily = "Go"

// Catalog maps font family names to loaded font sources and hands out
// cached faces. A family that failed to load falls back to the first
// family that did, and finally to the embedded face, so a misconfigured
// font file degrades the preview instead of blanking it.
type Catalog struct {
	log *zap.Logger

	mu       sync.Mutex
	sources  map[string]*text.FontSource
	fallback string
	faces    map[faceKey]text.Face
}

type faceKey struct {
	family string
	size   float64
}

// NewCatalog loads every family in files (family name -> TTF path).
// Families that fail to load are logged and skipped; the embedded face is
// always present.
func NewCatalog(files map[string]string, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Catalog{
		log:     log,
		sources: make(map[string]*text.FontSource),
		faces:   make(map[faceKey]text.Face),
	}
	if src, err := text.NewFontSource(goregular.TTF); err == nil {
		c.sources[builtinFamily] = src
		c.fallback = builtinFamily
	} else {
		log.Warn("embedded font unavailable", zap.Error(err))
	}
	families := make([]string, 0, len(files))
	for family := range files {
		families = append(families, family)
	}
	sort.Strings(families)
	for _, family := range families {
		src, err := text.NewFontSourceFromFile(files[family])
		if err != nil {
			log.Warn("font load failed", zap.String("family", family), zap.String("path", files[family]), zap.Error(err))
			continue
		}
		c.sources[family] = src
		if c.fallback == builtinFamily || c.fallback == "" {
			c.fallback = family
		}
	}
	return c
}

// Ready reports whether every requested family loaded. The embedded
// fallback keeps rendering alive either way; the error is for startup
// logging.
func (c *Catalog) Ready(want []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var missing []string
	for _, family := range want {
		if _, ok := c.sources[family]; !ok {
			missing = append(missing, family)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("fonts not loaded: %v", missing)
	}
	return nil
}

// Face returns a cached face for family at size. Unknown names fall back
// to the first configured family, then to the embedded face. Returns nil
// only when even the embedded font failed to parse; the renderer then
// skips text drawing.
func (c *Catalog) Face(family string, size float64) text.Face {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sources[family]; !ok {
		family = c.fallback
	}
	src, ok := c.sources[family]
	if !ok {
		return nil
	}
	key := faceKey{family: family, size: size}
	if face, ok := c.faces[key]; ok {
		return face
	}
	face := src.Face(size)
	c.faces[key] = face
	return face
}
