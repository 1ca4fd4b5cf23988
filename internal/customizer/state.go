// Package customizer owns the product-customizer state: free text rendered as
// a 3D-styled preview, with font, size tier, color and optional logo driving
// a computed price and, on submit, a cart line-item payload.
package customizer

import (
	"strings"
	"unicode"

	"lampery.dev/storefront/internal/format"
)

// Fonts lists the selectable preview fonts, first entry is the default.
var Fonts = []string{"Bangers", "Arial", "Chicle", "Lobster", "PT Sans"}

// Size is one price tier: the per-letter price in cents for a given height.
type Size struct {
	Label string `yaml:"label"`
	Price int64  `yaml:"price"`
}

// Color is a selectable base color.
type Color struct {
	Hex  string `yaml:"hex"`
	Name string `yaml:"name"`
}

// Logo is an accepted upload, kept as a data URI for preview and line-item
// embedding.
type Logo struct {
	FileName string
	DataURI  string
}

// Config carries the externally supplied customizer inputs: size tiers,
// color palette, and the commerce variant backing each size tier.
type Config struct {
	Sizes      []Size           `yaml:"sizes"`
	Colors     []Color          `yaml:"colors"`
	VariantIDs map[string]int64 `yaml:"variant_ids"`
	ProductURL string           `yaml:"product_url"`
}

// State is the single live customizer instance for a session. Derived values
// (letter count, price, validity) are computed on demand, never stored, so
// they cannot desynchronize. Not safe for concurrent use; the session store
// serializes access.
type State struct {
	text      string
	font      string
	sizeIndex int
	color     string
	colorName string
	logo      *Logo

	cfg Config

	watchers []func()
	batching bool
	dirty    bool

	// OnLogoRejected, when set, is told why a logo upload was dropped. The
	// upload itself always fails silently at this layer.
	OnLogoRejected func(reason RejectReason)
}

// NewState initializes the state with the externally supplied configuration:
// default font, first size tier, first color.
func NewState(cfg Config) *State {
	s := &State{
		font: Fonts[0],
		cfg:  cfg,
	}
	if len(cfg.Colors) > 0 {
		s.color = cfg.Colors[0].Hex
		s.colorName = cfg.Colors[0].Name
	}
	return s
}

// Watch subscribes to preview-relevant changes: text, font, color, logo.
// Every such mutation notifies each watcher exactly once; size changes do not
// re-render the preview (they only move the price).
func (s *State) Watch(fn func()) {
	if fn != nil {
		s.watchers = append(s.watchers, fn)
	}
}

// Batch groups several mutations into a single watcher notification.
func (s *State) Batch(fn func()) {
	if s.batching {
		fn()
		return
	}
	s.batching = true
	fn()
	s.batching = false
	if s.dirty {
		s.dirty = false
		s.fire()
	}
}

func (s *State) notify() {
	if s.batching {
		s.dirty = true
		return
	}
	s.fire()
}

func (s *State) fire() {
	for _, fn := range s.watchers {
		fn()
	}
}

// SetText replaces the customizer text.
func (s *State) SetText(text string) {
	if s.text == text {
		return
	}
	s.text = text
	s.notify()
}

// SelectFont switches the preview font; unknown names are ignored.
func (s *State) SelectFont(font string) {
	for _, f := range Fonts {
		if f == font {
			if s.font != f {
				s.font = f
				s.notify()
			}
			return
		}
	}
}

// SelectSize picks a size tier by index; out-of-range indices are ignored so
// sizeIndex always resolves to a valid entry while sizes exist.
func (s *State) SelectSize(index int) {
	if index < 0 || index >= len(s.cfg.Sizes) {
		return
	}
	s.sizeIndex = index
}

// SelectColor picks a base color.
func (s *State) SelectColor(hex, name string) {
	if s.color == hex && s.colorName == name {
		return
	}
	s.color = hex
	s.colorName = name
	s.notify()
}

// RemoveLogo clears the uploaded logo.
func (s *State) RemoveLogo() {
	if s.logo == nil {
		return
	}
	s.logo = nil
	s.notify()
}

// Text returns the raw customizer text.
func (s *State) Text() string { return s.text }

// Font returns the selected font family.
func (s *State) Font() string { return s.font }

// Color returns the selected hex color.
func (s *State) Color() string { return s.color }

// ColorName returns the selected color's display name.
func (s *State) ColorName() string { return s.colorName }

// Logo returns the accepted logo, if any.
func (s *State) Logo() *Logo { return s.logo }

// LetterCount is the number of non-whitespace characters; whitespace of any
// kind never costs anything.
func (s *State) LetterCount() int {
	n := 0
	for _, r := range s.text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// WordCount is the number of whitespace-separated tokens.
func (s *State) WordCount() int {
	return len(strings.Fields(s.text))
}

// PreviewText is what the canvas shows: the first three words joined by
// single spaces.
func (s *State) PreviewText() string {
	words := strings.Fields(s.text)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

// CurrentSize resolves the selected size tier.
func (s *State) CurrentSize() (Size, bool) {
	if s.sizeIndex < 0 || s.sizeIndex >= len(s.cfg.Sizes) {
		return Size{}, false
	}
	return s.cfg.Sizes[s.sizeIndex], true
}

// PricePerLetter is the selected tier's per-letter price in cents.
func (s *State) PricePerLetter() int64 {
	size, ok := s.CurrentSize()
	if !ok {
		return 0
	}
	return size.Price
}

// TotalPrice is letters times per-letter price, exact integer cents.
func (s *State) TotalPrice() int64 {
	return int64(s.LetterCount()) * s.PricePerLetter()
}

// FormattedPricePerLetter renders the per-letter price for display.
func (s *State) FormattedPricePerLetter() string {
	return format.FmtEUR(s.PricePerLetter())
}

// FormattedTotal renders the total for display.
func (s *State) FormattedTotal() string {
	return format.FmtEUR(s.TotalPrice())
}

// IsValid gates submission: at least one letter, a resolvable size tier, and
// a selected color.
func (s *State) IsValid() bool {
	if s.LetterCount() == 0 {
		return false
	}
	if _, ok := s.CurrentSize(); !ok {
		return false
	}
	return s.color != ""
}

// CurrentVariantID maps the selected size tier to its commerce variant.
func (s *State) CurrentVariantID() (int64, bool) {
	size, ok := s.CurrentSize()
	if !ok {
		return 0, false
	}
	id, ok := s.cfg.VariantIDs[size.Label]
	return id, ok
}
