package preview

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"go.uber.org/zap"

	"lampery.dev/storefront/internal/customizer"
)

const (
	maxFontSize = 80
	minFontSize = 16
	fontStep    = 2

	// Horizontal breathing room on each side of the text.
	sidePadding = 30

	heightRatio = 0.45
	minHeight   = 200

	logoWidthRatio = 0.3
	extrusionStep  = 0.8

	placeholderText = "Dein Text erscheint hier..."
	placeholderSize = 16
)

// Scene is an immutable snapshot of the customizer state, carrying just
// what the renderer needs. Taking a snapshot keeps Render free of locks
// and makes frames reproducible.
type Scene struct {
	Text     string
	Font     string
	ColorHex string
	LogoURI  string

	// Placeholder is the localized hint drawn when Text is empty.
	// Empty means the default German hint.
	Placeholder string
}

// SceneFrom snapshots the drawable fields of st.
func SceneFrom(st *customizer.State) Scene {
	sc := Scene{
		Text:     st.PreviewText(),
		Font:     st.Font(),
		ColorHex: st.Color(),
	}
	if logo := st.Logo(); logo != nil {
		sc.LogoURI = logo.DataURI
	}
	return sc
}

// Renderer draws product preview frames. Safe for concurrent use; all
// mutable state lives in the per-call drawing context.
type Renderer struct {
	fonts *Catalog
	log   *zap.Logger
}

func NewRenderer(fonts *Catalog, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{fonts: fonts, log: log}
}

// Render draws the scene at the given CSS-pixel width. dpr scales the
// backing store for high-density displays; coordinates stay in CSS
// pixels. Height derives from width, never below minHeight.
func (r *Renderer) Render(scene Scene, width int, dpr float64) (image.Image, error) {
	if width <= 0 {
		return nil, fmt.Errorf("preview: width must be positive, got %d", width)
	}
	if dpr <= 0 {
		dpr = 1
	}
	w := float64(width)
	h := math.Max(minHeight, heightRatio*w)

	dc := gg.NewContext(int(w*dpr+0.5), int(h*dpr+0.5))
	dc.Scale(dpr, dpr)

	dc.SetHexColor("#ffffff")
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	if scene.Text == "" {
		hint := scene.Placeholder
		if hint == "" {
			hint = placeholderText
		}
		dc.SetFont(r.fonts.Face(scene.Font, placeholderSize))
		dc.SetHexColor("#cccccc")
		dc.DrawStringAnchored(hint, w/2, h/2, 0.5, 0.5)
		return dc.Image(), nil
	}

	fontSize := fitFontSize(func(size float64) float64 {
		dc.SetFont(r.fonts.Face(scene.Font, size))
		tw, _ := dc.MeasureString(scene.Text)
		return tw
	}, w-2*sidePadding)

	textY := h / 2
	hasLogo := scene.LogoURI != ""
	if hasLogo {
		// Text moves up to leave room for the logo underneath.
		textY = 0.35 * h
	}

	base := scene.ColorHex
	if base == "" {
		base = "#000000"
	}

	dc.SetFont(r.fonts.Face(scene.Font, float64(fontSize)))

	// Extruded back layers, darkest first so nearer layers cover them.
	depth := extrusionDepth(fontSize)
	for i := depth; i >= 1; i-- {
		off := float64(i) * extrusionStep
		dc.SetHexColor(DarkenHex(base, 20+i*3))
		dc.DrawStringAnchored(scene.Text, w/2+off, textY+off, 0.5, 0.5)
	}

	// Soft drop shadow, scoped so the translucent fill never leaks
	// into later draws.
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.25)
	dc.DrawStringAnchored(scene.Text, w/2+3, textY+3, 0.5, 0.5)
	dc.Pop()

	dc.SetHexColor(base)
	dc.DrawStringAnchored(scene.Text, w/2, textY, 0.5, 0.5)

	if hasLogo {
		startY := textY + float64(fontSize)/2 + 10
		if err := r.drawLogo(dc, scene.LogoURI, w, h, startY); err != nil {
			r.log.Warn("logo draw failed", zap.Error(err))
		}
	}
	return dc.Image(), nil
}

// EncodePNG renders the scene and writes it as PNG.
func (r *Renderer) EncodePNG(w io.Writer, scene Scene, width int, dpr float64) error {
	img, err := r.Render(scene, width, dpr)
	if err != nil {
		return err
	}
	return gg.NewContextForImage(img).EncodePNG(w)
}

func (r *Renderer) drawLogo(dc *gg.Context, dataURI string, canvasW, canvasH, startY float64) error {
	_, raw, ok := customizer.DecodeDataURI(dataURI)
	if !ok {
		return fmt.Errorf("preview: malformed logo data URI")
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("preview: decode logo: %w", err)
	}
	b := img.Bounds()
	dw, dh, x, y, ok := fitLogo(float64(b.Dx()), float64(b.Dy()), canvasW, canvasH, startY)
	if !ok {
		return nil
	}
	dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:         x,
		Y:         y,
		DstWidth:  dw,
		DstHeight: dh,
		Opacity:   1,
	})
	return nil
}

// fitFontSize walks down from maxFontSize in fontStep decrements until
// the measured text fits maxWidth or the floor is reached. measure is
// called once per candidate size.
func fitFontSize(measure func(size float64) float64, maxWidth float64) int {
	size := maxFontSize
	for size > minFontSize && measure(float64(size)) > maxWidth {
		size -= fontStep
	}
	return size
}

// extrusionDepth scales the pseudo-3D layer count with the font size so
// small text does not drown in its own extrusion.
func extrusionDepth(fontSize int) int {
	if d := fontSize / 12; d > 3 {
		return d
	}
	return 3
}

// fitLogo scales an iw x ih image into the band below startY. The logo
// is capped at logoWidthRatio of the canvas width and never upscaled.
// Reports ok=false when no vertical space remains.
func fitLogo(iw, ih, canvasW, canvasH, startY float64) (w, h, x, y float64, ok bool) {
	maxH := canvasH - startY - 15
	if maxH <= 0 || iw <= 0 || ih <= 0 {
		return 0, 0, 0, 0, false
	}
	maxW := canvasW * logoWidthRatio
	scale := math.Min(math.Min(maxW/iw, maxH/ih), 1)
	w = iw * scale
	h = ih * scale
	x = (canvasW - w) / 2
	y = startY + 5
	return w, h, x, y, true
}
