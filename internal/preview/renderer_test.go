package preview

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtinCatalog() *Catalog {
	return NewCatalog(nil, nil)
}

func TestFitFontSizeStepsDownUntilTextFits(t *testing.T) {
	// Measured width proportional to the size: 10px per point.
	measure := func(size float64) float64 { return size * 10 }

	got := fitFontSize(measure, 340)
	assert.Equal(t, 34, got, "largest even size whose width fits 340")
}

func TestFitFontSizeKeepsMaximumWhenTextFits(t *testing.T) {
	measure := func(size float64) float64 { return 100 }
	assert.Equal(t, maxFontSize, fitFontSize(measure, 740))
}

func TestFitFontSizeNeverDropsBelowFloor(t *testing.T) {
	calls := 0
	measure := func(size float64) float64 {
		calls++
		return 1e9
	}
	assert.Equal(t, minFontSize, fitFontSize(measure, 100))
	// (80-16)/2 candidate sizes tried, then the loop stops.
	assert.Equal(t, 32, calls)
}

func TestExtrusionDepth(t *testing.T) {
	assert.Equal(t, 3, extrusionDepth(16))
	assert.Equal(t, 3, extrusionDepth(36))
	assert.Equal(t, 4, extrusionDepth(48))
	assert.Equal(t, 6, extrusionDepth(80))
}

func TestFitLogoScalesDownNeverUp(t *testing.T) {
	// Large logo shrinks to the tighter of the two caps.
	w, h, x, y, ok := fitLogo(1000, 1000, 800, 360, 200)
	require.True(t, ok)
	assert.InDelta(t, 145, w, 0.01)
	assert.InDelta(t, 145, h, 0.01)
	assert.InDelta(t, (800-145.0)/2, x, 0.01)
	assert.InDelta(t, 205, y, 0.01)

	// Small logo keeps its native size.
	w, h, _, _, ok = fitLogo(50, 50, 800, 360, 200)
	require.True(t, ok)
	assert.Equal(t, 50.0, w)
	assert.Equal(t, 50.0, h)
}

func TestFitLogoRespectsWidthCap(t *testing.T) {
	// Very wide logo: the width cap of 0.3 x canvas wins.
	w, _, _, _, ok := fitLogo(4000, 100, 800, 360, 100)
	require.True(t, ok)
	assert.InDelta(t, 240, w, 0.01)
}

func TestFitLogoNoVerticalSpace(t *testing.T) {
	_, _, _, _, ok := fitLogo(100, 100, 800, 360, 350)
	assert.False(t, ok)
}

func TestRenderDimensions(t *testing.T) {
	r := NewRenderer(builtinCatalog(), nil)

	img, err := r.Render(Scene{}, 800, 1)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 360, img.Bounds().Dy(), "height is 0.45 x width")

	img, err = r.Render(Scene{}, 300, 1)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dy(), "height never drops below 200")

	img, err = r.Render(Scene{}, 800, 2)
	require.NoError(t, err)
	assert.Equal(t, 1600, img.Bounds().Dx())
	assert.Equal(t, 720, img.Bounds().Dy())
}

func TestRenderRejectsBadWidth(t *testing.T) {
	r := NewRenderer(builtinCatalog(), nil)
	_, err := r.Render(Scene{}, 0, 1)
	assert.Error(t, err)
}

func TestRenderEmptySceneKeepsWhiteBackground(t *testing.T) {
	r := NewRenderer(builtinCatalog(), nil)
	img, err := r.Render(Scene{}, 400, 1)
	require.NoError(t, err)

	// The placeholder hint sits at the center; the corners stay clean.
	c := color.NRGBAModel.Convert(img.At(10, 10)).(color.NRGBA)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(255), c.G)
	assert.Equal(t, uint8(255), c.B)
}

func TestRenderDrawsTextWithEmbeddedFace(t *testing.T) {
	r := NewRenderer(builtinCatalog(), nil)
	img, err := r.Render(Scene{Text: "HALLO", ColorHex: "#ff0000"}, 800, 1)
	require.NoError(t, err)

	// Text is centered at (400, 180). With the embedded face loaded the
	// band around the center carries ink: red top glyphs over the darker
	// extrusion layers and the translucent shadow.
	var inked, red bool
	for y := 140; y < 220 && !red; y++ {
		for x := 200; x < 600; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.R == 255 && c.G == 255 && c.B == 255 {
				continue
			}
			inked = true
			if c.R > 180 && c.G < 100 && c.B < 100 {
				red = true
				break
			}
		}
	}
	assert.True(t, inked, "text band must not stay blank")
	assert.True(t, red, "top layer keeps the configured color")
}

func TestRenderPlaceholderIsLocalizable(t *testing.T) {
	r := NewRenderer(builtinCatalog(), nil)

	def, err := r.Render(Scene{}, 400, 1)
	require.NoError(t, err)
	loc, err := r.Render(Scene{Placeholder: "Your text appears here..."}, 400, 1)
	require.NoError(t, err)

	assert.False(t, framesEqual(def, loc), "a localized hint changes the frame")
}

func framesEqual(a, b image.Image) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	for y := a.Bounds().Min.Y; y < a.Bounds().Max.Y; y++ {
		for x := a.Bounds().Min.X; x < a.Bounds().Max.X; x++ {
			if a.At(x, y) != b.At(x, y) {
				return false
			}
		}
	}
	return true
}

func TestRenderCompositesLogo(t *testing.T) {
	r := NewRenderer(builtinCatalog(), nil)
	scene := Scene{
		Text:     "Test",
		ColorHex: "#000000",
		LogoURI:  redSquareDataURI(t, 10),
	}

	img, err := r.Render(scene, 800, 1)
	require.NoError(t, err)

	// "Test" at 80px measures well under the 740px cap, so the fit loop
	// keeps the maximum size: the logo band starts at
	// 0.35*360 + 80/2 + 10 = 176 and the square is centered at y = 181.
	c := color.NRGBAModel.Convert(img.At(400, 185)).(color.NRGBA)
	assert.Greater(t, c.R, uint8(200), "logo pixel should be red")
	assert.Less(t, c.G, uint8(80))

	corner := color.NRGBAModel.Convert(img.At(5, 5)).(color.NRGBA)
	assert.Equal(t, uint8(255), corner.R, "background stays white")
}

func TestRenderIgnoresMalformedLogo(t *testing.T) {
	r := NewRenderer(builtinCatalog(), nil)
	_, err := r.Render(Scene{Text: "Test", LogoURI: "data:image/png;base64,!!!"}, 800, 1)
	assert.NoError(t, err, "a broken logo degrades the frame, never fails it")
}

func TestEncodePNG(t *testing.T) {
	r := NewRenderer(builtinCatalog(), nil)
	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf, Scene{}, 300, 1))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 300, decoded.Bounds().Dx())
}

func redSquareDataURI(t *testing.T, side int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
