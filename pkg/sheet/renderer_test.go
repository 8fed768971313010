package sheet

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hevi0/cardprint/pkg/layout"
)

// writeCardPNG writes a solid-color card image to disk and returns its path.
func writeCardPNG(t *testing.T, dir string, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 56))
	for y := 0; y < 56; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, "card.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func testSpec() *Spec {
	return &Spec{
		Paper:          "US",
		PPI:            300,
		CardBackground: "#ffffff",
		LineColor:      "#808080",
	}
}

func TestNewRendererRejectsBadSpecs(t *testing.T) {
	bad := testSpec()
	bad.PPI = 150
	_, err := NewRenderer(bad)
	assert.Error(t, err)

	bad = testSpec()
	bad.Paper = "letter"
	_, err = NewRenderer(bad)
	assert.Error(t, err)

	bad = testSpec()
	bad.LineColor = "gray"
	_, err = NewRenderer(bad)
	assert.Error(t, err)
}

func TestRenderPageCompositesCards(t *testing.T) {
	red := color.RGBA{R: 220, G: 20, B: 20, A: 255}
	cardPath := writeCardPNG(t, t.TempDir(), red)

	r, err := NewRenderer(testSpec())
	require.NoError(t, err)

	img, warnings, err := r.RenderPage(1, []string{cardPath})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, layout.PageWidth(layout.PPI300, layout.PaperUS), img.Bounds().Dx())
	assert.Equal(t, layout.PageHeight(layout.PPI300, layout.PaperUS), img.Bounds().Dy())

	// Center of slot 0 carries the card color.
	slot, err := layout.Slot(0, layout.PPI300, layout.PaperUS)
	require.NoError(t, err)
	got := img.RGBAAt(slot.X+slot.W/2, slot.Y+slot.H/2)
	assert.Equal(t, red, got)

	// The gutter left of slot 0 carries the line color.
	gutter := img.RGBAAt(slot.X-1, slot.Y+slot.H/2)
	assert.Equal(t, color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 255}, gutter)

	// An empty slot keeps the page background.
	empty, err := layout.Slot(8, layout.PPI300, layout.PaperUS)
	require.NoError(t, err)
	got = img.RGBAAt(empty.X+empty.W/2, empty.Y+empty.H/2)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, got)
}

func TestRenderPageWarnsOnUnreadableCard(t *testing.T) {
	r, err := NewRenderer(testSpec())
	require.NoError(t, err)

	img, warnings, err := r.RenderPage(1, []string{filepath.Join(t.TempDir(), "absent.png")})
	require.NoError(t, err)
	require.NotNil(t, img)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "slot 0")
}

func TestRenderPageRejectsOverfullPage(t *testing.T) {
	r, err := NewRenderer(testSpec())
	require.NoError(t, err)

	_, _, err = r.RenderPage(1, make([]string, layout.CardsPerPage+1))
	assert.Error(t, err)
}

func TestCornerGuidesSkipFailedSlots(t *testing.T) {
	spec := testSpec()
	spec.RoundedCorners = true

	red := color.RGBA{R: 200, A: 255}
	cardPath := writeCardPNG(t, t.TempDir(), red)
	missing := filepath.Join(t.TempDir(), "absent.png")

	r, err := NewRenderer(spec)
	require.NoError(t, err)

	// Slot 0 fails to load, slot 1 succeeds.
	img, warnings, err := r.RenderPage(1, []string{missing, cardPath})
	require.NoError(t, err)
	require.Len(t, warnings, 1)

	radius := layout.CornerRadiusPx(layout.PPI300)
	arcAt := func(pos int) color.RGBA {
		slot, serr := layout.Slot(pos, layout.PPI300, layout.PaperUS)
		require.NoError(t, serr)
		off := radius - int(float64(radius)*0.7071)
		return img.RGBAAt(slot.X+off, slot.Y+off)
	}

	// The failed slot stays blank; the loaded one gets its corner arc.
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, arcAt(0))
	assert.Equal(t, color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 255}, arcAt(1))
}

func TestRenderPageWithGuidesAndLabel(t *testing.T) {
	spec := testSpec()
	spec.RoundedCorners = true
	spec.FooterLabel = true

	red := color.RGBA{R: 200, A: 255}
	cardPath := writeCardPNG(t, t.TempDir(), red)

	r, err := NewRenderer(spec)
	require.NoError(t, err)

	img, warnings, err := r.RenderPage(3, []string{cardPath})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// A corner arc pixel in slot 0: on the top-left quarter circle at
	// 45 deg, offset ~radius(1-1/sqrt(2)) inside the corner.
	slot, err := layout.Slot(0, layout.PPI300, layout.PaperUS)
	require.NoError(t, err)
	radius := layout.CornerRadiusPx(layout.PPI300)
	ax := slot.X + radius - int(float64(radius)*0.7071)
	ay := slot.Y + radius - int(float64(radius)*0.7071)
	assert.Equal(t, color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 255}, img.RGBAAt(ax, ay))

	// The footer label leaves non-background pixels in the bottom margin.
	my := layout.MarginY(layout.PPI300, layout.PaperUS)
	mx := layout.MarginX(layout.PPI300, layout.PaperUS)
	pageH := layout.PageHeight(layout.PPI300, layout.PaperUS)
	// Scan only the lower half of the margin, below the gutter lines.
	labeled := false
	for y := pageH - my/2; y < pageH && !labeled; y++ {
		for x := mx; x < mx+my && !labeled; x++ {
			px := img.RGBAAt(x, y)
			if px != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) && px != (color.RGBA{R: 64, G: 64, B: 64, A: 255}) {
				labeled = true
			}
		}
	}
	assert.True(t, labeled, "footer label not drawn")
}
