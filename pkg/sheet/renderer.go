// renderer.go - Page rendering engine compositing card images into a 3x3 grid.
// Follows a layered approach: page background -> margin border -> registration
// lines -> cards -> blank-card borders -> gutters -> corner guides -> label.
package sheet

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/hevi0/cardprint/pkg/layout"
)

// registrationGray is the color of the cut-alignment lines that extend
// past the content area to the page edges.
var registrationGray = color.RGBA{R: 64, G: 64, B: 64, A: 255}

// Renderer composes sheet pages from a spec.
type Renderer struct {
	ppi     layout.PPI
	paper   layout.Paper
	cardBG  color.RGBA
	lines   color.RGBA
	rounded bool
	label   bool
	fonts   *FontManager
}

// NewRenderer validates the spec's enumerated fields and colors and
// returns a renderer for it.
func NewRenderer(spec *Spec) (*Renderer, error) {
	ppi, err := layout.ValidPPI(spec.PPI)
	if err != nil {
		return nil, err
	}
	paper, err := layout.ParsePaper(spec.Paper)
	if err != nil {
		return nil, err
	}

	cardBG, err := ParseHexColor(spec.CardBackground)
	if err != nil {
		return nil, fmt.Errorf("cardBackground: %w", err)
	}
	lines, err := ParseHexColor(spec.LineColor)
	if err != nil {
		return nil, fmt.Errorf("lineColor: %w", err)
	}

	r := &Renderer{
		ppi:     ppi,
		paper:   paper,
		cardBG:  cardBG,
		lines:   lines,
		rounded: spec.RoundedCorners,
		label:   spec.FooterLabel,
	}

	if spec.FooterLabel {
		fm, err := NewFontManager(spec.Font)
		if err != nil {
			return nil, err
		}
		r.fonts = fm
	}

	return r, nil
}

// RenderPage composes one page from up to nine card image paths.
// pageNum is 1-based and only used for the footer label. Card images that
// cannot be loaded degrade to blank slots; each is reported as a warning
// rather than failing the page.
func (r *Renderer) RenderPage(pageNum int, cardPaths []string) (*image.RGBA, []string, error) {
	if len(cardPaths) > layout.CardsPerPage {
		return nil, nil, fmt.Errorf("page %d: %d cards exceeds %d slots", pageNum, len(cardPaths), layout.CardsPerPage)
	}

	img := image.NewRGBA(image.Rect(0, 0, layout.PageWidth(r.ppi, r.paper), layout.PageHeight(r.ppi, r.paper)))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	// Extend the card background color into the margin; gives a little
	// room for error when cutting.
	r.drawMarginBorder(img)
	r.drawRegistrationLines(img)

	var warnings []string
	var drawn [layout.CardsPerPage]bool
	for i, path := range cardPaths {
		if err := r.drawCard(img, i, path); err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d slot %d: %v", pageNum, i, err))
			continue
		}
		drawn[i] = true
	}

	// Blank slots get an inner border in the card background color so
	// their outlines survive cutting too.
	for pos := len(cardPaths); pos < layout.CardsPerPage; pos++ {
		r.drawBlankCardBorder(img, pos)
	}

	r.drawGutterLines(img)

	if r.rounded {
		for pos, ok := range drawn {
			if ok {
				r.drawRoundedCorners(img, pos)
			}
		}
	}

	if r.label {
		if err := r.drawFooterLabel(img, pageNum); err != nil {
			return nil, warnings, err
		}
	}

	return img, warnings, nil
}

// drawCard loads, scales and composites one card image into its slot.
func (r *Renderer) drawCard(img *image.RGBA, pos int, path string) error {
	slot, err := layout.Slot(pos, r.ppi, r.paper)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open card: %w", err)
	}
	defer f.Close()

	card, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode card: %w", err)
	}

	rect := image.Rect(slot.X, slot.Y, slot.X+slot.W, slot.Y+slot.H)

	// Card background first so transparent card regions pick it up.
	fillRect(img, rect, r.cardBG)
	xdraw.ApproxBiLinear.Scale(img, rect, card, card.Bounds(), xdraw.Over, nil)
	return nil
}

// drawMarginBorder draws four rectangles of the card background color
// around the 9-card content area, extending past it by the bleed border.
func (r *Renderer) drawMarginBorder(img *image.RGBA) {
	cardW, cardH := layout.CardSize(r.ppi)
	mx := layout.MarginX(r.ppi, r.paper)
	my := layout.MarginY(r.ppi, r.paper)
	border := layout.BorderPx(r.ppi)
	gutters := 4 * layout.GutterPx

	contentW := 3*cardW + gutters
	contentH := 3*cardH + gutters

	// Top, bottom, left, right.
	fillRect(img, image.Rect(mx-border, my-border, mx+contentW+border, my), r.cardBG)
	fillRect(img, image.Rect(mx-border, my+contentH, mx+contentW+border, my+contentH+border), r.cardBG)
	fillRect(img, image.Rect(mx-border, my, mx, my+contentH), r.cardBG)
	fillRect(img, image.Rect(mx+contentW, my, mx+contentW+border, my+contentH), r.cardBG)
}

// drawRegistrationLines draws full-page alignment lines at every grid
// boundary, in dark gray so they read under the gutter lines.
func (r *Renderer) drawRegistrationLines(img *image.RGBA) {
	cardW, cardH := layout.CardSize(r.ppi)
	mx := layout.MarginX(r.ppi, r.paper)
	my := layout.MarginY(r.ppi, r.paper)
	pageW := layout.PageWidth(r.ppi, r.paper)
	pageH := layout.PageHeight(r.ppi, r.paper)

	for i := 0; i < 4; i++ {
		gutter := i * layout.GutterPx
		x := i*cardW + gutter + mx
		fillRect(img, image.Rect(x, 0, x+layout.GutterPx, pageH), registrationGray)
		y := i*cardH + gutter + my
		fillRect(img, image.Rect(0, y, pageW, y+layout.GutterPx), registrationGray)
	}
}

// drawGutterLines fills the gutters between cards with the line color.
func (r *Renderer) drawGutterLines(img *image.RGBA) {
	cardW, cardH := layout.CardSize(r.ppi)
	mx := layout.MarginX(r.ppi, r.paper)
	my := layout.MarginY(r.ppi, r.paper)
	contentW := 3*cardW + 4*layout.GutterPx
	contentH := 3*cardH + 4*layout.GutterPx

	for i := 0; i < 4; i++ {
		gutter := i * layout.GutterPx
		x := i*cardW + gutter + mx
		fillRect(img, image.Rect(x, my, x+layout.GutterPx, my+contentH), r.lines)
		y := i*cardH + gutter + my
		fillRect(img, image.Rect(mx, y, mx+contentW, y+layout.GutterPx), r.lines)
	}
}

// drawBlankCardBorder outlines an empty slot with the card background
// color to the bleed-border width.
func (r *Renderer) drawBlankCardBorder(img *image.RGBA, pos int) {
	slot, err := layout.Slot(pos, r.ppi, r.paper)
	if err != nil {
		return
	}
	border := layout.BorderPx(r.ppi)

	fillRect(img, image.Rect(slot.X, slot.Y, slot.X+slot.W, slot.Y+border), r.cardBG)
	fillRect(img, image.Rect(slot.X, slot.Y+slot.H-border, slot.X+slot.W, slot.Y+slot.H), r.cardBG)
	fillRect(img, image.Rect(slot.X, slot.Y+border, slot.X+border, slot.Y+slot.H-border), r.cardBG)
	fillRect(img, image.Rect(slot.X+slot.W-border, slot.Y+border, slot.X+slot.W, slot.Y+slot.H-border), r.cardBG)
}

// drawRoundedCorners strokes the four quarter-circle cutting guides of
// the card at pos.
func (r *Renderer) drawRoundedCorners(img *image.RGBA, pos int) {
	slot, err := layout.Slot(pos, r.ppi, r.paper)
	if err != nil {
		return
	}
	radius := layout.CornerRadiusPx(r.ppi)

	r.drawQuarterArc(img, slot.X+radius, slot.Y+radius, 1)               // top-left
	r.drawQuarterArc(img, slot.X+slot.W-radius, slot.Y+radius, 0)        // top-right
	r.drawQuarterArc(img, slot.X+slot.W-radius, slot.Y+slot.H-radius, 3) // bottom-right
	r.drawQuarterArc(img, slot.X+radius, slot.Y+slot.H-radius, 2)        // bottom-left
}

// drawQuarterArc plots one quadrant of a circle around (cx, cy). Stroke
// thickness comes from re-plotting the arc at adjacent radii. Quadrants
// are numbered counter-clockwise from 0 (top-right).
func (r *Renderer) drawQuarterArc(img *image.RGBA, cx, cy, quad int) {
	start := float64(quad) * math.Pi / 2
	end := start + math.Pi/2

	segments := layout.ArcSegments(r.ppi)
	radius := layout.CornerRadiusPx(r.ppi)

	for t := -layout.ArcThicknessPx / 2; t <= layout.ArcThicknessPx/2; t++ {
		for j := 0; j < segments; j++ {
			angle := start + (end-start)*float64(j)/float64(segments-1)
			x := cx + int(float64(radius+t)*math.Cos(angle))
			// Subtract to adjust for the inverted y axis.
			y := cy - int(float64(radius+t)*math.Sin(angle))
			img.Set(x, y, r.lines)
		}
	}
}

// drawFooterLabel writes "page NN - D dpi" into the bottom margin.
func (r *Renderer) drawFooterLabel(img *image.RGBA, pageNum int) error {
	face, err := r.fonts.GetFace(8, float64(r.ppi))
	if err != nil {
		return err
	}

	my := layout.MarginY(r.ppi, r.paper)
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(r.lines),
		Face: face,
		Dot:  fixed.P(layout.MarginX(r.ppi, r.paper), layout.PageHeight(r.ppi, r.paper)-my/4),
	}
	drawer.DrawString(fmt.Sprintf("page %02d - %d dpi", pageNum, r.ppi))
	return nil
}

// fillRect fills rect with a solid color, clipped to the image bounds.
func fillRect(img *image.RGBA, rect image.Rectangle, c color.RGBA) {
	draw.Draw(img, rect.Intersect(img.Bounds()), &image.Uniform{c}, image.Point{}, draw.Src)
}

// SavePNG writes an image to a PNG file.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}
	return nil
}
