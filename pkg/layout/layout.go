// Package layout computes pixel geometry for 3x3 card sheets.
//
// All values derive from physical dimensions: poker-size cards of
// 63mm x 88mm (~2.48in x 3.46in) on US Letter or A4 paper, scaled by the
// print resolution. Cards are laid out in a 3x3 grid separated by thin
// gutters, with the remaining space split evenly into margins.
package layout

import (
	"fmt"
	"math"
	"strconv"
)

// PPI is the print resolution in pixels per inch. Only the three standard
// print resolutions are supported.
type PPI int

const (
	PPI300  PPI = 300
	PPI600  PPI = 600
	PPI1200 PPI = 1200
)

// ValidPPI checks an integer resolution, accepting only 300, 600 or 1200.
func ValidPPI(n int) (PPI, error) {
	switch PPI(n) {
	case PPI300, PPI600, PPI1200:
		return PPI(n), nil
	default:
		return 0, fmt.Errorf("invalid PPI %d: use 300, 600 or 1200", n)
	}
}

// ParsePPI parses a resolution string, accepting only 300, 600 or 1200.
func ParsePPI(s string) (PPI, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid PPI %q: %w", s, err)
	}
	return ValidPPI(n)
}

// Paper is the physical page size.
type Paper int

const (
	PaperUS Paper = iota // 8.5in x 11in
	PaperA4              // 8.27in x 11.69in
)

// ParsePaper parses a paper size name, accepting "US" or "A4".
func ParsePaper(s string) (Paper, error) {
	switch s {
	case "US":
		return PaperUS, nil
	case "A4":
		return PaperA4, nil
	default:
		return 0, fmt.Errorf("invalid paper size %q: use US or A4", s)
	}
}

func (p Paper) String() string {
	if p == PaperA4 {
		return "A4"
	}
	return "US"
}

const (
	// CardsPerPage is the fixed grid: 3 columns x 3 rows.
	CardsPerPage = 9
	gridCols     = 3
	gridRows     = 3

	// Physical card dimensions, 63mm x 88mm in inches.
	cardWidthInch  = 2.48031
	cardHeightInch = 3.46457

	// CornerRadiusInch is the 3mm rounded-corner radius of a playing card.
	CornerRadiusInch = 0.11811

	// CardBorderInch is the bleed border drawn around card edges.
	CardBorderInch = 0.11811

	// GutterPx is the thickness of the cut gutters between cards.
	GutterPx = 3

	// ArcThicknessPx is the stroke width of rounded-corner guide arcs.
	ArcThicknessPx = 3
)

// Rect is a pixel-space rectangle.
type Rect struct {
	X, Y, W, H int
}

// CardSize returns the pixel dimensions of one card at the given
// resolution. Input images are scaled to this size, never the reverse.
func CardSize(ppi PPI) (w, h int) {
	return int(float64(ppi) * cardWidthInch), int(float64(ppi) * cardHeightInch)
}

// PageWidth returns the page width in pixels.
func PageWidth(ppi PPI, paper Paper) int {
	if paper == PaperA4 {
		return int(float64(ppi) * 8.27)
	}
	return int(ppi)*8 + int(ppi)/2
}

// PageHeight returns the page height in pixels.
func PageHeight(ppi PPI, paper Paper) int {
	if paper == PaperA4 {
		return int(float64(ppi) * 11.69)
	}
	return int(ppi) * 11
}

// MarginX returns the horizontal margin, split evenly between the left
// and right of the 3-card content row.
func MarginX(ppi PPI, paper Paper) int {
	cardW, _ := CardSize(ppi)
	return (PageWidth(ppi, paper) - gridCols*cardW) / 2
}

// MarginY returns the vertical margin, split evenly between the top and
// bottom of the 3-card content column.
func MarginY(ppi PPI, paper Paper) int {
	_, cardH := CardSize(ppi)
	return (PageHeight(ppi, paper) - gridRows*cardH) / 2
}

// Slot returns the placement of the card at grid position pos (0-8, row
// major: 0 is top-left, 8 is bottom-right). Each slot is offset by the
// page margin plus the gutters to its left and above.
func Slot(pos int, ppi PPI, paper Paper) (Rect, error) {
	if pos < 0 || pos >= CardsPerPage {
		return Rect{}, fmt.Errorf("slot %d out of range [0, %d)", pos, CardsPerPage)
	}

	cardW, cardH := CardSize(ppi)
	col := pos % gridCols
	row := pos / gridCols

	return Rect{
		X: col*cardW + (col+1)*GutterPx + MarginX(ppi, paper),
		Y: row*cardH + (row+1)*GutterPx + MarginY(ppi, paper),
		W: cardW,
		H: cardH,
	}, nil
}

// CornerRadiusPx returns the rounded-corner radius in pixels.
func CornerRadiusPx(ppi PPI) int {
	return int(math.Round(CornerRadiusInch * float64(ppi)))
}

// BorderPx returns the half-width bleed border in pixels.
func BorderPx(ppi PPI) int {
	return int(float64(ppi) * CardBorderInch / 2)
}

// ArcSegments returns how many line segments approximate one quarter-circle
// corner arc: a quarter of the circumference at the corner radius, so
// segments sit roughly one pixel apart.
func ArcSegments(ppi PPI) int {
	return int(math.Ceil(2 * math.Pi * float64(CornerRadiusPx(ppi)) / 4))
}
