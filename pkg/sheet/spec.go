// Package sheet renders card images onto 3x3 print sheets.
//
// A sheet run is described by a JSON spec: paper size, print resolution,
// colors, and the list of card images. Pages are composed in layers
// (background, margin border, registration lines, cards, gutters, corner
// guides) and written as PNG, ready to be stamped with a physical
// resolution chunk.
package sheet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hevi0/cardprint/pkg/layout"
)

// Spec is the top-level structure of a sheet spec JSON file.
type Spec struct {
	Paper          string   `json:"paper"`          // "US" or "A4"
	PPI            int      `json:"ppi"`            // 300, 600 or 1200
	CardBackground string   `json:"cardBackground"` // hex "#rrggbb"
	LineColor      string   `json:"lineColor"`      // hex "#rrggbb"
	RoundedCorners bool     `json:"roundedCorners"`
	FooterLabel    bool     `json:"footerLabel"`
	Font           string   `json:"font,omitempty"` // custom TTF for the footer label
	Cards          []string `json:"cards"`          // card image paths, 9 per page
}

// Load reads and parses a spec file, applies defaults, and resolves card
// paths relative to the spec's directory. Returns warnings for issues that
// do not prevent rendering.
func Load(path string) (*Spec, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read spec: %w", err)
	}

	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, nil, fmt.Errorf("parse spec JSON: %w", err)
	}

	spec.applyDefaults()
	resolveCardPaths(&spec, filepath.Dir(path))

	return &spec, spec.validate(), nil
}

// applyDefaults sets sane fallbacks for omitted fields.
func (s *Spec) applyDefaults() {
	if s.Paper == "" {
		s.Paper = "US"
	}
	if s.PPI == 0 {
		s.PPI = 300
	}
	if s.CardBackground == "" {
		s.CardBackground = "#ffffff"
	}
	if s.LineColor == "" {
		s.LineColor = "#808080"
	}
}

// validate returns warnings for card entries that will not render.
// Missing card files degrade to blank slots at render time, so they are
// never fatal here.
func (s *Spec) validate() []string {
	var warnings []string
	if len(s.Cards) == 0 {
		warnings = append(warnings, "spec lists no cards, pages will be empty")
	}
	for _, card := range s.Cards {
		if _, err := os.Stat(card); err != nil {
			warnings = append(warnings, fmt.Sprintf("card image %q not found, slot will be blank", card))
		}
	}
	return warnings
}

// resolveCardPaths makes relative card and font paths absolute using baseDir.
func resolveCardPaths(spec *Spec, baseDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	spec.Font = resolve(spec.Font)
	for i := range spec.Cards {
		spec.Cards[i] = resolve(spec.Cards[i])
	}
}

// PageCount returns how many pages the card list fills.
func (s *Spec) PageCount() int {
	n := len(s.Cards) / layout.CardsPerPage
	if len(s.Cards)%layout.CardsPerPage != 0 {
		n++
	}
	return n
}

// PageCards returns the card paths for page (0-based), at most nine.
func (s *Spec) PageCards(page int) []string {
	start := page * layout.CardsPerPage
	if start >= len(s.Cards) {
		return nil
	}
	end := min(start+layout.CardsPerPage, len(s.Cards))
	return s.Cards[start:end]
}

// ExampleJSON returns a sample spec for cardprint init.
func ExampleJSON() string {
	return `{
  "paper": "US",
  "ppi": 300,
  "cardBackground": "#ffffff",
  "lineColor": "#808080",
  "roundedCorners": true,
  "footerLabel": true,
  "cards": [
    "cards/ace-of-spades.png",
    "cards/two-of-spades.png",
    "cards/three-of-spades.png",
    "cards/four-of-spades.png",
    "cards/five-of-spades.png",
    "cards/six-of-spades.png",
    "cards/seven-of-spades.png",
    "cards/eight-of-spades.png",
    "cards/nine-of-spades.png"
  ]
}
`
}
