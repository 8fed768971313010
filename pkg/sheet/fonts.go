// fonts.go - Font loading for the footer label, with embedded fallback.
// Uses golang.org/x/image/font for OpenType rendering and defaults to the
// Go Regular font when no custom font is specified or loading fails.
package sheet

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontManager handles font loading with fallback.
type FontManager struct {
	parsed *opentype.Font
}

// NewFontManager creates a font manager with the specified font.
// If customPath is empty or invalid, uses the embedded Go font.
func NewFontManager(customPath string) (*FontManager, error) {
	var fontData []byte
	var err error

	if customPath != "" {
		fontData, err = os.ReadFile(customPath)
		if err != nil {
			fmt.Printf("Warning: could not load custom font '%s', using default\n", customPath)
			fontData = nil
		}
	}

	if fontData == nil {
		fontData = goregular.TTF
	}

	parsed, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	return &FontManager{parsed: parsed}, nil
}

// GetFace returns a font.Face at the specified point size for a print DPI.
func (fm *FontManager) GetFace(size float64, dpi float64) (font.Face, error) {
	if dpi <= 0 {
		dpi = 72
	}

	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	return face, nil
}
