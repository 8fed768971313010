// density.go - DPI to PNG pixel-density conversion.
package pngres

import "math"

// ppmFactor converts dots per inch to pixels per meter (1 / 0.0254).
const ppmFactor = 39.37007874

// DensityPPM converts a DPI value to the pixels-per-meter unit stored in a
// pHYs chunk. Non-positive DPI is clamped to 1 before conversion, and the
// converted value is clamped to [1, math.MaxUint32]. Rounding is half away
// from zero.
func DensityPPM(dpi int) uint32 {
	if dpi <= 0 {
		dpi = 1
	}
	v := float64(dpi) * ppmFactor
	if v >= math.MaxUint32 {
		return math.MaxUint32
	}
	if v <= 1 {
		return 1
	}
	return uint32(v + 0.5)
}
