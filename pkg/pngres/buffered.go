// buffered.go - Whole-file in-memory rewrite under a fixed size cap.
package pngres

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// DefaultMaxSize is the largest input the buffered rewriter accepts when
// no explicit cap is configured.
const DefaultMaxSize = 32 << 20 // 32 MiB

// outputHeadroom is the extra output capacity beyond the input cap,
// enough for the one injected pHYs chunk.
const outputHeadroom = 64

// Buffered rewrites PNG resolution chunks through a pair of in-memory
// buffers instead of a temporary file. The input is read whole, the output
// is assembled whole, and the destination is truncate-written in one pass.
//
// This variant is simpler than the streaming one but carries two
// documented limitations: inputs larger than the cap are rejected with a
// CapacityError, and an I/O failure during the final write leaves the
// destination partially written. Callers that rewrite files in place and
// cannot afford a corrupted page on failure should use UpdateResolution
// instead.
type Buffered struct {
	// MaxSize caps the input size in bytes. Zero selects DefaultMaxSize.
	MaxSize int64
}

// UpdateResolution behaves like the package-level UpdateResolution but
// uses the in-memory strategy. For the same input and DPI both strategies
// produce byte-identical output.
func (b *Buffered) UpdateResolution(inPath, outPath string, dpi int) error {
	maxSize := b.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	src, err := readCapped(inPath, maxSize)
	if err != nil {
		return err
	}

	dst, err := rewriteBytes(src, DensityPPM(dpi), int(maxSize)+outputHeadroom)
	if err != nil {
		return err
	}

	// A failure here can leave outPath truncated or partially written.
	if err := os.WriteFile(outPath, dst, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

// readCapped reads the whole file into a buffer sized to the actual input,
// rejecting files above the cap before any allocation.
func readCapped(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Size() > maxSize {
		return nil, CapacityError(fmt.Sprintf("%s is %d bytes, cap is %d", path, fi.Size(), maxSize))
	}

	buf := make([]byte, fi.Size())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf, nil
}

// rewriteBytes assembles the rewritten stream from src, applying the same
// per-chunk rule as rewriteStream: drop every pHYs chunk, emit one for ppm
// before the first IDAT, copy everything else verbatim, and stop after
// IEND. Trailing bytes shorter than a chunk header are ignored. maxOut
// bounds the assembled output size.
func rewriteBytes(src []byte, ppm uint32, maxOut int) ([]byte, error) {
	if len(src) < len(pngSignature) || !bytes.Equal(src[:len(pngSignature)], pngSignature) {
		return nil, FormatError("signature mismatch")
	}

	phys, err := physChunk(ppm)
	if err != nil {
		return nil, err
	}

	dst := make([]byte, 0, min(len(src)+len(phys), maxOut))
	dst = append(dst, src[:len(pngSignature)]...)

	p := src[len(pngSignature):]
	wrotePhys := false
	for len(p) >= chunkOverhead {
		length := int(binary.BigEndian.Uint32(p[:4]))
		typ := string(p[4:8])

		// Bounds check before any payload access.
		if length > len(p)-chunkOverhead {
			return nil, FormatError("chunk length past end of input")
		}
		total := chunkOverhead + length

		if typ == typePhys {
			p = p[total:]
			continue
		}

		if !wrotePhys && typ == typeIDAT {
			if len(dst)+len(phys) > maxOut {
				return nil, CapacityError("output assembly overflow")
			}
			dst = append(dst, phys...)
			wrotePhys = true
		}

		if len(dst)+total > maxOut {
			return nil, CapacityError("output assembly overflow")
		}
		dst = append(dst, p[:total]...)
		p = p[total:]

		if typ == typeIEND {
			break
		}
	}

	return dst, nil
}
