// Package pngres rewrites the physical resolution (pHYs) chunk of PNG files.
//
// A PNG is an 8-byte signature followed by length-prefixed, CRC-checksummed
// chunks. UpdateResolution reads such a file, removes any pHYs chunks it
// finds, injects a single freshly computed one before the first image-data
// (IDAT) chunk, and writes the result back out. Every other chunk is copied
// verbatim, including its original CRC; pixel data is never decoded.
//
// Two persistence strategies are provided. The package-level functions
// stream chunk by chunk into a temporary file next to the destination and
// atomically rename it into place, so the destination is either fully
// rewritten or untouched. The Buffered type instead assembles the whole
// output in memory under a fixed size cap and truncate-writes the
// destination in one pass; it is simpler but can leave a partially written
// file behind if that final write fails.
package pngres

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	bst "github.com/mixcode/binarystruct"
)

// UpdateResolution rewrites the PNG at inPath with a pHYs chunk for dpi and
// stores the result at outPath. inPath and outPath may be the same file.
//
// The rewritten stream is built in a temporary file beside outPath and only
// replaces it once complete and synced, so a failure partway through leaves
// outPath untouched. The one exception is a *ReplaceError: the rewrite
// succeeded but the final rename did not, and the finished copy is left at
// the temporary path named by the error. On every other failure the
// temporary file is removed.
func UpdateResolution(inPath, outPath string, dpi int) error {
	ppm := DensityPPM(dpi)

	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inPath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".*")
	if err != nil {
		in.Close()
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	bw := bufio.NewWriter(tmp)
	err = rewriteStream(bufio.NewReader(in), bw, ppm)
	in.Close()
	if err == nil {
		err = bw.Flush()
	}
	if err == nil {
		// The destination is only ever replaced by a copy that is
		// complete on disk.
		if serr := tmp.Sync(); serr != nil {
			err = fmt.Errorf("sync temp file: %w", serr)
		}
	}
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close temp file: %w", cerr)
	}
	if err != nil {
		os.Remove(tmpName)
		return err
	}

	// CreateTemp files are 0600; carry the destination's mode over so an
	// in-place rewrite does not tighten its permissions.
	mode := os.FileMode(0644)
	if fi, serr := os.Stat(outPath); serr == nil {
		mode = fi.Mode().Perm()
	}
	if cerr := os.Chmod(tmpName, mode); cerr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", cerr)
	}

	return replaceFile(tmpName, outPath)
}

// UpdateResolutionInPlace is the degenerate case of UpdateResolution where
// input and output are the same path.
func UpdateResolutionInPlace(path string, dpi int) error {
	return UpdateResolution(path, path, dpi)
}

// rewriteStream copies the PNG stream from r to w, dropping every pHYs
// chunk and emitting exactly one for ppm before the first IDAT chunk.
// Processing stops once the IEND chunk has been copied; trailing bytes
// after it are not carried over. A stream that ends without IEND, or with
// a trailing fragment too short to be a chunk header, is accepted as-is.
func rewriteStream(r io.Reader, w io.Writer, ppm uint32) error {
	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return FormatError("missing PNG signature")
	}
	if !bytes.Equal(sig, pngSignature) {
		return FormatError("signature mismatch")
	}
	if _, err := w.Write(sig); err != nil {
		return fmt.Errorf("write signature: %w", err)
	}

	phys, err := physChunk(ppm)
	if err != nil {
		return err
	}

	wrotePhys := false
	for {
		var h chunkHeader
		_, err := bst.Read(r, bst.BigEndian, &h)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				// Stream exhausted without an IEND chunk.
				return nil
			}
			return fmt.Errorf("read chunk header: %w", err)
		}

		// Payload plus the 4 trailing CRC bytes.
		body := int64(h.Length) + 4

		if h.Type == typePhys {
			if _, err := io.CopyN(io.Discard, r, body); err != nil {
				if errors.Is(err, io.EOF) {
					return FormatError("chunk length past end of input")
				}
				return fmt.Errorf("skip pHYs chunk: %w", err)
			}
			continue
		}

		if !wrotePhys && h.Type == typeIDAT {
			if _, err := w.Write(phys); err != nil {
				return fmt.Errorf("write pHYs chunk: %w", err)
			}
			wrotePhys = true
		}

		if _, err := bst.Write(w, bst.BigEndian, &h); err != nil {
			return fmt.Errorf("write chunk header: %w", err)
		}
		if _, err := io.CopyN(w, r, body); err != nil {
			if errors.Is(err, io.EOF) {
				return FormatError("chunk length past end of input")
			}
			return fmt.Errorf("copy %s chunk: %w", h.Type, err)
		}

		if h.Type == typeIEND {
			return nil
		}
	}
}

// replaceFile moves tmpName over dest. When a direct rename is refused it
// falls back to delete-then-rename, which briefly leaves dest missing.
// On failure the finished file stays at tmpName.
func replaceFile(tmpName, dest string) error {
	err := os.Rename(tmpName, dest)
	if err == nil {
		return nil
	}

	if rerr := os.Remove(dest); rerr != nil && !os.IsNotExist(rerr) {
		return &ReplaceError{Dest: dest, Temp: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return &ReplaceError{Dest: dest, Temp: tmpName, Err: err}
	}
	return nil
}
