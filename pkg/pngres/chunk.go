// chunk.go - PNG chunk layout and pHYs chunk construction.
package pngres

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	bst "github.com/mixcode/binarystruct"
)

// pngSignature is the fixed 8-byte prefix of every PNG file.
var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// The chunk types this package recognizes. Everything else is opaque.
const (
	typePhys = "pHYs"
	typeIDAT = "IDAT"
	typeIEND = "IEND"
)

const (
	// chunkOverhead is length(4) + type(4) + crc(4) around the payload.
	chunkOverhead = 12

	// physChunkSize is the full on-disk size of a pHYs chunk.
	physChunkSize = chunkOverhead + 9

	// unitMeter is the pHYs unit specifier for pixels per meter.
	unitMeter = 1
)

// chunkHeader is the fixed 8-byte prefix of a chunk, stored big-endian.
type chunkHeader struct {
	Length uint32 `binary:"uint32"`
	Type   string `binary:"[4]byte"`
}

// physPayload is the 9-byte body of a pHYs chunk: pixel density on each
// axis in pixels per meter, plus the unit specifier.
type physPayload struct {
	X    uint32 `binary:"uint32"`
	Y    uint32 `binary:"uint32"`
	Unit byte
}

// physChunk returns the complete raw pHYs chunk for the given density:
// length, type, payload, and a CRC computed over type plus payload.
// Density applies to both axes; pixels are assumed square.
func physChunk(ppm uint32) ([]byte, error) {
	payload, err := bst.Marshal(&physPayload{X: ppm, Y: ppm, Unit: unitMeter}, bst.BigEndian)
	if err != nil {
		return nil, fmt.Errorf("marshal pHYs payload: %w", err)
	}

	var u32 [4]byte
	raw := make([]byte, 0, physChunkSize)
	binary.BigEndian.PutUint32(u32[:], uint32(len(payload)))
	raw = append(raw, u32[:]...)
	raw = append(raw, typePhys...)
	raw = append(raw, payload...)

	crc := crc32.NewIEEE()
	crc.Write([]byte(typePhys))
	crc.Write(payload)
	binary.BigEndian.PutUint32(u32[:], crc.Sum32())
	raw = append(raw, u32[:]...)

	return raw, nil
}
