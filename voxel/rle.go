package voxel

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeBlocks encodes a chunk block slice into base64(varint pairs).
// The pairs are (block_id, run_len) repeated; flat terrain collapses
// to a handful of bytes.
func EncodeBlocks(blocks []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(blocks) {
		b := blocks[i]
		run := 1
		for j := i + 1; j < len(blocks) && blocks[j] == b; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(b))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeBlocks reverses EncodeBlocks. want is the expected block count
// and bounds the decode; pass 0 to accept any length.
func DecodeBlocks(b64 string, want int) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, 0, want)
	for i := 0; i < len(raw); {
		b, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if b > 0xFFFF {
			return nil, fmt.Errorf("block id too large: %d", b)
		}
		if want > 0 && len(out)+int(run) > want {
			return nil, fmt.Errorf("run overflows %d blocks", want)
		}
		for k := 0; k < int(run); k++ {
			out = append(out, uint16(b))
		}
	}
	if want > 0 && len(out) != want {
		return nil, fmt.Errorf("decoded %d blocks, want %d", len(out), want)
	}
	return out, nil
}
