// Package worldfile saves and loads voxel worlds as zstd-compressed gob
// snapshots with a JSON header line, so a shell pipeline can peek at the
// metadata without decoding the body.
package worldfile

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"voxelnav/voxel"
)

const version = 1

type Header struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Width   int   `json:"width"`
	Height  int   `json:"height"`
	Depth   int   `json:"depth"`
}

type FileV1 struct {
	Header Header `json:"header"`

	SpawnX int `json:"spawn_x"`
	SpawnY int `json:"spawn_y"`

	Chunks []ChunkV1 `json:"chunks"`
}

type ChunkV1 struct {
	CX     int      `json:"cx"`
	CY     int      `json:"cy"`
	Blocks []uint16 `json:"blocks"`
}

// Write snapshots the world's full extent.
func Write(path string, w *voxel.World) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	sx, sy := w.Spawn()
	snap := FileV1{
		Header: Header{
			Version: version,
			Seed:    w.Seed(),
			Width:   w.Width(),
			Height:  w.Height(),
			Depth:   w.Depth(),
		},
		SpawnX: sx,
		SpawnY: sy,
	}
	for _, ch := range w.Chunks() {
		snap.Chunks = append(snap.Chunks, ChunkV1{CX: ch.CX, CY: ch.CY, Blocks: ch.Blocks})
	}

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

// Read rebuilds a world from a snapshot. Every chunk in the extent is
// present in the file, so nothing regenerates from noise on load.
func Read(path string) (*voxel.World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Skip the header line, the gob body carries it too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return nil, fmt.Errorf("header line: %w", err)
	}

	var snap FileV1
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != version {
		return nil, fmt.Errorf("world file version %d, want %d", snap.Header.Version, version)
	}

	w, err := voxel.New(voxel.Gen{
		Seed:   snap.Header.Seed,
		Width:  snap.Header.Width,
		Height: snap.Header.Height,
		Depth:  snap.Header.Depth,
		SpawnX: snap.SpawnX,
		SpawnY: snap.SpawnY,
	})
	if err != nil {
		return nil, err
	}
	for _, ch := range snap.Chunks {
		if err := w.InstallChunk(ch.CX, ch.CY, ch.Blocks); err != nil {
			return nil, err
		}
	}
	return w, nil
}
