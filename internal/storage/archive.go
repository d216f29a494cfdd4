package storage

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/encsim/internal/experiment"
	"github.com/san-kum/encsim/internal/sim"
)

// Run is everything needed to replay or re-export a stored run.
type Run struct {
	Metadata  RunMetadata          `msgpack:"metadata"`
	Encounter experiment.Encounter `msgpack:"encounter"`
	Result    *sim.Result          `msgpack:"result"`
}

// WriteArchive encodes run as msgpack compressed with zstd.
func WriteArchive(w io.Writer, run *Run) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(run); err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

func ReadArchive(r io.Reader) (*Run, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var run Run
	if err := msgpack.NewDecoder(zr).Decode(&run); err != nil {
		return nil, fmt.Errorf("failed to decode run: %w", err)
	}
	return &run, nil
}
