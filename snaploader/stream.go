package snaploader

import (
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// decompressXZ reads a snapshot stored as a single xz stream
func decompressXZ(r io.Reader, path string) ([]byte, string, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open xz: %w", err)
	}
	data, err := limitedRead(xr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress xz: %w", err)
	}
	return data, streamName(path), nil
}

// decompressLZ4 reads a snapshot stored as a single lz4 frame stream
func decompressLZ4(r io.Reader, path string) ([]byte, string, error) {
	data, err := limitedRead(lz4.NewReader(r))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress lz4: %w", err)
	}
	return data, streamName(path), nil
}
