// Package snaploader loads .z80 snapshot files from disk, including
// snapshots stored in archives (ZIP, 7z, gzip, tar.gz, RAR) or single
// compressed streams (xz, lz4).
package snaploader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
	magicXZ     = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	magicLZ4    = []byte{0x04, 0x22, 0x4D, 0x18}
)

// Maximum snapshot size (8MB safety limit)
const maxSnapshotSize = 8 * 1024 * 1024

// DefaultCacheSize is the number of extracted snapshots kept by a Loader.
const DefaultCacheSize = 16

// ErrNoSnapshotFile is returned when no .z80 file is found in an archive
var ErrNoSnapshotFile = errors.New("no .z80 file found in archive")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds size limit
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// formatType represents the detected file format
type formatType int

const (
	formatUnknown formatType = iota
	formatRawZ80
	formatZIP
	format7z
	formatGzip
	formatRAR
	formatXZ
	formatLZ4
)

type cacheKey struct {
	path    string
	size    int64
	modTime int64
}

type cacheEntry struct {
	data []byte
	name string
}

// Loader reads snapshots through an afero file system and caches the
// extracted bytes by path, size and modification time.
type Loader struct {
	fs    afero.Fs
	cache *lru.Cache[cacheKey, cacheEntry]
}

// NewLoader creates a Loader on fs keeping up to cacheSize entries.
func NewLoader(fs afero.Fs, cacheSize int) (*Loader, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, cacheEntry](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Loader{fs: fs, cache: cache}, nil
}

// LoadSnapshot loads a snapshot from the host file system without caching.
func LoadSnapshot(path string) ([]byte, string, error) {
	l, err := NewLoader(afero.NewOsFs(), 1)
	if err != nil {
		return nil, "", err
	}
	return l.load(path)
}

// Load returns the snapshot bytes at path and the snapshot's file name.
// Archives are searched for the first .z80 entry.
func (l *Loader) Load(path string) ([]byte, string, error) {
	info, err := l.fs.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat file: %w", err)
	}
	key := cacheKey{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}
	if e, ok := l.cache.Get(key); ok {
		return e.data, e.name, nil
	}

	data, name, err := l.load(path)
	if err != nil {
		return nil, "", err
	}
	l.cache.Add(key, cacheEntry{data: data, name: name})
	return data, name, nil
}

func (l *Loader) load(path string) ([]byte, string, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	// Read header for magic byte detection
	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	format := detectFormat(header, path)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("failed to seek file: %w", err)
	}

	switch format {
	case formatRawZ80:
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read snapshot: %w", err)
		}
		return data, filepath.Base(path), nil

	case formatZIP:
		return extractFromZIP(f)

	case format7z:
		return extractFrom7z(f)

	case formatGzip:
		return extractFromGzip(f, path)

	case formatRAR:
		return extractFromRAR(f)

	case formatXZ:
		return decompressXZ(f, path)

	case formatLZ4:
		return decompressLZ4(f, path)

	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// detectFormat determines the file format based on magic bytes and extension
func detectFormat(header []byte, path string) formatType {
	lower := strings.ToLower(path)
	ext := filepath.Ext(lower)

	// Check magic bytes first (more reliable)
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicXZ):
		return formatXZ
	case bytes.HasPrefix(header, magicLZ4):
		return formatLZ4
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	// Fall back to extension
	switch ext {
	case ".z80":
		return formatRawZ80
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	case ".xz":
		return formatXZ
	case ".lz4":
		return formatLZ4
	}

	return formatUnknown
}

// isSnapshotFile checks if a filename has a .z80 extension (case-insensitive)
func isSnapshotFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".z80")
}

// streamName strips a compression suffix from path for display.
func streamName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	switch strings.ToLower(ext) {
	case ".gz", ".xz", ".lz4":
		return strings.TrimSuffix(base, ext)
	}
	return base
}

// limitedRead reads from r up to maxSnapshotSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxSnapshotSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxSnapshotSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
