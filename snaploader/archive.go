package snaploader

import (
	"archive/tar"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// extractFromZIP extracts the first .z80 file from a ZIP archive
func extractFromZIP(f afero.File) ([]byte, string, error) {
	size, err := fileSize(f)
	if err != nil {
		return nil, "", err
	}
	r, err := zip.NewReader(f, size)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip: %w", err)
	}

	for _, zf := range r.File {
		if zf.FileInfo().IsDir() || !isSnapshotFile(zf.Name) {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", zf.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", zf.Name, err)
		}
		return data, filepath.Base(zf.Name), nil
	}

	return nil, "", ErrNoSnapshotFile
}

// extractFrom7z extracts the first .z80 file from a 7z archive
func extractFrom7z(f afero.File) ([]byte, string, error) {
	size, err := fileSize(f)
	if err != nil {
		return nil, "", err
	}
	r, err := sevenzip.NewReader(f, size)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open 7z: %w", err)
	}

	for _, sf := range r.File {
		if sf.FileInfo().IsDir() || !isSnapshotFile(sf.Name) {
			continue
		}
		rc, err := sf.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", sf.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", sf.Name, err)
		}
		return data, filepath.Base(sf.Name), nil
	}

	return nil, "", ErrNoSnapshotFile
}

// extractFromGzip handles both a gzipped snapshot and a gzipped tar
// archive. A .tar.gz or .tgz path is searched as a tar stream.
func extractFromGzip(f afero.File, path string) ([]byte, string, error) {
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open gzip: %w", err)
	}
	defer gz.Close()

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return extractFromTar(gz)
	}

	data, err := limitedRead(gz)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress gzip: %w", err)
	}
	return data, streamName(path), nil
}

// extractFromTar extracts the first .z80 file from a tar stream
func extractFromTar(r io.Reader) ([]byte, string, error) {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read tar entry: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !isSnapshotFile(hdr.Name) {
			continue
		}
		data, err := limitedRead(tr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", hdr.Name, err)
		}
		return data, filepath.Base(hdr.Name), nil
	}

	return nil, "", ErrNoSnapshotFile
}

func fileSize(f afero.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}
	return info.Size(), nil
}
