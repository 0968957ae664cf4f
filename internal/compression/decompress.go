// Package compression reads optionally compressed artifacts such as model
// files, bounding the decompressed size.
package compression

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/swatch/internal/security"
)

// DefaultMaxBytes bounds the decompressed size of an artifact.
const DefaultMaxBytes int64 = 512 << 20

// Format identifies the compression of an artifact.
type Format string

const (
	FormatNone  Format = ""
	FormatXz    Format = "xz"
	FormatGzip  Format = "gzip"
	FormatBzip2 Format = "bzip2"
)

// DetectFormat picks the compression format from the file extension.
func DetectFormat(path string) Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xz"):
		return FormatXz
	case strings.HasSuffix(lower, ".gz"):
		return FormatGzip
	case strings.HasSuffix(lower, ".bz2"):
		return FormatBzip2
	default:
		return FormatNone
	}
}

// NewReader wraps r in a decompressor for format.
func NewReader(r io.Reader, format Format) (io.Reader, error) {
	switch format {
	case FormatNone:
		return r, nil
	case FormatXz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzr, nil
	case FormatGzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzr, nil
	case FormatBzip2:
		return bzip2.NewReader(r), nil
	default:
		return nil, fmt.Errorf("unsupported compression format: %s", format)
	}
}

// ReadFile reads path, transparently decompressing it according to its
// extension. At most maxBytes of decompressed data are accepted; a
// non-positive value uses DefaultMaxBytes.
func ReadFile(path string, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	f, err := os.Open(path) // #nosec G304 - operator-configured artifact path
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r, err := NewReader(f, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	data, err := io.ReadAll(security.NewLimitedReader(r, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
