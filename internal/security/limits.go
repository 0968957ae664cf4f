// Package security provides guards against oversized or hostile inputs.
package security

import (
	"errors"
	"io"
)

// ErrLimitExceeded is returned once a LimitedReader has delivered its quota
// and the underlying reader still has data.
var ErrLimitExceeded = errors.New("size limit exceeded")

// LimitedReader wraps an io.Reader and limits the total bytes that can be read.
// This prevents decompression bombs and oversized uploads from exhausting memory.
// Unlike io.LimitReader, running past the limit is an error rather than EOF.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if l.Remaining <= 0 {
		// Quota spent: only a clean EOF from the source is acceptable.
		var probe [1]byte
		n, err := l.R.Read(probe[:])
		if n > 0 {
			return 0, ErrLimitExceeded
		}
		if err == nil {
			return 0, ErrLimitExceeded
		}
		return 0, err
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes,
	}
}
