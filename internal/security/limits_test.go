package security

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLimitedReader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		limit   int64
		wantErr error
	}{
		{name: "under limit", input: "abc", limit: 10},
		{name: "exactly at limit", input: "abcdef", limit: 6},
		{name: "over limit", input: "abcdefgh", limit: 4, wantErr: ErrLimitExceeded},
		{name: "empty input", input: "", limit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewLimitedReader(strings.NewReader(tt.input), tt.limit))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadAll() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadAll() unexpected error: %v", err)
			}
			if !bytes.Equal(got, []byte(tt.input)) {
				t.Errorf("ReadAll() = %q, want %q", got, tt.input)
			}
		})
	}
}
