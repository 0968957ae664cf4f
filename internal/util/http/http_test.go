package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmylchreest/swatch/internal/security"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if !strings.HasPrefix(r.Header.Get("User-Agent"), UserAgentName+"/") {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Write([]byte("payload"))
		case "/big":
			w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Run("success", func(t *testing.T) {
		data, err := Fetch(context.Background(), srv.URL+"/ok", FetchOptions{})
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if string(data) != "payload" {
			t.Errorf("Fetch() = %q, want %q", data, "payload")
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := Fetch(context.Background(), srv.URL+"/missing", FetchOptions{}); err == nil {
			t.Fatal("Fetch() expected error for 404")
		}
	})

	t.Run("body too large", func(t *testing.T) {
		_, err := Fetch(context.Background(), srv.URL+"/big", FetchOptions{MaxBytes: 16})
		if !errors.Is(err, security.ErrLimitExceeded) {
			t.Fatalf("Fetch() error = %v, want ErrLimitExceeded", err)
		}
	})
}
