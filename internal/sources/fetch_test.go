package sources

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchWritesAtomically(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("artifact body"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "nested", "artifact.tgz")
	f := NewFetcher()

	var reported int64
	err := f.Fetch(srv.URL+"/artifact.tgz", dest, func(downloaded, total int64) {
		reported = downloaded
	})
	if err != nil {
		t.Fatalf("Fetch() returned error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	if string(data) != "artifact body" {
		t.Fatalf("unexpected content: %q", string(data))
	}
	if reported != int64(len("artifact body")) {
		t.Fatalf("final progress report missing, got %d", reported)
	}

	// No temp file may remain after a successful fetch.
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file left behind")
	}
}

func TestFetchDistinguishes404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher()
	err := f.Fetch(srv.URL+"/missing", filepath.Join(t.TempDir(), "missing"), nil)
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestFetchDoesNotRetry(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher()
	err := f.Fetch(srv.URL+"/flaky", filepath.Join(t.TempDir(), "flaky"), nil)
	if err == nil {
		t.Fatal("expected error on 500")
	}
	if attempts != 1 {
		t.Fatalf("expected exactly one attempt, got %d", attempts)
	}
}
