package server

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/symnet/etsm/internal/sources"
)

// newTestManager builds a manager in a temp home with an etmain dir
// already in place, so the server counts as installed.
func newTestManager(t *testing.T) *Manager {
	t.Helper()

	home := t.TempDir()
	logger := log.New(io.Discard)
	src := sources.NewManager(home, sources.DefaultURL, logger)

	m, err := New(home, "testsrv", src, logger)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	m.systemdDir = t.TempDir()

	if err := os.MkdirAll(m.EtmainDir(), 0755); err != nil {
		t.Fatalf("failed to create etmain: %v", err)
	}
	return m
}

// stageMap drops a fake map archive into the shared map store.
func stageMap(t *testing.T, m *Manager, name string) {
	t.Helper()

	dir := m.sources.MapsDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create maps dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, withPk3Ext(name)), []byte("pk3"), 0644); err != nil {
		t.Fatalf("failed to stage map %s: %v", name, err)
	}
}

// stageTemplate drops a config template into the shared template store.
func stageTemplate(t *testing.T, m *Manager, name, content string) {
	t.Helper()

	dir := m.sources.TemplatesDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create templates dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, withCfgExt(name)), []byte(content), 0644); err != nil {
		t.Fatalf("failed to stage template %s: %v", name, err)
	}
}
