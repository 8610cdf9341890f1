package server

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func stageModArchive(t *testing.T, m *Manager, modName, version, payload string) {
	t.Helper()

	dir := m.sources.ModsDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create mods dir: %v", err)
	}

	f, err := os.Create(filepath.Join(dir, modName+"-"+version+".tgz"))
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	name := modName + "/qagame.mp.i386.so"
	hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(payload))}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatalf("failed to write tar header: %v", err)
	}
	if _, err := tw.Write([]byte(payload)); err != nil {
		t.Fatalf("failed to write tar body: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close gzip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close file: %v", err)
	}
}

func TestInstallModRecordsVersionMarker(t *testing.T) {
	m := newTestManager(t)
	stageModArchive(t, m, "legacy", "2.82.1", "so-v1")

	if err := m.InstallMod("legacy", "2.82.1", false); err != nil {
		t.Fatalf("InstallMod() returned error: %v", err)
	}

	if got := m.InstalledModVersion("legacy"); got != "2.82.1" {
		t.Fatalf("expected marker 2.82.1, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(m.ServerDir(), "legacy", "qagame.mp.i386.so")); err != nil {
		t.Fatalf("mod payload missing: %v", err)
	}
}

func TestInstallModSkipsSameVersion(t *testing.T) {
	m := newTestManager(t)
	stageModArchive(t, m, "legacy", "2.82.1", "so-v1")

	if err := m.InstallMod("legacy", "2.82.1", false); err != nil {
		t.Fatalf("InstallMod() returned error: %v", err)
	}

	// Re-stage with new payload: without force the skip path must win.
	stageModArchive(t, m, "legacy", "2.82.1", "so-v2")
	if err := m.InstallMod("legacy", "2.82.1", false); err != nil {
		t.Fatalf("second InstallMod() returned error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(m.ServerDir(), "legacy", "qagame.mp.i386.so"))
	if err != nil {
		t.Fatalf("mod payload missing: %v", err)
	}
	if string(data) != "so-v1" {
		t.Fatal("same-version install should have been skipped")
	}

	// With force the new payload lands.
	if err := m.InstallMod("legacy", "2.82.1", true); err != nil {
		t.Fatalf("forced InstallMod() returned error: %v", err)
	}
	data, err = os.ReadFile(filepath.Join(m.ServerDir(), "legacy", "qagame.mp.i386.so"))
	if err != nil {
		t.Fatalf("mod payload missing: %v", err)
	}
	if string(data) != "so-v2" {
		t.Fatal("forced install did not overwrite the payload")
	}
}

func TestInstallModMissingArchive(t *testing.T) {
	m := newTestManager(t)

	err := m.InstallMod("legacy", "9.9.9", false)
	if !errors.Is(err, ErrModNotFound) {
		t.Fatalf("expected ErrModNotFound, got %v", err)
	}
}
