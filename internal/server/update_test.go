package server

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// stageServerArchive drops a minimal server tgz into the shared store,
// laid out like the published archives with their versioned root dir.
func stageServerArchive(t *testing.T, m *Manager, version string) {
	t.Helper()

	dir := m.sources.ServersDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create servers dir: %v", err)
	}

	f, err := os.Create(filepath.Join(dir, "etl-"+version+".tgz"))
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	root := "etlegacy-v" + version + "-i386/"
	for name, content := range map[string]string{
		root + "etlded":                 "binary " + version,
		root + "etmain/description.txt": "assets",
	} {
		hdr := &tar.Header{Name: name, Mode: 0755, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to write tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write tar body: %v", err)
		}
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

// stageBasePaks drops the shared base-game paks next to the server
// archives so linkBasePaks can find them.
func stageBasePaks(t *testing.T, m *Manager) {
	t.Helper()

	shared := filepath.Join(m.sources.ServersDir(), "etmain")
	if err := os.MkdirAll(shared, 0755); err != nil {
		t.Fatalf("failed to create shared etmain: %v", err)
	}
	for _, pak := range []string{"pak0.pk3", "pak1.pk3", "pak2.pk3"} {
		if err := os.WriteFile(filepath.Join(shared, pak), []byte(pak), 0644); err != nil {
			t.Fatalf("failed to stage %s: %v", pak, err)
		}
	}
}

func TestUpdateInstallsArchiveAndLinksPaks(t *testing.T) {
	m := newTestManager(t)
	stageServerArchive(t, m, "2.82.1")
	stageBasePaks(t, m)

	if err := m.Update("2.82.1", false); err != nil {
		t.Fatalf("Update() returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(m.ServerDir(), "etlded")); err != nil {
		t.Fatalf("server binary missing after update: %v", err)
	}
	if m.State().InstalledVersion != "2.82.1" {
		t.Fatalf("installed version not recorded, got %q", m.State().InstalledVersion)
	}

	for _, pak := range []string{"pak0.pk3", "pak1.pk3", "pak2.pk3"} {
		info, err := os.Lstat(filepath.Join(m.EtmainDir(), pak))
		if err != nil {
			t.Fatalf("%s not linked: %v", pak, err)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			t.Fatalf("%s should be a symlink into shared storage", pak)
		}
	}
}

func TestUpdateSkipsWhenAlreadyCurrent(t *testing.T) {
	m := newTestManager(t)
	stageServerArchive(t, m, "2.82.1")
	stageBasePaks(t, m)

	if err := m.Update("2.82.1", false); err != nil {
		t.Fatalf("Update() returned error: %v", err)
	}

	// Drop the archive: a second run must not need it.
	if err := os.Remove(filepath.Join(m.sources.ServersDir(), "etl-2.82.1.tgz")); err != nil {
		t.Fatalf("failed to remove archive: %v", err)
	}
	if err := m.Update("2.82.1", false); err != nil {
		t.Fatalf("skip-path Update() returned error: %v", err)
	}

	// Force must fail loudly now that the archive is gone.
	err := m.Update("2.82.1", true)
	if !errors.Is(err, ErrArchiveNotFound) {
		t.Fatalf("expected ErrArchiveNotFound on forced reinstall, got %v", err)
	}
}

func TestUpdatePreservesServerLocalFiles(t *testing.T) {
	m := newTestManager(t)
	stageServerArchive(t, m, "2.82.1")
	stageBasePaks(t, m)

	local := filepath.Join(m.EtmainDir(), "server_local.cfg")
	if err := os.WriteFile(local, []byte("// mine"), 0644); err != nil {
		t.Fatalf("failed to write local file: %v", err)
	}

	if err := m.Update("2.82.1", false); err != nil {
		t.Fatalf("Update() returned error: %v", err)
	}

	data, err := os.ReadFile(local)
	if err != nil {
		t.Fatalf("server-local file lost on update: %v", err)
	}
	if string(data) != "// mine" {
		t.Fatalf("server-local file rewritten: %q", string(data))
	}
}

func TestUpdateMissingArchive(t *testing.T) {
	m := newTestManager(t)

	err := m.Update("9.9.9", false)
	if !errors.Is(err, ErrArchiveNotFound) {
		t.Fatalf("expected ErrArchiveNotFound, got %v", err)
	}
}

func TestUpdateMissingSharedPaks(t *testing.T) {
	m := newTestManager(t)
	stageServerArchive(t, m, "2.82.1")

	err := m.Update("2.82.1", false)
	if !errors.Is(err, ErrPaksMissing) {
		t.Fatalf("expected ErrPaksMissing, got %v", err)
	}
}
