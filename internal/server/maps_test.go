package server

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAddMapLinksFromSharedStore(t *testing.T) {
	m := newTestManager(t)
	stageMap(t, m, "oasis")

	if err := m.AddMap("oasis"); err != nil {
		t.Fatalf("AddMap() returned error: %v", err)
	}

	link := filepath.Join(m.EtmainDir(), "oasis.pk3")
	info, err := os.Lstat(link)
	if err != nil {
		t.Fatalf("expected symlink in etmain: %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatal("map entry in etmain is not a symlink")
	}

	// Adding again is a warning no-op.
	if err := m.AddMap("oasis"); err != nil {
		t.Fatalf("second AddMap() should be a no-op, got %v", err)
	}
}

func TestAddMapMissingFromStore(t *testing.T) {
	m := newTestManager(t)

	err := m.AddMap("ghostmap")
	if !errors.Is(err, ErrMapNotFound) {
		t.Fatalf("expected ErrMapNotFound, got %v", err)
	}
}

func TestRemoveMap(t *testing.T) {
	m := newTestManager(t)
	stageMap(t, m, "braundorf_b4")

	if err := m.AddMap("braundorf_b4"); err != nil {
		t.Fatalf("AddMap() returned error: %v", err)
	}
	if err := m.RemoveMap("braundorf_b4"); err != nil {
		t.Fatalf("RemoveMap() returned error: %v", err)
	}
	if _, err := os.Lstat(filepath.Join(m.EtmainDir(), "braundorf_b4.pk3")); !os.IsNotExist(err) {
		t.Fatal("map symlink still present after remove")
	}

	// Removing a map that is not enabled is a no-op.
	if err := m.RemoveMap("braundorf_b4"); err != nil {
		t.Fatalf("second RemoveMap() should be a no-op, got %v", err)
	}
}

func TestListEnabledMapsExcludesBasePaks(t *testing.T) {
	m := newTestManager(t)

	for _, pak := range []string{"pak0.pk3", "pak1.pk3", "pak2.pk3"} {
		if err := os.WriteFile(filepath.Join(m.EtmainDir(), pak), []byte("pak"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", pak, err)
		}
	}
	stageMap(t, m, "adlernest")
	if err := m.AddMap("adlernest"); err != nil {
		t.Fatalf("AddMap() returned error: %v", err)
	}

	maps, err := m.ListEnabledMaps()
	if err != nil {
		t.Fatalf("ListEnabledMaps() returned error: %v", err)
	}
	if len(maps) != 1 || maps[0] != "adlernest" {
		t.Fatalf("unexpected enabled maps: %v", maps)
	}
}
