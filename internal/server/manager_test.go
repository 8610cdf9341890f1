package server

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/symnet/etsm/internal/sources"
)

func TestNewMaterializesDefaultState(t *testing.T) {
	m := newTestManager(t)

	st := m.State()
	if st.ServerType != "etl" {
		t.Fatalf("expected default server type etl, got %q", st.ServerType)
	}
	if st.ServerIP != "0.0.0.0" {
		t.Fatalf("expected default bind 0.0.0.0, got %q", st.ServerIP)
	}
	if st.ServerPort != 27960 {
		t.Fatalf("expected default port 27960, got %d", st.ServerPort)
	}
	if st.ServerMod != "legacy" {
		t.Fatalf("expected default mod legacy, got %q", st.ServerMod)
	}
	if len(st.StartupConfigs) != 1 || st.StartupConfigs[0] != "etl_server.cfg" {
		t.Fatalf("unexpected default startup configs: %v", st.StartupConfigs)
	}

	// The record must have been persisted where the next run will
	// look for it.
	if _, err := os.Stat(filepath.Join(m.ServerDir(), ".etsm_config")); err != nil {
		t.Fatalf("state record was not persisted: %v", err)
	}
}

func TestNewRejectsBadServerName(t *testing.T) {
	home := t.TempDir()
	logger := log.New(io.Discard)
	src := sources.NewManager(home, sources.DefaultURL, logger)

	_, err := New(home, "bad name!", src, logger)
	if !errors.Is(err, ErrInvalidServerName) {
		t.Fatalf("expected ErrInvalidServerName, got %v", err)
	}
}

func TestNewEmptyNameFallsBackToDefault(t *testing.T) {
	home := t.TempDir()
	logger := log.New(io.Discard)
	src := sources.NewManager(home, sources.DefaultURL, logger)

	m, err := New(home, "", src, logger)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if m.Name != "default" {
		t.Fatalf("expected name default, got %q", m.Name)
	}
}

func TestStatePersistsAcrossManagers(t *testing.T) {
	m := newTestManager(t)

	if err := m.SetPort(27970); err != nil {
		t.Fatalf("SetPort() returned error: %v", err)
	}

	reopened, err := New(m.home, m.Name, m.sources, m.log)
	if err != nil {
		t.Fatalf("reopening manager: %v", err)
	}
	if reopened.State().ServerPort != 27970 {
		t.Fatalf("port change was not persisted, got %d", reopened.State().ServerPort)
	}
}

func TestStartupConfigListOrdering(t *testing.T) {
	m := newTestManager(t)

	if err := m.AddStartupConfig("first"); err != nil {
		t.Fatalf("AddStartupConfig() returned error: %v", err)
	}
	if err := m.AddStartupConfig("second.cfg"); err != nil {
		t.Fatalf("AddStartupConfig() returned error: %v", err)
	}

	got := m.State().StartupConfigs
	want := []string{"etl_server.cfg", "first.cfg", "second.cfg"}
	if len(got) != len(want) {
		t.Fatalf("unexpected startup configs: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected startup configs: %v", got)
		}
	}

	if err := m.RemoveStartupConfig("first"); err != nil {
		t.Fatalf("RemoveStartupConfig() returned error: %v", err)
	}
	if len(m.State().StartupConfigs) != 2 {
		t.Fatalf("startup config was not removed: %v", m.State().StartupConfigs)
	}
}

func TestAddStartupConfigRejectsBadName(t *testing.T) {
	m := newTestManager(t)

	err := m.AddStartupConfig("../evil")
	if !errors.Is(err, ErrInvalidConfigName) {
		t.Fatalf("expected ErrInvalidConfigName, got %v", err)
	}
}

func TestBuildStartupArgsSkipsInvalidConfigs(t *testing.T) {
	m := newTestManager(t)
	m.state.StartupConfigs = []string{"good.cfg", "bad name.cfg", "also_good.cfg"}

	args := m.BuildStartupArgs()
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "+exec good.cfg") {
		t.Fatalf("missing exec for good.cfg: %v", args)
	}
	if !strings.Contains(joined, "+exec also_good.cfg") {
		t.Fatalf("missing exec for also_good.cfg: %v", args)
	}
	if strings.Contains(joined, "bad name.cfg") {
		t.Fatalf("invalid config leaked into args: %v", args)
	}
	if !strings.Contains(joined, "+set dedicated 2") {
		t.Fatalf("missing dedicated flag: %v", args)
	}
	if !strings.Contains(joined, "+set net_port 27960") {
		t.Fatalf("missing net_port: %v", args)
	}
}

func TestListServers(t *testing.T) {
	m := newTestManager(t)

	names, err := ListServers(m.home)
	if err != nil {
		t.Fatalf("ListServers() returned error: %v", err)
	}
	if len(names) != 1 || names[0] != "testsrv" {
		t.Fatalf("unexpected server list: %v", names)
	}

	empty, err := ListServers(t.TempDir())
	if err != nil {
		t.Fatalf("ListServers() on empty home returned error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no servers, got %v", empty)
	}
}

func TestExists(t *testing.T) {
	m := newTestManager(t)

	if !Exists(m.home, "testsrv") {
		t.Fatal("expected existing server to be reported")
	}
	if Exists(m.home, "nope") {
		t.Fatal("missing server reported as existing")
	}
}

func TestDeleteRemovesServerTree(t *testing.T) {
	m := newTestManager(t)

	if err := m.Delete(); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if _, err := os.Stat(m.ServerDir()); !os.IsNotExist(err) {
		t.Fatalf("server tree still exists after delete")
	}
}
