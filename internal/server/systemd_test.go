package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const unitTemplate = `[Unit]
Description=ET Legacy server ($server_name)
After=network.target

[Service]
ExecStart=$startup_command
Restart=on-failure

[Install]
WantedBy=multi-user.target
`

func stageSystemdTemplate(t *testing.T, m *Manager) {
	t.Helper()

	path := m.sources.SystemdTemplatePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create systemd template dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(unitTemplate), 0644); err != nil {
		t.Fatalf("failed to stage systemd template: %v", err)
	}
}

func TestBuildSystemdUnitExpandsPlaceholders(t *testing.T) {
	m := newTestManager(t)
	stageSystemdTemplate(t, m)

	if err := m.BuildSystemdUnit(); err != nil {
		t.Fatalf("BuildSystemdUnit() returned error: %v", err)
	}

	data, err := os.ReadFile(m.unitPath())
	if err != nil {
		t.Fatalf("reading rendered unit: %v", err)
	}
	unit := string(data)

	if !strings.Contains(unit, "Description=ET Legacy server (testsrv)") {
		t.Fatalf("server name not expanded:\n%s", unit)
	}
	if !strings.Contains(unit, "+set dedicated 2") {
		t.Fatalf("startup command not expanded:\n%s", unit)
	}
	if strings.Contains(unit, "$server_name") || strings.Contains(unit, "$startup_command") {
		t.Fatalf("placeholders survived expansion:\n%s", unit)
	}
}

func TestSettersRefreshSystemdUnit(t *testing.T) {
	m := newTestManager(t)
	stageSystemdTemplate(t, m)

	if err := m.SetPort(27980); err != nil {
		t.Fatalf("SetPort() returned error: %v", err)
	}

	data, err := os.ReadFile(m.unitPath())
	if err != nil {
		t.Fatalf("unit not rebuilt after SetPort: %v", err)
	}
	if !strings.Contains(string(data), "+set net_port 27980") {
		t.Fatalf("rebuilt unit misses the new port:\n%s", string(data))
	}
}

func TestLinkSystemdUnit(t *testing.T) {
	m := newTestManager(t)
	stageSystemdTemplate(t, m)

	if err := m.LinkSystemdUnit(); err != nil {
		t.Fatalf("LinkSystemdUnit() returned error: %v", err)
	}

	link := filepath.Join(m.systemdDir, "etsm-testsrv.service")
	info, err := os.Lstat(link)
	if err != nil {
		t.Fatalf("unit link missing: %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatal("installed unit is not a symlink")
	}

	// Relinking replaces the existing link without error.
	if err := m.LinkSystemdUnit(); err != nil {
		t.Fatalf("second LinkSystemdUnit() returned error: %v", err)
	}
}
