package server

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateConfigAndActivate(t *testing.T) {
	m := newTestManager(t)

	err := m.CreateConfig("match", "", map[string]string{"g_gametype": "3"}, true)
	if err != nil {
		t.Fatalf("CreateConfig() returned error: %v", err)
	}

	text, err := m.ReadConfig("match")
	if err != nil {
		t.Fatalf("ReadConfig() returned error: %v", err)
	}
	if !strings.Contains(text, `set g_gametype "3"`) {
		t.Fatalf("cvar missing from created config:\n%s", text)
	}
	if !strings.Contains(text, "// Config file generated by etsm") {
		t.Fatalf("generated header missing:\n%s", text)
	}

	if !m.ConfigActivated("match") {
		t.Fatal("config should be activated")
	}
	link := filepath.Join(m.EtmainDir(), "match.cfg")
	if info, err := os.Lstat(link); err != nil || info.Mode()&os.ModeSymlink == 0 {
		t.Fatalf("expected a symlink at %s", link)
	}
}

func TestCreateConfigRefusesExisting(t *testing.T) {
	m := newTestManager(t)

	if err := m.CreateConfig("dup", "", nil, false); err != nil {
		t.Fatalf("CreateConfig() returned error: %v", err)
	}
	err := m.CreateConfig("dup", "", nil, false)
	if !errors.Is(err, ErrConfigExists) {
		t.Fatalf("expected ErrConfigExists, got %v", err)
	}
}

func TestCreateConfigFromTemplate(t *testing.T) {
	m := newTestManager(t)
	stageTemplate(t, m, "etl_comp", "set g_gametype \"6\"\nset sv_maxclients \"20\"\n")

	err := m.CreateConfig("comp", "etl_comp", map[string]string{"sv_maxclients": "32"}, false)
	if err != nil {
		t.Fatalf("CreateConfig() returned error: %v", err)
	}

	v, found, err := m.GetCVar("comp", "sv_maxclients")
	if err != nil || !found {
		t.Fatalf("GetCVar() failed: %v found=%v", err, found)
	}
	if v != "32" {
		t.Fatalf("initial cvar did not override template value, got %q", v)
	}
	if v, _, _ := m.GetCVar("comp", "g_gametype"); v != "6" {
		t.Fatalf("template content lost, g_gametype=%q", v)
	}
}

func TestCreateConfigMissingTemplate(t *testing.T) {
	m := newTestManager(t)

	err := m.CreateConfig("x", "nope", nil, false)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestActivateIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	if err := m.CreateConfig("twice", "", nil, false); err != nil {
		t.Fatalf("CreateConfig() returned error: %v", err)
	}

	if err := m.ActivateConfig("twice"); err != nil {
		t.Fatalf("first ActivateConfig() returned error: %v", err)
	}
	if err := m.ActivateConfig("twice"); err != nil {
		t.Fatalf("second ActivateConfig() should be a no-op, got %v", err)
	}
}

func TestActivateMissingConfig(t *testing.T) {
	m := newTestManager(t)

	err := m.ActivateConfig("ghost")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestDeactivateConfig(t *testing.T) {
	m := newTestManager(t)
	if err := m.CreateConfig("temp", "", nil, true); err != nil {
		t.Fatalf("CreateConfig() returned error: %v", err)
	}

	if err := m.DeactivateConfig("temp"); err != nil {
		t.Fatalf("DeactivateConfig() returned error: %v", err)
	}
	if m.ConfigActivated("temp") {
		t.Fatal("config still activated after deactivate")
	}

	// The private copy must survive deactivation.
	if _, err := m.ReadConfig("temp"); err != nil {
		t.Fatalf("private config lost on deactivate: %v", err)
	}

	err := m.DeactivateConfig("temp")
	if !errors.Is(err, ErrConfigNotActive) {
		t.Fatalf("expected ErrConfigNotActive, got %v", err)
	}
}

func TestListConfigsSeparatesActiveFromPrivate(t *testing.T) {
	m := newTestManager(t)
	if err := m.CreateConfig("a", "", nil, true); err != nil {
		t.Fatalf("CreateConfig() returned error: %v", err)
	}
	if err := m.CreateConfig("b", "", nil, false); err != nil {
		t.Fatalf("CreateConfig() returned error: %v", err)
	}

	configs, err := m.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs() returned error: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("expected 2 configs, got %v", configs)
	}

	active, err := m.ListActiveConfigs()
	if err != nil {
		t.Fatalf("ListActiveConfigs() returned error: %v", err)
	}
	if len(active) != 1 || active[0] != "a" {
		t.Fatalf("unexpected active configs: %v", active)
	}
}
