package server

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/symnet/etsm/internal/sources"
)

var (
	serverNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	configNameRe = regexp.MustCompile(`^[A-Za-z0-9._]+$`)
)

// Manager operates on a single server instance under
// <home>/servers/<name>. Artifacts come from the shared sources store;
// activation happens via symlinks into the server's etmain.
type Manager struct {
	Name string

	home       string
	serverPath string
	configPath string
	statePath  string
	systemdDir string // system unit directory, overridable in tests

	sources *sources.Manager
	state   *State
	log     *log.Logger
}

// New creates a manager for the named server, creating the server and
// private config directories and loading (or materializing) its state
// record.
func New(home, name string, src *sources.Manager, logger *log.Logger) (*Manager, error) {
	if name == "" {
		name = "default"
	}
	if !serverNameRe.MatchString(name) {
		return nil, fmt.Errorf("%w: %s (must match %s)", ErrInvalidServerName, name, serverNameRe.String())
	}

	m := &Manager{
		Name:       name,
		home:       home,
		serverPath: filepath.Join(home, "servers", name),
		systemdDir: "/etc/systemd/system",
		sources:    src,
		log:        logger,
	}
	m.configPath = filepath.Join(m.serverPath, "etsm_configs")
	m.statePath = filepath.Join(m.serverPath, ".etsm_config")

	if err := os.MkdirAll(m.configPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create server directories: %w", err)
	}

	state, err := loadState(m.statePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load server state: %w", err)
	}
	m.state = state

	return m, nil
}

// ServerDir returns the server's root directory.
func (m *Manager) ServerDir() string { return m.serverPath }

// ConfigDir returns the private (master copy) config directory.
func (m *Manager) ConfigDir() string { return m.configPath }

// EtmainDir returns the live etmain directory.
func (m *Manager) EtmainDir() string { return filepath.Join(m.serverPath, "etmain") }

// State returns the server's state record.
func (m *Manager) State() *State { return m.state }

// SaveState persists the state record.
func (m *Manager) SaveState() error {
	return saveState(m.statePath, m.state)
}

// Installed reports whether the server tree has been populated
// (etmain present).
func (m *Manager) Installed() bool {
	info, err := os.Stat(m.EtmainDir())
	return err == nil && info.IsDir()
}

// SetIP updates the bind address and rebuilds the systemd unit.
func (m *Manager) SetIP(ip string) error {
	m.log.Info("Setting ip", "ip", ip)
	m.state.ServerIP = ip
	if err := m.SaveState(); err != nil {
		return err
	}
	m.rebuildSystemdUnit()
	return nil
}

// SetPort updates the bind port and rebuilds the systemd unit.
func (m *Manager) SetPort(port int) error {
	m.log.Info("Setting port", "port", port)
	m.state.ServerPort = port
	if err := m.SaveState(); err != nil {
		return err
	}
	m.rebuildSystemdUnit()
	return nil
}

// SetMod selects the fs_game mod and rebuilds the systemd unit. A
// missing mod directory is a warning, not an error, so a mod can be
// selected before it is installed.
func (m *Manager) SetMod(modName string) error {
	m.log.Info("Setting mod", "mod", modName)
	if _, err := os.Stat(filepath.Join(m.serverPath, modName)); err != nil {
		m.log.Warn("Mod does not exist in server", "mod", modName, "server", m.Name)
	}
	m.state.ServerMod = modName
	if err := m.SaveState(); err != nil {
		return err
	}
	m.rebuildSystemdUnit()
	return nil
}

// SetPassword updates the server password and rebuilds the systemd unit.
func (m *Manager) SetPassword(password string) error {
	m.log.Info("Setting server password")
	m.state.ServerPassword = password
	if err := m.SaveState(); err != nil {
		return err
	}
	m.rebuildSystemdUnit()
	return nil
}

// rebuildSystemdUnit regenerates the unit after a state change. Failure
// is logged only: the unit may never have been built.
func (m *Manager) rebuildSystemdUnit() {
	if err := m.BuildSystemdUnit(); err != nil {
		m.log.Debug("Skipping systemd unit rebuild", "error", err)
	}
}

// AddStartupConfig appends a config to the ordered startup list. The
// config not being activated yet is a warning only.
func (m *Manager) AddStartupConfig(configName string) error {
	if !configNameRe.MatchString(configName) {
		return fmt.Errorf("%w: %s", ErrInvalidConfigName, configName)
	}
	configName = withCfgExt(configName)
	if !m.ConfigActivated(configName) {
		m.log.Warn("Config is not activated", "config", configName)
	}
	m.state.StartupConfigs = append(m.state.StartupConfigs, configName)
	if err := m.SaveState(); err != nil {
		return err
	}
	m.log.Info("Added startup config", "config", configName)
	return nil
}

// RemoveStartupConfig removes a config from the startup list.
func (m *Manager) RemoveStartupConfig(configName string) error {
	configName = withCfgExt(configName)
	idx := -1
	for i, c := range m.state.StartupConfigs {
		if c == configName {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.log.Warn("Config is not in startup configs", "config", configName)
		return nil
	}
	m.state.StartupConfigs = append(m.state.StartupConfigs[:idx], m.state.StartupConfigs[idx+1:]...)
	if err := m.SaveState(); err != nil {
		return err
	}
	m.log.Info("Removed startup config", "config", configName)
	return nil
}

// SetStartupConfigs replaces the startup list wholesale. A descriptor
// carries the full desired list, not a delta on top of the defaults.
func (m *Manager) SetStartupConfigs(configNames []string) error {
	normalized := make([]string, 0, len(configNames))
	for _, configName := range configNames {
		if !configNameRe.MatchString(configName) {
			return fmt.Errorf("%w: %s", ErrInvalidConfigName, configName)
		}
		configName = withCfgExt(configName)
		if !m.ConfigActivated(configName) {
			m.log.Warn("Config is not activated", "config", configName)
		}
		normalized = append(normalized, configName)
	}
	m.state.StartupConfigs = normalized
	if err := m.SaveState(); err != nil {
		return err
	}
	m.log.Info("Set startup configs", "configs", normalized)
	return nil
}

// Delete recursively removes the server tree.
func (m *Manager) Delete() error {
	m.log.Info("Deleting server", "server", m.Name)
	return os.RemoveAll(m.serverPath)
}

// Exists reports whether a server instance directory is present under
// home. Opening a manager creates the directory, so callers that must
// not materialize a server for a mistyped name check this first.
func Exists(home, name string) bool {
	info, err := os.Stat(filepath.Join(home, "servers", name))
	return err == nil && info.IsDir()
}

// ListServers enumerates server instances under home.
func ListServers(home string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(home, "servers"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// withCfgExt appends the .cfg extension when missing.
func withCfgExt(name string) string {
	if filepath.Ext(name) != ".cfg" {
		return name + ".cfg"
	}
	return name
}
