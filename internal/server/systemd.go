package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

// unitName returns the systemd unit filename for this server.
func (m *Manager) unitName() string {
	return "etsm-" + m.Name + ".service"
}

// unitPath is where the rendered unit file lives inside the server
// tree, ready to be symlinked into the systemd directory.
func (m *Manager) unitPath() string {
	return filepath.Join(m.serverPath, "systemd", m.unitName())
}

// BuildSystemdUnit renders the systemd unit template with this
// server's name and startup command and writes it under the server
// tree. The template uses $server_name and $startup_command
// placeholders.
func (m *Manager) BuildSystemdUnit() error {
	tmplPath := m.sources.SystemdTemplatePath()
	raw, err := os.ReadFile(tmplPath)
	if err != nil {
		return fmt.Errorf("reading systemd template: %w", err)
	}

	unit := os.Expand(string(raw), func(key string) string {
		switch key {
		case "server_name":
			return m.Name
		case "startup_command":
			return m.StartupCommand()
		}
		return ""
	})

	unitDir := filepath.Dir(m.unitPath())
	if err := os.MkdirAll(unitDir, 0o755); err != nil {
		return fmt.Errorf("creating systemd dir: %w", err)
	}
	if err := os.WriteFile(m.unitPath(), []byte(unit), 0o644); err != nil {
		return fmt.Errorf("writing systemd unit: %w", err)
	}
	m.log.Debug("Rendered systemd unit", "path", m.unitPath())
	return nil
}

// LinkSystemdUnit symlinks the rendered unit into the systemd unit
// directory, replacing any previous link, and reloads the daemon.
// Needs root; permission errors come back as a clear message instead
// of a stack of syscall noise.
func (m *Manager) LinkSystemdUnit() error {
	if err := m.BuildSystemdUnit(); err != nil {
		return err
	}

	dest := filepath.Join(m.systemdDir, m.unitName())
	if _, err := os.Lstat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return fmt.Errorf("removing old unit link (are you root?): %w", err)
			}
			return fmt.Errorf("removing old unit link: %w", err)
		}
	}
	if err := os.Symlink(m.unitPath(), dest); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("linking systemd unit (are you root?): %w", err)
		}
		return fmt.Errorf("linking systemd unit: %w", err)
	}
	m.log.Info("Linked systemd unit", "unit", m.unitName(), "path", dest)

	if err := reloadSystemd(); err != nil {
		m.log.Warn("systemctl daemon-reload failed", "error", err)
	}
	return nil
}

func reloadSystemd() error {
	cmd := exec.Command("systemctl", "daemon-reload")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, string(out))
	}
	return nil
}
