package server

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ActivateConfig symlinks a private config into the live etmain
// directory. Activating an already-active config is an informational
// no-op; a missing source config is an error.
func (m *Manager) ActivateConfig(configName string) error {
	src, err := m.ConfigPath(configName)
	if err != nil {
		return err
	}
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%w: %s", ErrConfigNotFound, configName)
	}

	dest := filepath.Join(m.EtmainDir(), filepath.Base(src))
	if _, err := os.Lstat(dest); err == nil {
		m.log.Info("Config already activated", "config", configName)
		return nil
	}

	m.log.Info("Activating config", "config", configName)
	return os.Symlink(src, dest)
}

// DeactivateConfig removes the etmain symlink for a config. A config
// that is not active is an error.
func (m *Manager) DeactivateConfig(configName string) error {
	if !configNameRe.MatchString(configName) {
		return fmt.Errorf("%w: %s", ErrInvalidConfigName, configName)
	}
	dest := filepath.Join(m.EtmainDir(), withCfgExt(configName))
	if _, err := os.Lstat(dest); err != nil {
		return fmt.Errorf("%w: %s", ErrConfigNotActive, configName)
	}

	m.log.Info("Deactivating config", "config", configName)
	return os.Remove(dest)
}

// ConfigActivated reports whether a same-named entry exists in etmain.
func (m *Manager) ConfigActivated(configName string) bool {
	dest := filepath.Join(m.EtmainDir(), withCfgExt(configName))
	_, err := os.Lstat(dest)
	return err == nil
}

// CreateConfig creates a new private config, optionally copied from a
// downloaded template, applies the given cvars, and optionally
// activates it. An existing config of the same name is an error.
func (m *Manager) CreateConfig(configName, fromTemplate string, cvars map[string]string, activate bool) error {
	path, err := m.ConfigPath(configName)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, configName)
	}

	if fromTemplate != "" {
		templatePath := filepath.Join(m.sources.TemplatesDir(), withCfgExt(fromTemplate))
		if err := copyFile(templatePath, path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrTemplateNotFound, fromTemplate)
			}
			return err
		}
	}

	if err := m.UpdateCVars(configName, cvars); err != nil {
		return err
	}
	if activate {
		return m.ActivateConfig(configName)
	}
	return nil
}

// ListConfigs lists the private config files (names without extension).
func (m *Manager) ListConfigs() ([]string, error) {
	return listCfgEntries(m.configPath, func(e os.DirEntry) bool {
		return e.Type().IsRegular()
	})
}

// ListActiveConfigs lists the configs symlinked into etmain.
func (m *Manager) ListActiveConfigs() ([]string, error) {
	return listCfgEntries(m.EtmainDir(), func(e os.DirEntry) bool {
		return e.Type()&os.ModeSymlink != 0
	})
}

func listCfgEntries(dir string, keep func(os.DirEntry) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !keep(e) || !strings.HasSuffix(e.Name(), ".cfg") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".cfg"))
	}
	return names, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	cerr := out.Close()
	if err != nil {
		return err
	}
	return cerr
}
