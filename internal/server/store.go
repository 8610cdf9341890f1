package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ConfigPath resolves a config name to its path in the private config
// directory, appending the .cfg extension when missing.
func (m *Manager) ConfigPath(configName string) (string, error) {
	if !configNameRe.MatchString(configName) {
		return "", fmt.Errorf("%w: %s", ErrInvalidConfigName, configName)
	}
	return filepath.Join(m.configPath, withCfgExt(configName)), nil
}

// ReadConfig returns the raw text of a config file.
func (m *Manager) ReadConfig(configName string) (string, error) {
	path, err := m.ConfigPath(configName)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, configName)
		}
		return "", err
	}
	return string(data), nil
}

// WriteConfig overwrites a config file with text.
func (m *Manager) WriteConfig(configName, text string) error {
	path, err := m.ConfigPath(configName)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0644)
}

// ensureConfig reads a config, auto-creating it with a generated header
// when absent. Auto-creation requires the server's etmain to exist: a
// missing etmain means the server was never installed, and creating
// orphaned config fragments for it would be misleading.
func (m *Manager) ensureConfig(configName string) (string, error) {
	text, err := m.ReadConfig(configName)
	if err == nil {
		return text, nil
	}
	// Only a genuinely missing file triggers auto-creation. Any other
	// read failure must not end with the config being overwritten.
	if !errors.Is(err, ErrConfigNotFound) {
		return "", err
	}

	if !m.Installed() {
		return "", fmt.Errorf("server [%s]: %w", m.Name, ErrServerNotInstalled)
	}

	m.log.Warn("Config file does not exist, automatically creating", "config", configName)
	text = generatedHeader()
	if err := m.WriteConfig(configName, text); err != nil {
		return "", err
	}
	return text, nil
}

func generatedHeader() string {
	return fmt.Sprintf("// Config file generated by etsm\n// Create Time: %s\n",
		time.Now().Format("2006-01-02 15:04:05"))
}
