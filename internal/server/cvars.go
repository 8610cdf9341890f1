package server

import (
	"sort"
)

// UpdateCVars upserts the given cvar values into a config file,
// auto-creating the file when needed. Keys are applied in sorted order
// so repeated runs produce identical files.
func (m *Manager) UpdateCVars(configName string, values map[string]string) error {
	text, err := m.ensureConfig(configName)
	if err != nil {
		return err
	}

	doc := ParseDocument(text)
	for _, key := range sortedKeys(values) {
		value := values[key]
		m.log.Info("Updating cvar", "config", configName, "cvar", key, "value", value)
		if doc.UpsertCVar(key, value) {
			m.log.Debug("CVar did not exist, adding", "cvar", key)
		}
	}
	return m.WriteConfig(configName, doc.String())
}

// UpdateBots upserts the given bot settings into a config file. Same
// protocol as UpdateCVars but bot values are written unquoted.
func (m *Manager) UpdateBots(configName string, values map[string]string) error {
	text, err := m.ensureConfig(configName)
	if err != nil {
		return err
	}

	doc := ParseDocument(text)
	for _, key := range sortedKeys(values) {
		value := values[key]
		m.log.Info("Updating bot setting", "config", configName, "key", key, "value", value)
		if doc.UpsertBot(key, value) {
			m.log.Debug("Bot setting did not exist, adding", "key", key)
		}
	}
	return m.WriteConfig(configName, doc.String())
}

// AddExec appends an exec directive to a config file. A file holds at
// most one exec line: when any exec line already exists, whatever its
// target, the file is left unchanged.
func (m *Manager) AddExec(configName, execName string) error {
	text, err := m.ensureConfig(configName)
	if err != nil {
		return err
	}

	doc := ParseDocument(text)
	if !doc.AddExec(execName) {
		m.log.Warn("An exec line already exists, skipping", "config", configName, "exec", execName)
		return nil
	}
	m.log.Info("Adding exec", "config", configName, "exec", execName)
	return m.WriteConfig(configName, doc.String())
}

// RemoveExec deletes every exec line for execName from a config file.
func (m *Manager) RemoveExec(configName, execName string) error {
	text, err := m.ReadConfig(configName)
	if err != nil {
		return err
	}

	doc := ParseDocument(text)
	removed := doc.RemoveExec(execName)
	m.log.Info("Removing exec", "config", configName, "exec", execName, "removed", removed)
	return m.WriteConfig(configName, doc.String())
}

// ListCVars returns the cvar names present in a config file.
func (m *Manager) ListCVars(configName string) ([]string, error) {
	text, err := m.ReadConfig(configName)
	if err != nil {
		return nil, err
	}
	return ParseDocument(text).CVarNames(), nil
}

// ListExecs returns the exec targets present in a config file.
func (m *Manager) ListExecs(configName string) ([]string, error) {
	text, err := m.ReadConfig(configName)
	if err != nil {
		return nil, err
	}
	return ParseDocument(text).ExecNames(), nil
}

// GetCVar returns the value of a cvar in a config file. With duplicate
// lines the last one wins, matching how the game engine reads the file.
func (m *Manager) GetCVar(configName, cvar string) (string, bool, error) {
	text, err := m.ReadConfig(configName)
	if err != nil {
		return "", false, err
	}
	value, ok := ParseDocument(text).CVar(cvar)
	return value, ok, nil
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
