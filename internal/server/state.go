package server

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// State is the per-server record persisted at <server>/.etsm_config.
type State struct {
	ServerType       string   `json:"server_type"`
	ServerIP         string   `json:"server_ip"`
	ServerPort       int      `json:"server_port"`
	ServerPassword   string   `json:"server_password"`
	ServerMod        string   `json:"server_mod"`
	InstalledVersion string   `json:"installed_version"`
	StartupConfigs   []string `json:"startup_configs"`
}

// DefaultState returns the documented default record for a new server.
func DefaultState() *State {
	return &State{
		ServerType:     "etl",
		ServerIP:       "0.0.0.0",
		ServerPort:     27960,
		ServerPassword: "",
		ServerMod:      "legacy",
		StartupConfigs: []string{"etl_server.cfg"},
	}
}

// fillDefaults materializes default values for fields missing from an
// older record. Run once at load time.
func (s *State) fillDefaults() {
	def := DefaultState()
	if s.ServerType == "" {
		s.ServerType = def.ServerType
	}
	if s.ServerIP == "" {
		s.ServerIP = def.ServerIP
	}
	if s.ServerPort == 0 {
		s.ServerPort = def.ServerPort
	}
	if s.ServerMod == "" {
		s.ServerMod = def.ServerMod
	}
	if s.StartupConfigs == nil {
		s.StartupConfigs = append([]string(nil), def.StartupConfigs...)
	}
}

// loadState reads the state record, materializing and persisting the
// defaults when the record does not exist yet.
func loadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			state := DefaultState()
			if err := saveState(path, state); err != nil {
				return nil, err
			}
			return state, nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	state.fillDefaults()
	return &state, nil
}

// saveState writes the state record to disk.
func saveState(path string, state *State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
