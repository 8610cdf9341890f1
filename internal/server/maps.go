package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/symnet/etsm/internal/sources"
)

// withPk3Ext appends the .pk3 extension when missing.
func withPk3Ext(name string) string {
	if !strings.HasSuffix(name, ".pk3") {
		return name + ".pk3"
	}
	return name
}

// AddMap enables a map by symlinking its archive from the shared map
// store into etmain. Maps are deduplicated at the storage layer and
// activated per-server.
func (m *Manager) AddMap(mapName string) error {
	mapName = withPk3Ext(mapName)

	dest := filepath.Join(m.EtmainDir(), mapName)
	if _, err := os.Lstat(dest); err == nil {
		m.log.Warn("Map already enabled", "map", mapName)
		return nil
	}

	src := filepath.Join(m.sources.MapsDir(), mapName)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%w: %s", ErrMapNotFound, mapName)
	}

	m.log.Info("Adding map", "map", mapName)
	return os.Symlink(src, dest)
}

// RemoveMap disables a map by removing its etmain symlink.
func (m *Manager) RemoveMap(mapName string) error {
	mapName = withPk3Ext(mapName)

	dest := filepath.Join(m.EtmainDir(), mapName)
	if _, err := os.Lstat(dest); err != nil {
		m.log.Warn("Map not enabled", "map", mapName)
		return nil
	}

	m.log.Info("Removing map", "map", mapName)
	return os.Remove(dest)
}

// ListEnabledMaps enumerates the pk3 archives visible in etmain, minus
// the reserved base-game paks. The reserved names are filtered by exact
// name match regardless of whether they are files or symlinks.
func (m *Manager) ListEnabledMaps() ([]string, error) {
	entries, err := os.ReadDir(m.EtmainDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	reserved := make(map[string]bool, len(sources.BasePaks))
	for _, p := range sources.BasePaks {
		reserved[p] = true
	}

	var maps []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".pk3") {
			continue
		}
		if reserved[e.Name()] {
			continue
		}
		maps = append(maps, strings.TrimSuffix(e.Name(), ".pk3"))
	}
	return maps, nil
}

// ListAvailableMaps lists the map archives in the shared store.
func (m *Manager) ListAvailableMaps() ([]string, error) {
	return m.sources.AvailableMaps()
}
