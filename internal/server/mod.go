package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/symnet/etsm/internal/sources"
)

const modVersionMarker = ".mod_version"

// InstalledModVersion reads the version marker of an installed mod.
// Empty when the mod or its marker is absent.
func (m *Manager) InstalledModVersion(modName string) string {
	data, err := os.ReadFile(filepath.Join(m.serverPath, modName, modVersionMarker))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// InstallMod unpacks a mod archive from the local sources into the
// server root and records the installed version marker. An empty
// version resolves to the latest from the remote index. Installation
// is skipped when the requested version is already installed, unless
// forced.
func (m *Manager) InstallMod(modName, modVersion string, force bool) error {
	if modVersion == "" {
		idx, err := m.sources.Index()
		if err != nil {
			return fmt.Errorf("no mod version given and index unavailable: %w", err)
		}
		latest, ok := idx.LatestModVersion(modName)
		if !ok {
			return fmt.Errorf("%w: unknown mod type %s", ErrModNotFound, modName)
		}
		modVersion = latest
	}
	m.log.Info("Installing mod", "mod", modName, "version", modVersion)

	archive := filepath.Join(m.sources.ModsDir(), fmt.Sprintf("%s-%s.tgz", modName, modVersion))
	if _, err := os.Stat(archive); err != nil {
		return fmt.Errorf("%w: %s", ErrModNotFound, archive)
	}

	if !force && m.InstalledModVersion(modName) == modVersion {
		m.log.Warn("Mod already installed at this version, not installing",
			"mod", modName, "version", modVersion)
		return nil
	}

	if err := sources.ExtractArchive(archive, m.serverPath); err != nil {
		return err
	}
	marker := filepath.Join(m.serverPath, modName, modVersionMarker)
	if err := os.WriteFile(marker, []byte(modVersion), 0644); err != nil {
		return fmt.Errorf("failed to write mod version marker: %w", err)
	}

	m.log.Info("Mod installed", "mod", modName, "version", modVersion)
	return nil
}

// ListMods lists the mod types available in the sources store.
func (m *Manager) ListMods() ([]string, error) {
	return m.sources.ListMods()
}
