package server

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const mapvoteConfigName = "mapvotecycle"

var bspEntryRe = regexp.MustCompile(`^maps/(.*)\.bsp$`)

// Pk3LevelNames opens each named map archive and returns the true
// in-game level identifiers found in its maps/<level>.bsp entries.
// Archives that are missing or hold no level geometry contribute
// nothing.
func (m *Manager) Pk3LevelNames(maps []string) []string {
	var levels []string
	for _, mapName := range maps {
		archivePath := filepath.Join(m.sources.MapsDir(), withPk3Ext(mapName))
		zr, err := zip.OpenReader(archivePath)
		if err != nil {
			m.log.Warn("Cannot open map archive", "map", mapName, "error", err)
			continue
		}
		for _, entry := range zr.File {
			if matches := bspEntryRe.FindStringSubmatch(entry.Name); matches != nil {
				levels = append(levels, matches[1])
			}
		}
		_ = zr.Close()
	}
	return levels
}

// BuildMapvoteCycle generates the round-robin map rotation config from
// the currently enabled maps and activates it. With realNames the level
// identifiers are read from the pk3 archives; otherwise each archive's
// filename, lower-cased, is used as a best guess.
//
// An existing mapvotecycle.cfg in etmain that is a real file (not the
// activation symlink) is assumed to be hand-edited and is preserved
// under a timestamp suffix instead of being overwritten.
func (m *Manager) BuildMapvoteCycle(realNames bool) error {
	livePath := filepath.Join(m.EtmainDir(), mapvoteConfigName+".cfg")
	if info, err := os.Lstat(livePath); err == nil && info.Mode()&os.ModeSymlink == 0 {
		backup := filepath.Join(m.EtmainDir(), fmt.Sprintf("%s-%d.cfg", mapvoteConfigName, time.Now().Unix()))
		m.log.Info("mapvotecycle.cfg is not a symlink, moving it", "to", backup)
		if err := os.Rename(livePath, backup); err != nil {
			return fmt.Errorf("failed to preserve existing mapvote cycle: %w", err)
		}
	}

	m.log.Info("Building mapvote cycle config")
	maps, err := m.ListEnabledMaps()
	if err != nil {
		return err
	}
	if realNames {
		maps = m.Pk3LevelNames(maps)
	}

	var b strings.Builder
	b.WriteString("// Mapvote cycle (Generated by etsm)\n")
	b.WriteString(fmt.Sprintf("// Create Time %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	for i, mapName := range maps {
		// the last entry wraps back to d0
		next := (i + 1) % len(maps)
		b.WriteString(fmt.Sprintf("set d%d \"set g_gametype 6 ; map %s ; set nextmap vstr d%d\"\n",
			i, strings.ToLower(mapName), next))
	}
	b.WriteString("vstr d0\n")

	configPath, err := m.ConfigPath(mapvoteConfigName)
	if err != nil {
		return err
	}
	if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := m.WriteConfig(mapvoteConfigName, b.String()); err != nil {
		return err
	}

	m.log.Info("Mapvote cycle config written", "maps", len(maps))
	return m.ActivateConfig(mapvoteConfigName)
}
