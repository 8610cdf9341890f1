package server

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/symnet/etsm/internal/sources"
)

// Update installs or upgrades the server binaries and assets to the
// given version from the locally synced sources. Existing mod and
// config directories are preserved: the extracted tree is merged over
// the server root, never a clean reinstall. Afterwards the reserved
// base-game paks are symlinked from shared storage when missing.
func (m *Manager) Update(version string, force bool) error {
	if version == "" {
		idx, err := m.sources.Index()
		if err != nil {
			return err
		}
		latest, ok := idx.LatestServerVersion(m.state.ServerType)
		if !ok {
			return fmt.Errorf("%w: no versions for server type %s", ErrArchiveNotFound, m.state.ServerType)
		}
		version = latest
	}
	m.log.Info("Updating server", "server", m.Name, "version", version)

	if m.state.InstalledVersion != version || force {
		archive := filepath.Join(m.sources.ServersDir(), fmt.Sprintf("%s-%s.tgz", m.state.ServerType, version))
		if _, err := os.Stat(archive); err != nil {
			return fmt.Errorf("%w: %s", ErrArchiveNotFound, archive)
		}

		tmpDir, err := os.MkdirTemp("", "etsm-server-*")
		if err != nil {
			return fmt.Errorf("failed to create temp dir: %w", err)
		}
		defer func() { _ = os.RemoveAll(tmpDir) }()

		if err := sources.ExtractArchive(archive, tmpDir); err != nil {
			return err
		}
		m.log.Debug("Extracted server archive", "archive", archive, "dir", tmpDir)

		root := filepath.Join(tmpDir, fmt.Sprintf("etlegacy-v%s-i386", version))
		if _, err := os.Stat(root); err != nil {
			// archive layouts without the versioned top-level dir
			root = tmpDir
		}
		if err := mergeTree(root, m.serverPath); err != nil {
			return fmt.Errorf("failed to install server files: %w", err)
		}

		m.state.InstalledVersion = version
		if err := m.SaveState(); err != nil {
			return err
		}
		m.log.Info("Server updated", "version", version)
	} else {
		m.log.Info("Server is already up to date", "version", version)
	}

	return m.linkBasePaks()
}

// linkBasePaks symlinks pak0/pak1/pak2 from the shared etmain into the
// server's etmain when any is missing. Missing shared copies are an
// error directing the operator to update sources.
func (m *Manager) linkBasePaks() error {
	allPresent := true
	for _, pak := range sources.BasePaks {
		if _, err := os.Lstat(filepath.Join(m.EtmainDir(), pak)); err != nil {
			allPresent = false
			break
		}
	}
	if allPresent {
		m.log.Info("etmain paks are already linked")
		return nil
	}

	sharedEtmain := filepath.Join(m.sources.ServersDir(), "etmain")
	for _, pak := range sources.BasePaks {
		if _, err := os.Stat(filepath.Join(sharedEtmain, pak)); err != nil {
			return ErrPaksMissing
		}
	}

	m.log.Info("Linking etmain paks")
	if err := os.MkdirAll(m.EtmainDir(), 0755); err != nil {
		return err
	}
	for _, pak := range sources.BasePaks {
		dest := filepath.Join(m.EtmainDir(), pak)
		if _, err := os.Lstat(dest); err == nil {
			continue
		}
		if err := os.Symlink(filepath.Join(sharedEtmain, pak), dest); err != nil {
			return fmt.Errorf("failed to link %s: %w", pak, err)
		}
	}
	return nil
}

// mergeTree copies src over dest, overwriting files but leaving
// entries that only exist in dest untouched.
func mergeTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			_ = os.Remove(target)
			return os.Symlink(link, target)
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = in.Close() }()

		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
		if err != nil {
			return err
		}
		if _, err := out.ReadFrom(in); err != nil {
			_ = out.Close()
			return err
		}
		return out.Close()
	})
}
