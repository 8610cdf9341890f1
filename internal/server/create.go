package server

import (
	"fmt"
	"os"

	"github.com/symnet/etsm/internal/sources"
)

// CreateOptions tunes a plain (non-descriptor) create.
type CreateOptions struct {
	Version  string // server version, empty means latest
	Force    bool   // reinstall over an existing etmain
	WithMaps bool   // also download the map pool while syncing
}

// Create installs a fresh server: sync the needed sources, extract the
// server archive, and link the base paks. An already installed server
// is refused unless forced.
func (m *Manager) Create(opts CreateOptions, report sources.ReportFunc) error {
	if m.Installed() && !opts.Force {
		return fmt.Errorf("%w: %s", ErrServerExists, m.Name)
	}

	if err := m.sources.DownloadSources(false, opts.WithMaps, report); err != nil {
		return err
	}
	if err := m.Update(opts.Version, opts.Force); err != nil {
		return err
	}
	m.log.Info("Server created", "server", m.Name)
	return nil
}

// CreateFromDescriptor installs and configures a server from a
// validated descriptor in one pass. When a step fails partway through,
// a server tree that did not exist before the call is removed again so
// a fixed descriptor can be re-applied cleanly.
func (m *Manager) CreateFromDescriptor(d *Descriptor, force bool, report sources.ReportFunc) error {
	existed := m.Installed()

	err := m.applyDescriptor(d, force, report)
	if err != nil && !existed {
		m.log.Warn("Create failed, rolling back server tree", "server", m.Name, "error", err)
		if rmErr := os.RemoveAll(m.serverPath); rmErr != nil {
			m.log.Error("Rollback failed", "error", rmErr)
		}
	}
	return err
}

func (m *Manager) applyDescriptor(d *Descriptor, force bool, report sources.ReportFunc) error {
	if err := m.Create(CreateOptions{Force: force, WithMaps: len(d.Maps) > 0}, report); err != nil {
		return err
	}

	if d.ServerIP != "" {
		if err := m.SetIP(d.ServerIP); err != nil {
			return err
		}
	}
	if d.ServerPort != 0 {
		if err := m.SetPort(d.ServerPort); err != nil {
			return err
		}
	}
	if d.Mod != nil {
		if err := m.InstallMod(d.Mod.Name, d.Mod.Version, force); err != nil {
			return err
		}
		if err := m.SetMod(d.Mod.Name); err != nil {
			return err
		}
	}

	for _, c := range d.Configs {
		if err := m.CreateConfig(c.Name, c.From, c.CVars, c.Activated()); err != nil {
			return err
		}
		if len(c.Bots) > 0 {
			if err := m.UpdateBots(c.Name, c.Bots); err != nil {
				return err
			}
		}
	}

	for _, mapName := range d.Maps {
		if err := m.AddMap(mapName); err != nil {
			return err
		}
	}
	if d.BuildMapvote {
		if err := m.BuildMapvoteCycle(false); err != nil {
			return err
		}
	}

	if len(d.StartupConfigs) > 0 {
		if err := m.SetStartupConfigs(d.StartupConfigs); err != nil {
			return err
		}
	}
	return nil
}
