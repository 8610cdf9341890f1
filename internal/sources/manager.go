package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultURL is the default sources server.
const DefaultURL = "http://etsm.symnet.io"

// Reserved base-game pak archives, linked into every server's etmain.
var BasePaks = []string{"pak0.pk3", "pak1.pk3", "pak2.pk3"}

// Manager owns the shared artifact store under <home>/source and keeps
// it in sync with the remote index. Artifacts are deduplicated here and
// activated per-server via symlinks.
type Manager struct {
	URL     string
	Dir     string
	log     *log.Logger
	fetcher *Fetcher
	index   *Index
}

// NewManager creates a sources manager rooted at <home>/source.
func NewManager(home, sourcesURL string, logger *log.Logger) *Manager {
	if sourcesURL == "" {
		sourcesURL = DefaultURL
	}
	sourcesURL = strings.TrimSuffix(sourcesURL, "/")

	return &Manager{
		URL:     sourcesURL,
		Dir:     filepath.Join(home, "source"),
		log:     logger,
		fetcher: NewFetcher(),
	}
}

// ServersDir is where server archives and the shared etmain live.
func (m *Manager) ServersDir() string { return filepath.Join(m.Dir, "servers") }

// MapsDir is the shared map archive store.
func (m *Manager) MapsDir() string { return filepath.Join(m.Dir, "maps") }

// TemplatesDir holds the extracted config templates.
func (m *Manager) TemplatesDir() string { return filepath.Join(m.Dir, "config_templates") }

// SystemdDir holds the downloaded systemd unit template.
func (m *Manager) SystemdDir() string { return filepath.Join(m.Dir, "systemd") }

// SystemdTemplatePath is the local path of the unit template.
func (m *Manager) SystemdTemplatePath() string {
	return filepath.Join(m.SystemdDir(), "systemd.service.template")
}

// Index fetches and caches the remote index. The index is re-fetched at
// the start of every sync operation, never partially trusted.
func (m *Manager) Index() (*Index, error) {
	if m.index != nil {
		return m.index, nil
	}
	m.log.Debug("Getting sources index", "url", m.URL)
	idx, err := FetchIndex(m.fetcher.httpClient.HTTPClient, m.URL)
	if err != nil {
		return nil, err
	}
	m.index = idx
	return idx, nil
}

// DownloadPaks fetches and extracts the base-game pak bundle into the
// shared etmain directory.
func (m *Manager) DownloadPaks(report ReportFunc) error {
	idx, err := m.Index()
	if err != nil {
		return err
	}

	archive := filepath.Join(m.ServersDir(), "paks.tgz")
	if !ShouldFetch(archive, idx.ETSM.PaksMD5) {
		m.log.Info("etmain paks are up to date")
		return nil
	}

	m.log.Info("Downloading etmain paks")
	if err := m.fetcher.Fetch(m.URL+idx.ETSM.Paks, archive, report); err != nil {
		return fmt.Errorf("failed to download etmain paks: %w", err)
	}

	m.log.Info("Extracting etmain paks")
	return ExtractArchive(archive, filepath.Join(m.ServersDir(), "etmain"))
}

// DownloadServerSources fetches server archives for every declared
// server type: the latest version only, or all versions.
func (m *Manager) DownloadServerSources(allVersions bool, report ReportFunc) error {
	idx, err := m.Index()
	if err != nil {
		return err
	}

	for serverType, entry := range idx.ETSM.Servers {
		versions := map[string]ServerVersion{entry.Latest: entry.Versions[entry.Latest]}
		if allVersions {
			versions = entry.Versions
		}
		for version, v := range versions {
			dest := filepath.Join(m.ServersDir(), fmt.Sprintf("%s-%s.tgz", serverType, version))
			if !ShouldFetch(dest, v.MD5) {
				m.log.Info("Server archive already downloaded", "type", serverType, "version", version)
				continue
			}
			m.log.Info("Downloading server archive", "type", serverType, "version", version)
			if err := m.fetcher.Fetch(m.URL+v.Archive, dest, report); err != nil {
				// Non-fatal to sibling downloads
				m.log.Error("Failed to download server archive", "type", serverType, "version", version, "error", err)
			}
		}
	}
	return nil
}

// DownloadModSources fetches mod archives for every declared mod type.
func (m *Manager) DownloadModSources(allVersions bool, report ReportFunc) error {
	idx, err := m.Index()
	if err != nil {
		return err
	}

	for modType, entry := range idx.ETSM.Mods {
		versions := map[string]ModVersion{entry.Latest: entry.Versions[entry.Latest]}
		if allVersions {
			versions = entry.Versions
		}
		for version, v := range versions {
			dest := filepath.Join(m.Dir, "mods", fmt.Sprintf("%s-%s.tgz", modType, version))
			if !ShouldFetch(dest, v.MD5) {
				m.log.Info("Mod archive already downloaded", "type", modType, "version", version)
				continue
			}
			m.log.Info("Downloading mod archive", "type", modType, "version", version)
			if err := m.fetcher.Fetch(m.URL+v.Archive, dest, report); err != nil {
				m.log.Error("Failed to download mod archive", "type", modType, "version", version, "error", err)
			}
		}
	}
	return nil
}

// ModsDir holds the downloaded mod archives.
func (m *Manager) ModsDir() string { return filepath.Join(m.Dir, "mods") }

// DownloadMaps fetches the named map archives into the shared map store.
// Already-present archives are skipped.
func (m *Manager) DownloadMaps(maps []string, report ReportFunc) error {
	for _, name := range maps {
		if !strings.HasSuffix(name, ".pk3") {
			name += ".pk3"
		}
		dest := filepath.Join(m.MapsDir(), name)
		if _, err := os.Stat(dest); err == nil {
			m.log.Info("Map already downloaded", "map", name)
			continue
		}
		m.log.Info("Downloading map", "map", name)
		if err := m.fetcher.Fetch(m.URL+"/maps/"+name, dest, report); err != nil {
			m.log.Error("Failed to download map", "map", name, "error", err)
		}
	}
	return nil
}

// DownloadConfigTemplates fetches and extracts the config template
// bundle, recording its checksum for the next gate check.
func (m *Manager) DownloadConfigTemplates(report ReportFunc) error {
	idx, err := m.Index()
	if err != nil {
		return err
	}

	checksumPath := filepath.Join(m.TemplatesDir(), "checksums.md5")
	local, _ := os.ReadFile(checksumPath)
	if string(local) == idx.ETSM.ConfigTemplatesMD5 {
		m.log.Info("Config templates are up to date")
		return nil
	}

	m.log.Info("Downloading config templates")
	tmp, err := os.CreateTemp("", "etsm-templates-*.tgz")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := m.fetcher.Fetch(m.URL+idx.ETSM.ConfigTemplates, tmp.Name(), report); err != nil {
		return fmt.Errorf("failed to download config templates: %w", err)
	}

	m.log.Info("Extracting config templates")
	if err := ExtractArchive(tmp.Name(), m.TemplatesDir()); err != nil {
		return err
	}
	return os.WriteFile(checksumPath, []byte(idx.ETSM.ConfigTemplatesMD5), 0644)
}

// DownloadSystemdTemplate fetches the systemd unit template.
func (m *Manager) DownloadSystemdTemplate(report ReportFunc) error {
	idx, err := m.Index()
	if err != nil {
		return err
	}

	m.log.Info("Downloading systemd template")
	return m.fetcher.Fetch(m.URL+idx.ETSM.SystemdTemplate, m.SystemdTemplatePath(), report)
}

// DownloadSources runs a full sync: paks, server and mod archives,
// config templates, systemd template, and optionally all declared maps.
// An unparseable index halts the sync; individual download failures are
// logged and do not abort sibling steps.
func (m *Manager) DownloadSources(allVersions, withMaps bool, report ReportFunc) error {
	idx, err := m.Index()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(m.ServersDir(), 0755); err != nil {
		return fmt.Errorf("failed to create sources directory: %w", err)
	}

	if err := m.DownloadPaks(report); err != nil {
		m.log.Error("Failed to download etmain paks", "error", err)
	}
	if err := m.DownloadServerSources(allVersions, report); err != nil {
		return err
	}
	if err := m.DownloadModSources(allVersions, report); err != nil {
		return err
	}
	if err := m.DownloadSystemdTemplate(report); err != nil {
		m.log.Error("Failed to download systemd template", "error", err)
	}
	if err := m.DownloadConfigTemplates(report); err != nil {
		m.log.Error("Failed to download config templates", "error", err)
	}
	if withMaps {
		m.log.Info("Downloading maps")
		if err := m.DownloadMaps(idx.ETSM.Maps, report); err != nil {
			return err
		}
	}
	return nil
}

// AvailableMaps lists the map archives present in the shared store.
func (m *Manager) AvailableMaps() ([]string, error) {
	return listWithExt(m.MapsDir(), ".pk3")
}

// SearchMaps filters the index-declared map names by substring match.
func (m *Manager) SearchMaps(term string) ([]string, error) {
	idx, err := m.Index()
	if err != nil {
		return nil, err
	}
	var matches []string
	for _, name := range idx.MapNames() {
		if strings.Contains(strings.ToLower(name), strings.ToLower(term)) {
			matches = append(matches, name)
		}
	}
	return matches, nil
}

// ListTemplates lists the downloaded config templates.
func (m *Manager) ListTemplates() ([]string, error) {
	return listWithExt(m.TemplatesDir(), ".cfg")
}

// ListMods lists mod types with at least one downloaded archive.
func (m *Manager) ListMods() ([]string, error) {
	archives, err := listWithExt(m.ModsDir(), ".tgz")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var mods []string
	for _, a := range archives {
		name := strings.SplitN(a, "-", 2)[0]
		if !seen[name] {
			seen[name] = true
			mods = append(mods, name)
		}
	}
	return mods, nil
}

// listWithExt returns base names (extension stripped) of regular files
// with the given extension in dir. A missing dir yields an empty list.
func listWithExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	return names, nil
}
