package sources

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrBadIndex signals an unparseable or incomplete remote index. The
// index is never partially trusted: any sync halts on this error.
var ErrBadIndex = errors.New("invalid remote index")

// Index is the parsed index.yaml published by the sources server.
type Index struct {
	ETSM IndexRoot `yaml:"etsm"`
}

// IndexRoot holds all artifact entries of the manifest.
type IndexRoot struct {
	Paks               string                 `yaml:"paks"`
	PaksMD5            string                 `yaml:"paks_md5"`
	ConfigTemplates    string                 `yaml:"config_templates"`
	ConfigTemplatesMD5 string                 `yaml:"config_templates_md5"`
	SystemdTemplate    string                 `yaml:"systemd_template"`
	Maps               []string               `yaml:"maps"`
	Servers            map[string]ServerEntry `yaml:"servers"`
	Mods               map[string]ModEntry    `yaml:"mods"`
}

// ServerEntry describes the published versions of one server type.
type ServerEntry struct {
	Latest   string                   `yaml:"latest"`
	Versions map[string]ServerVersion `yaml:"versions"`
}

// ServerVersion is a single downloadable server archive.
type ServerVersion struct {
	Archive string `yaml:"server_archive"`
	MD5     string `yaml:"server_archive_md5"`
}

// ModEntry describes the published versions of one mod type.
type ModEntry struct {
	Latest   string                `yaml:"latest"`
	Versions map[string]ModVersion `yaml:"versions"`
}

// ModVersion is a single downloadable mod archive.
type ModVersion struct {
	Archive string `yaml:"mod_archive"`
	MD5     string `yaml:"mod_archive_md5"`
}

// ParseIndex decodes and eagerly validates an index document.
func ParseIndex(data []byte) (*Index, error) {
	var idx Index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadIndex, err)
	}
	if err := idx.validate(); err != nil {
		return nil, err
	}
	return &idx, nil
}

func (i *Index) validate() error {
	r := i.ETSM
	if r.Paks == "" || r.PaksMD5 == "" {
		return fmt.Errorf("%w: missing paks entry", ErrBadIndex)
	}
	if r.ConfigTemplates == "" || r.ConfigTemplatesMD5 == "" {
		return fmt.Errorf("%w: missing config_templates entry", ErrBadIndex)
	}
	if r.SystemdTemplate == "" {
		return fmt.Errorf("%w: missing systemd_template entry", ErrBadIndex)
	}
	if len(r.Servers) == 0 {
		return fmt.Errorf("%w: no server types declared", ErrBadIndex)
	}
	for name, entry := range r.Servers {
		if entry.Latest == "" {
			return fmt.Errorf("%w: server %s has no latest version", ErrBadIndex, name)
		}
		if _, ok := entry.Versions[entry.Latest]; !ok {
			return fmt.Errorf("%w: server %s latest version %s not in versions", ErrBadIndex, name, entry.Latest)
		}
		for version, v := range entry.Versions {
			if v.Archive == "" || v.MD5 == "" {
				return fmt.Errorf("%w: server %s version %s missing archive or checksum", ErrBadIndex, name, version)
			}
		}
	}
	for name, entry := range r.Mods {
		if entry.Latest == "" {
			return fmt.Errorf("%w: mod %s has no latest version", ErrBadIndex, name)
		}
		if _, ok := entry.Versions[entry.Latest]; !ok {
			return fmt.Errorf("%w: mod %s latest version %s not in versions", ErrBadIndex, name, entry.Latest)
		}
		for version, v := range entry.Versions {
			if v.Archive == "" || v.MD5 == "" {
				return fmt.Errorf("%w: mod %s version %s missing archive or checksum", ErrBadIndex, name, version)
			}
		}
	}
	return nil
}

// LatestServerVersion returns the latest version label for a server type.
func (i *Index) LatestServerVersion(serverType string) (string, bool) {
	entry, ok := i.ETSM.Servers[serverType]
	if !ok {
		return "", false
	}
	return entry.Latest, true
}

// LatestModVersion returns the latest version label for a mod type.
func (i *Index) LatestModVersion(modType string) (string, bool) {
	entry, ok := i.ETSM.Mods[modType]
	if !ok {
		return "", false
	}
	return entry.Latest, true
}

// MapNames returns the declared map archive names, sorted.
func (i *Index) MapNames() []string {
	names := append([]string(nil), i.ETSM.Maps...)
	sort.Strings(names)
	return names
}

// FetchIndex GETs <sourcesURL>/index.yaml and parses it.
func FetchIndex(client *http.Client, sourcesURL string) (*Index, error) {
	resp, err := client.Get(sourcesURL + "/index.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to get sources index: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get sources index, status: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources index: %w", err)
	}
	return ParseIndex(data)
}
