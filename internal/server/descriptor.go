package server

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Descriptor is a declarative description of a complete server: which
// sources to install from, which configs to create and activate, and
// which maps to enable. `etsm server create -f` consumes one.
type Descriptor struct {
	ServerName string         `yaml:"server_name" validate:"required,server_name"`
	SourcesURL string         `yaml:"sources_url" validate:"omitempty,url"`
	ServerIP   string         `yaml:"server_ip"   validate:"omitempty,ip"`
	ServerPort int            `yaml:"server_port" validate:"omitempty,min=1,max=65535"`
	Mod        *DescriptorMod `yaml:"mod"         validate:"omitempty"`

	Configs        []DescriptorConfig `yaml:"configs"         validate:"dive"`
	Maps           []string           `yaml:"maps"`
	BuildMapvote   bool               `yaml:"build_mapvote"`
	StartupConfigs []string           `yaml:"startup_configs" validate:"dive,config_name"`
}

// DescriptorMod selects the mod to install. Version empty means
// latest.
type DescriptorMod struct {
	Name    string `yaml:"name"    validate:"required"`
	Version string `yaml:"version"`
}

// DescriptorConfig describes one config file to create. From names a
// template from the sources; empty means start from a generated
// header. Configs are activated unless activate is explicitly false.
type DescriptorConfig struct {
	Name     string            `yaml:"name"     validate:"required,config_name"`
	From     string            `yaml:"from"     validate:"omitempty,config_name"`
	CVars    map[string]string `yaml:"cvars"`
	Bots     map[string]string `yaml:"bots"`
	Activate *bool             `yaml:"activate"`
}

// Activated reports whether the config should be activated after
// creation, defaulting to true when the descriptor leaves it unset.
func (c DescriptorConfig) Activated() bool {
	return c.Activate == nil || *c.Activate
}

// newDescriptorValidator builds a validator with the name rules the
// rest of the package enforces, so a bad descriptor fails before any
// filesystem work starts.
func newDescriptorValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("server_name", func(fl validator.FieldLevel) bool {
		return serverNameRe.MatchString(fl.Field().String())
	}); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation("config_name", func(fl validator.FieldLevel) bool {
		return configNameRe.MatchString(fl.Field().String())
	}); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadDescriptor reads and validates a descriptor file.
func LoadDescriptor(path string) (*Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}
	var d Descriptor
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parsing descriptor: %w", err)
	}
	v, err := newDescriptorValidator()
	if err != nil {
		return nil, err
	}
	if err := v.Struct(&d); err != nil {
		return nil, fmt.Errorf("invalid descriptor: %w", err)
	}
	return &d, nil
}
