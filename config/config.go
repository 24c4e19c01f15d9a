// Package config loads extraction profiles and run settings from YAML.
//
// A profile is the calibration of one document type: layout tolerances
// (with per-page replacements), palettes, row markers and column schemas.
// Built-in profiles for every registered policy are embedded; a user file
// only lists what it changes:
//
//	profiles:
//	  preventive:
//	    params:
//	      position_tol: 4
//	    pages:
//	      - pages: [1]
//	        params: {position_tol: 2.5}
//	  siemens:
//	    base: mv
//	    palette:
//	      - {name: section, color: "#b3ffb3"}
//	      - {name: data, color: white}
//	output:
//	  path: result.xlsx
//	  sheet: Data
//	  cell: B4
//
// Environment variables (${VAR} or $VAR) are expanded before parsing.
//
// Usage:
//
//	cfg, err := config.Load("gridmatch.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	policy, err := cfg.NewPolicy("preventive")
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/gridmatch/match"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is a complete run configuration.
type Config struct {
	// Profiles by document type tag
	Profiles map[string]*Profile `yaml:"-"`

	Output OutputConfig `yaml:"output"`
	OCR    OCRConfig    `yaml:"ocr"`
	Log    LogConfig    `yaml:"log"`

	// Workers is the number of documents processed concurrently
	Workers int `yaml:"workers"`

	// ErrorDir receives copies of documents that failed
	ErrorDir string `yaml:"error_dir"`

	// ContinueOnMismatch records page mismatches as warnings instead of
	// failing the document
	ContinueOnMismatch bool `yaml:"continue_on_mismatch"`
}

// OutputConfig says where flattened rows go.
type OutputConfig struct {
	Path     string `yaml:"path"`
	Format   string `yaml:"format"`
	Sheet    string `yaml:"sheet"`
	Cell     string `yaml:"cell"`
	Template string `yaml:"template"`
	NoHeader bool   `yaml:"no_header"`
	// Split writes one output file per document into Path, a directory
	Split bool `yaml:"split"`
}

// OCRConfig configures figure OCR.
type OCRConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	cfg := &Config{Profiles: make(map[string]*Profile)}
	for _, name := range match.ListPolicies() {
		s, err := match.PolicyDefaults(name)
		if err != nil {
			return nil, err
		}
		p, err := FromSettings(name, s)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		cfg.Profiles[name] = p
	}
	if err := cfg.merge(defaultsYAML); err != nil {
		return nil, fmt.Errorf("built-in defaults: %w", err)
	}
	return cfg, nil
}

// Load reads a configuration file over the built-in defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.merge([]byte(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Parse reads configuration data over the built-in defaults.
func Parse(data []byte) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if err := cfg.merge(data); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// merge decodes data over cfg. Profiles are merged field by field: a
// profile starts as a copy of its base and the document overrides the
// fields it names.
func (c *Config) merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}

	var doc struct {
		Profiles map[string]yaml.Node `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	// Profiles extending other new profiles need their base merged first.
	names := make([]string, 0, len(doc.Profiles))
	for name := range doc.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	merged := make(map[string]bool, len(names))
	pending := names
	for len(pending) > 0 {
		var deferred []string
		for _, name := range pending {
			node := doc.Profiles[name]
			ok, err := c.mergeProfile(name, &node, doc.Profiles, merged)
			if err != nil {
				return fmt.Errorf("profile %s: %w", name, err)
			}
			if !ok {
				deferred = append(deferred, name)
				continue
			}
			merged[name] = true
		}
		if len(deferred) == len(pending) {
			return fmt.Errorf("profiles %v: unknown or circular base", deferred)
		}
		pending = deferred
	}
	return nil
}

// mergeProfile decodes node over the profile's base. It reports false when
// the base is defined in the same document and not merged yet.
func (c *Config) mergeProfile(name string, node *yaml.Node, doc map[string]yaml.Node, merged map[string]bool) (bool, error) {
	var head struct {
		Base string `yaml:"base"`
	}
	if err := node.Decode(&head); err != nil {
		return false, err
	}

	base := head.Base
	if base == "" {
		base = name
		if _, ok := c.Profiles[name]; !ok {
			base = match.GenericName
		}
	}
	if _, inDoc := doc[base]; inDoc && base != name && !merged[base] {
		return false, nil
	}

	from, ok := c.Profiles[base]
	if !ok {
		return false, fmt.Errorf("unknown base %q", base)
	}

	p := from.clone()
	if err := node.Decode(p); err != nil {
		return false, err
	}
	p.Base = base
	c.Profiles[name] = p
	return true, nil
}

// Profile returns the named profile.
func (c *Config) Profile(name string) (*Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", name)
	}
	return p, nil
}

// NewPolicy builds the matching policy of the named profile.
func (c *Config) NewPolicy(name string) (match.Policy, error) {
	p, err := c.Profile(name)
	if err != nil {
		return nil, err
	}
	policy, err := p.NewPolicy()
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", name, err)
	}
	return policy, nil
}

// Names returns the profile names, sorted.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
