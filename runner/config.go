package runner

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	permrun "github.com/goliatone/go-permrun"

	"github.com/goliatone/go-permrun/internal/confload"
)

// Config replaces the built-in geometry catalog and seeds extra define
// overrides from a YAML file.
type Config struct {
	// Geometries replaces the catalog when non-empty. Order matters: the
	// global permutation index decomposes against it.
	Geometries []GeometryConfig `yaml:"geometries"`

	// Defaults are name=value overrides weaker than any -D flag.
	Defaults map[string]int64 `yaml:"defaults"`
}

// GeometryConfig is one catalog entry in a config file.
type GeometryConfig struct {
	Name    string           `yaml:"name"`
	Defines map[string]int64 `yaml:"defines"`
}

var configDecoder = confload.NewDecoder(
	confload.WithKnownFields[Config](),
	confload.WithPostHook[Config](func(ctx confload.Context, cfg *Config) error {
		for _, geometry := range cfg.Geometries {
			if geometry.Name == "" {
				return errors.Errorf("geometry with no name in %s", ctx.Source)
			}
			for name := range geometry.Defines {
				if _, ok := permrun.LookupPredefine(name); !ok {
					return errors.Errorf("geometry %q names unknown predefine %q",
						geometry.Name, name)
				}
			}
		}
		for name := range cfg.Defaults {
			if _, ok := permrun.LookupPredefine(name); !ok {
				return errors.Errorf("defaults name unknown predefine %q", name)
			}
		}
		return nil
	}),
)

// LoadConfig reads and validates a runner config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "could not read config %s", path)
	}
	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return Config{}, errors.Wrapf(err, "could not parse config %s", path)
	}
	cfg, err := configDecoder.Decode(confload.Context{Source: path}, payload)
	if err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// Catalog converts the configured geometries into catalog entries. Defines
// are emitted in predefine-key order so catalogs decode deterministically
// regardless of YAML map ordering.
func (c Config) Catalog() []permrun.Geometry {
	if len(c.Geometries) == 0 {
		return nil
	}
	catalog := make([]permrun.Geometry, 0, len(c.Geometries))
	for _, geometry := range c.Geometries {
		entry := permrun.Geometry{Name: geometry.Name}
		for key := 0; key < permrun.PredefineCount(); key++ {
			name := permrun.PredefineKey(key).String()
			if value, ok := geometry.Defines[name]; ok {
				entry.Defines = append(entry.Defines, permrun.GeometryDefine{
					Key:   permrun.PredefineKey(key),
					Value: permrun.Value(value),
				})
			}
		}
		catalog = append(catalog, entry)
	}
	return catalog
}

// Overrides converts the configured defaults into override pairs, ordered by
// predefine key so later CLI overrides can shadow them deterministically.
func (c Config) Overrides() []permrun.Override {
	if len(c.Defaults) == 0 {
		return nil
	}
	overrides := make([]permrun.Override, 0, len(c.Defaults))
	for key := 0; key < permrun.PredefineCount(); key++ {
		name := permrun.PredefineKey(key).String()
		if value, ok := c.Defaults[name]; ok {
			overrides = append(overrides, permrun.Override{
				Name:  name,
				Value: permrun.Value(value),
			})
		}
	}
	return overrides
}
