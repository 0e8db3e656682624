// Package config loads aqua-events settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
//
// The file may redefine built-in profiles or add new ones:
//
//	mongo:
//	  uri: mongodb://localhost:27017/aquaevents_db
//	run:
//	  profile: full
//	  grace: 10s
//	profiles:
//	  strict-contact:
//	    description: contact checks only
//	    rules: [no_contact_info, generic_calendar_contact_only]
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "AQUA_EVENTS_CONFIG"
	mongoURIEnv      = "MONGODB_URI"
	mongoURILegacy   = "DATABASE_URL_MONGO"
	mongoDatabaseEnv = "MONGODB_DATABASE"

	// DefaultProfile is used when no profile is selected.
	DefaultProfile = "full"

	// DefaultGrace is the pause between confirmation and the first write.
	DefaultGrace = 5 * time.Second

	// DefaultSamples is the number of report samples per bucket.
	DefaultSamples = 5
)

var (
	// ErrMissingURI is returned when a command needs MongoDB and no URI is configured.
	ErrMissingURI = errors.New("mongodb uri not configured (set MONGODB_URI or mongo.uri)")

	// ErrUnknownProfile is returned for a profile name that is neither built in nor configured.
	ErrUnknownProfile = errors.New("unknown profile")
)

// Config holds every setting of a run
type Config struct {
	Mongo    MongoConfig        `yaml:"mongo"`
	Run      RunConfig          `yaml:"run"`
	Profiles map[string]Profile `yaml:"profiles"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// MongoConfig describes the events collection.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// RunConfig holds defaults for the clean command. Flags override them.
type RunConfig struct {
	Profile     string        `yaml:"profile"`
	Grace       time.Duration `yaml:"grace"`
	Samples     int           `yaml:"samples"`
	Archive     string        `yaml:"archive"`
	MetricsFile string        `yaml:"metricsFile"`
	LogLevel    string        `yaml:"logLevel"`
}

// Load reads the YAML file at path (or $AQUA_EVENTS_CONFIG when path is empty)
// over the defaults, then applies environment overrides. Without a path only
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		fileCfg, err := parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
		cfg.Path = path
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// fileConfig is a parsed config file. graceSet tells an explicit "grace: 0s"
// apart from an absent key.
type fileConfig struct {
	Config
	graceSet bool
}

func parse(raw []byte) (fileConfig, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, err
	}

	var keys struct {
		Run struct {
			Grace *time.Duration `yaml:"grace"`
		} `yaml:"run"`
	}
	if err := yaml.Unmarshal(raw, &keys); err != nil {
		return fileConfig{}, err
	}
	return fileConfig{Config: cfg, graceSet: keys.Run.Grace != nil}, nil
}

// Validate checks the selected profile and every profile definition.
func (c *Config) Validate() error {
	for _, name := range c.ProfileNames() {
		if err := c.Profiles[name].validate(); err != nil {
			return fmt.Errorf("profile %s: %w", name, err)
		}
	}
	if _, err := c.Profile(c.Run.Profile); err != nil {
		return err
	}
	if c.Run.Grace < 0 {
		return fmt.Errorf("run.grace must not be negative: %s", c.Run.Grace)
	}
	return nil
}

// RequireMongo returns ErrMissingURI when no MongoDB URI is configured.
func (c *Config) RequireMongo() error {
	if c.Mongo.URI == "" {
		return ErrMissingURI
	}
	return nil
}

// Profile returns the named profile; an empty name selects the run default.
func (c *Config) Profile(name string) (Profile, error) {
	if name == "" {
		name = c.Run.Profile
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownProfile, name, c.ProfileNames())
	}
	p.Name = name
	return p, nil
}

// ProfileNames returns the names of all profiles, sorted.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(mongoURIEnv); v != "" {
		c.Mongo.URI = v
	} else if v := os.Getenv(mongoURILegacy); v != "" && c.Mongo.URI == "" {
		c.Mongo.URI = v
	}

	if v := os.Getenv(mongoDatabaseEnv); v != "" {
		c.Mongo.Database = v
	}
}

func mergeConfig(base Config, override fileConfig) Config {
	if override.Mongo.URI != "" {
		base.Mongo.URI = override.Mongo.URI
	}
	if override.Mongo.Database != "" {
		base.Mongo.Database = override.Mongo.Database
	}
	if override.Mongo.Collection != "" {
		base.Mongo.Collection = override.Mongo.Collection
	}

	if override.Run.Profile != "" {
		base.Run.Profile = override.Run.Profile
	}
	if override.graceSet {
		base.Run.Grace = override.Run.Grace
	}
	if override.Run.Samples != 0 {
		base.Run.Samples = override.Run.Samples
	}
	if override.Run.Archive != "" {
		base.Run.Archive = override.Run.Archive
	}
	if override.Run.MetricsFile != "" {
		base.Run.MetricsFile = override.Run.MetricsFile
	}
	if override.Run.LogLevel != "" {
		base.Run.LogLevel = override.Run.LogLevel
	}

	for name, p := range override.Profiles {
		base.Profiles[name] = p
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Mongo: MongoConfig{Collection: "events"},
		Run: RunConfig{
			Profile:  DefaultProfile,
			Grace:    DefaultGrace,
			Samples:  DefaultSamples,
			LogLevel: "info",
		},
		Profiles: builtinProfiles(),
	}
}
