// Package config loads client configuration from a YAML file in the XDG
// config directory, with environment variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/lacdr/mihcsme-go/pkg/mihcsme"
)

// Environment variables recognized by Load. The password is intentionally
// env-or-flag only and never read from the config file.
const (
	EnvServer    = "MIHCSME_SERVER"
	EnvServerID  = "MIHCSME_SERVER_ID"
	EnvUsername  = "MIHCSME_USERNAME"
	EnvPassword  = "MIHCSME_PASSWORD"
	EnvNamespace = "MIHCSME_NAMESPACE"
)

// Reader abstracts environment variable access so tests can inject values.
type Reader interface {
	Getenv(key string) string
}

// OSReader implements Reader using the process environment.
type OSReader struct{}

// Getenv returns the value of the environment variable named by the key.
func (OSReader) Getenv(key string) string {
	return os.Getenv(key)
}

// Config holds connection defaults for the OMERO.web server.
type Config struct {
	// Server is the OMERO.web base URL, e.g. "https://omero.example.org".
	Server string `yaml:"server"`
	// ServerID is the OMERO server index configured in OMERO.web.
	ServerID int `yaml:"server_id"`
	// Username is the OMERO account name.
	Username string `yaml:"username"`
	// Namespace is the base annotation namespace.
	Namespace string `yaml:"namespace"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		ServerID:  1,
		Namespace: mihcsme.DefaultNamespace,
	}
}

// Path returns the config file location under the XDG config directory
// (usually ~/.config/mihcsme/config.yaml).
func Path() (string, error) {
	return xdg.ConfigFile("mihcsme/config.yaml")
}

// Load reads the config file at the XDG location, then applies environment
// overrides. A missing file is not an error; defaults are used.
func Load(env Reader) (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path, env)
}

// LoadFile reads the config from an explicit path, then applies environment
// overrides from env. A missing file yields the defaults.
func LoadFile(path string, env Reader) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv(env)
	if cfg.ServerID <= 0 {
		cfg.ServerID = 1
	}
	if cfg.Namespace == "" {
		cfg.Namespace = mihcsme.DefaultNamespace
	}
	return cfg, nil
}

// Password returns the password from the environment, or "" when unset.
func Password(env Reader) string {
	return env.Getenv(EnvPassword)
}

func (c *Config) applyEnv(env Reader) {
	if env == nil {
		return
	}
	if v := env.Getenv(EnvServer); v != "" {
		c.Server = v
	}
	if v := env.Getenv(EnvServerID); v != "" {
		var id int
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil && id > 0 {
			c.ServerID = id
		}
	}
	if v := env.Getenv(EnvUsername); v != "" {
		c.Username = v
	}
	if v := env.Getenv(EnvNamespace); v != "" {
		c.Namespace = v
	}
}
