// Package daemon manages the Lattice daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	Node      NodeConfig      `toml:"node"`
	API       APIConfig       `toml:"api"`
	Peers     PeersConfig     `toml:"peers"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// NodeConfig identifies this node.
type NodeConfig struct {
	ID      string `toml:"id"`
	DataDir string `toml:"data_dir"`
}

// APIConfig controls the admin HTTP server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PeersConfig controls the connection manager and its reputation store.
type PeersConfig struct {
	Ephemeral      bool     `toml:"ephemeral"` // in-memory store, nothing survives restart
	BaseTimeout    string   `toml:"base_timeout"`
	DialTimeout    string   `toml:"dial_timeout"`
	RedialInterval string   `toml:"redial_interval"`
	Static         []string `toml:"static"` // enode URIs dialed on every redial tick
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8645,
		},
		Peers: PeersConfig{
			BaseTimeout:    "10s",
			DialTimeout:    "5s",
			RedialInterval: "30s",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads config from ~/.lattice/config.toml, falling back to
// defaults when no file exists yet.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(latticeHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.lattice/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(latticeHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// latticeHome returns the Lattice data directory.
func latticeHome() string {
	if env := os.Getenv("LATTICE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lattice")
}

// LatticeHome is exported for use by other packages.
func LatticeHome() string {
	return latticeHome()
}
