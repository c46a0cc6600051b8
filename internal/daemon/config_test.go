package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8645 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8645)
	}
	if cfg.Peers.BaseTimeout != "10s" {
		t.Errorf("Peers.BaseTimeout = %q, want %q", cfg.Peers.BaseTimeout, "10s")
	}
	if cfg.Peers.Ephemeral {
		t.Error("Peers.Ephemeral should default to false")
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Setenv("LATTICE_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != DefaultConfig().API.Port {
		t.Errorf("Port = %d, want default %d", cfg.API.Port, DefaultConfig().API.Port)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("LATTICE_HOME", home)

	raw := `
[api]
port = 9999

[peers]
ephemeral = true
base_timeout = "1m"
static = ["enode://aabb@10.0.0.1:30303"]
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(raw), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 9999 {
		t.Errorf("API.Port = %d, want 9999", cfg.API.Port)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want default preserved", cfg.API.Host)
	}
	if !cfg.Peers.Ephemeral {
		t.Error("Peers.Ephemeral = false, want true")
	}
	if cfg.Peers.BaseTimeout != "1m" {
		t.Errorf("Peers.BaseTimeout = %q, want %q", cfg.Peers.BaseTimeout, "1m")
	}
	if len(cfg.Peers.Static) != 1 {
		t.Errorf("len(Peers.Static) = %d, want 1", len(cfg.Peers.Static))
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("LATTICE_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 7777
	cfg.Peers.Static = []string{"enode://ccdd@10.0.0.2:30303"}

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.API.Port != 7777 {
		t.Errorf("Port = %d, want 7777", loaded.API.Port)
	}
	if len(loaded.Peers.Static) != 1 || loaded.Peers.Static[0] != cfg.Peers.Static[0] {
		t.Errorf("Static = %v, want %v", loaded.Peers.Static, cfg.Peers.Static)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"10s", 10 * time.Second},
		{"1m", time.Minute},
		{"", 5 * time.Second},      // fallback
		{"bogus", 5 * time.Second}, // fallback
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseDuration(tt.input, 5*time.Second)
			if got != tt.want {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStaticPeers(t *testing.T) {
	nodes, err := parseStaticPeers([]string{"enode://aabb@10.0.0.1:30303"})
	if err != nil {
		t.Fatalf("parseStaticPeers() error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("len(nodes) = %d, want 1", len(nodes))
	}
	if nodes[0].URI() != "enode://aabb@10.0.0.1:30303" {
		t.Errorf("URI() = %q, round-trip broken", nodes[0].URI())
	}

	if _, err := parseStaticPeers([]string{"not-a-uri"}); err == nil {
		t.Error("parseStaticPeers should reject malformed URIs")
	}
}

func TestNewWithConfig_Ephemeral(t *testing.T) {
	t.Setenv("LATTICE_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Peers.Ephemeral = true

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	records, err := d.Peers.Records()
	if err != nil {
		t.Fatalf("Records() error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("fresh ephemeral store has %d records, want 0", len(records))
	}
}

func TestNewWithConfig_Durable(t *testing.T) {
	home := t.TempDir()
	t.Setenv("LATTICE_HOME", home)

	d, err := NewWithConfig(DefaultConfig())
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	d.Close()

	if _, err := os.Stat(filepath.Join(home, "peers.db")); err != nil {
		t.Errorf("peers.db not created: %v", err)
	}
}
