package config

import (
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-wide configuration settings.
type ServerConfig struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Connections ConnectionsConfig `yaml:"connections"`
	Render      RenderConfig      `yaml:"render"`
	Noise       NoiseConfig       `yaml:"noise"`
	Journal     JournalConfig     `yaml:"journal"`
}

// HTTPConfig holds listener and transport settings.
type HTTPConfig struct {
	Address string `yaml:"address"`

	// ClientDir is the directory served under /client/ and for the index page.
	ClientDir string `yaml:"client_dir"`

	// AllowOrigin is sent as Access-Control-Allow-Origin on every response.
	// Empty disables the header.
	AllowOrigin string `yaml:"allow_origin"`

	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`

	// MaxBodyBytes caps the world creation payload. A longer body is
	// ignored as if malformed. 0 means unlimited.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// ConnectionsConfig holds in-flight request limits.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent requests from a single IP address.
	// 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum concurrent requests across all clients.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`

	// TrustedProxies lists proxy addresses or CIDR ranges whose
	// X-Forwarded-For and X-Real-IP headers are believed. When empty the
	// socket address is always the client.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// TrustedPrefixes parses TrustedProxies. A bare address becomes a
// single-host prefix.
func (c ConnectionsConfig) TrustedPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("connections.trusted_proxies %q: %w", entry, err)
			}
			if p.Addr().Is4In6() && p.Bits() >= 96 {
				p = netip.PrefixFrom(p.Addr().Unmap(), p.Bits()-96)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("connections.trusted_proxies %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// RenderConfig controls tile rendering.
type RenderConfig struct {
	// Workers is the number of goroutines rendering rows of one tile.
	Workers int `yaml:"workers"`

	// MaxConcurrent caps tiles rendered at the same time across requests.
	MaxConcurrent int64 `yaml:"max_concurrent"`

	// Format is the tile encoding: "png" or "tiff".
	Format string `yaml:"format"`

	// MaxOctaves bounds the per-pixel work at extreme zoom levels. Past 53
	// octaves every amplitude is below 2^-53, so together they move a height
	// by less than 2^-52.
	MaxOctaves int `yaml:"max_octaves"`
}

// NoiseConfig selects the coherent noise field behind every tile.
type NoiseConfig struct {
	Kind string `yaml:"kind"` // perlin or opensimplex
	Seed int64  `yaml:"seed"`
}

// JournalConfig controls the append-only log of created worlds.
type JournalConfig struct {
	Enabled    bool           `yaml:"enabled"`
	Driver     string         `yaml:"driver"` // sqlite or postgres
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings for the journal.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DefaultConfig returns the stock settings:
// port 8080, permissive CORS, PNG tiles from Perlin noise.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		HTTP: HTTPConfig{
			Address:       ":8080",
			ClientDir:     "client",
			AllowOrigin:   "*",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  30 * time.Second,
			IdleTimeout:   60 * time.Second,
			ShutdownGrace: 10 * time.Second,
			MaxBodyBytes:  64 << 10,
		},
		Connections: ConnectionsConfig{
			MaxPerIP: 32,
			MaxTotal: 512,
		},
		Render: RenderConfig{
			Workers:       4,
			MaxConcurrent: 16,
			Format:        "png",
			MaxOctaves:    53,
		},
		Noise: NoiseConfig{
			Kind: "perlin",
			Seed: 0,
		},
		Journal: JournalConfig{
			Enabled:    false,
			Driver:     "sqlite",
			SQLitePath: "data/worlds.db",
			Postgres: PostgresConfig{
				Host:            "localhost",
				Port:            5432,
				SSLMode:         "disable",
				MaxOpenConns:    10,
				MaxIdleConns:    2,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
	}
}

// LoadConfig loads server configuration from a YAML file.
// If the file doesn't exist, returns default config. If it can't be parsed,
// returns default config and the error.
func LoadConfig(path string) (*ServerConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *ServerConfig) Validate() error {
	switch strings.ToLower(c.Render.Format) {
	case "png", "tiff":
	default:
		return fmt.Errorf("render.format %q: want png or tiff", c.Render.Format)
	}
	switch strings.ToLower(c.Noise.Kind) {
	case "perlin", "opensimplex":
	default:
		return fmt.Errorf("noise.kind %q: want perlin or opensimplex", c.Noise.Kind)
	}
	switch c.Journal.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("journal.driver %q: want sqlite or postgres", c.Journal.Driver)
	}
	if c.Render.Workers < 1 {
		return fmt.Errorf("render.workers must be at least 1, got %d", c.Render.Workers)
	}
	if c.Render.MaxConcurrent < 1 {
		return fmt.Errorf("render.max_concurrent must be at least 1, got %d", c.Render.MaxConcurrent)
	}
	if _, err := c.Connections.TrustedPrefixes(); err != nil {
		return err
	}
	if c.Render.MaxOctaves < 0 {
		return fmt.Errorf("render.max_octaves must not be negative, got %d", c.Render.MaxOctaves)
	}
	return nil
}

// DSN builds a lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}
