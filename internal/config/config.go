// Package config loads connection settings from a TOML or YAML file.
package config

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/frankli0324/go-httpconn/internal"
	"github.com/frankli0324/go-httpconn/internal/dialer"
	"github.com/frankli0324/go-httpconn/internal/trust"
	"github.com/frankli0324/go-httpconn/utils/logutil"
)

// Config mirrors the file layout, e.g. in TOML:
//
//	timeout = "10s"
//	user_agent = "probe/1"
//
//	[dns]
//	server = "1.1.1.1:53"
//	hosts = { "example.com" = "127.0.0.1" }
//
//	[tls]
//	ca_file = "ca.pem"
//	min_version = "1.3"
type Config struct {
	Timeout         time.Duration     `toml:"timeout" yaml:"timeout"`
	ShutdownTimeout time.Duration     `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	UserAgent       string            `toml:"user_agent" yaml:"user_agent"`
	MaxBodySize     int64             `toml:"max_body_size" yaml:"max_body_size"`
	Headers         map[string]string `toml:"headers" yaml:"headers"`

	DNS DNS `toml:"dns" yaml:"dns"`
	TLS TLS `toml:"tls" yaml:"tls"`
}

type DNS struct {
	Server  string            `toml:"server" yaml:"server"`
	Network string            `toml:"network" yaml:"network"`
	Hosts   map[string]string `toml:"hosts" yaml:"hosts"`
}

type TLS struct {
	CAFile     string `toml:"ca_file" yaml:"ca_file"`
	CADir      string `toml:"ca_dir" yaml:"ca_dir"`
	NoSystem   bool   `toml:"no_system_roots" yaml:"no_system_roots"`
	MinVersion string `toml:"min_version" yaml:"min_version"` // "1.2" or "1.3"
}

var tlsVersions = map[string]uint16{
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

// Load reads path, the format follows its extension: .toml, .yaml or .yml.
// Unknown TOML keys are logged, not rejected.
func Load(path string, logger *slog.Logger) (*Config, error) {
	logger = logutil.NoopIfNil(logger)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			logger.Warn("config file contains undecoded keys", "path", path, "keys", keys)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Timeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	switch c.DNS.Network {
	case "", "ip", "ip4", "ip6":
	default:
		return fmt.Errorf("dns network must be one of ip, ip4, ip6, got %q", c.DNS.Network)
	}
	if c.TLS.MinVersion != "" {
		if _, ok := tlsVersions[c.TLS.MinVersion]; !ok {
			return fmt.Errorf("tls min_version must be 1.2 or 1.3, got %q", c.TLS.MinVersion)
		}
	}
	return nil
}

// Options turns the file into connection options. Fields left out of the
// file keep the connection defaults.
func (c *Config) Options() []internal.Option {
	var opts []internal.Option
	if c.Timeout > 0 {
		opts = append(opts, internal.WithTimeout(c.Timeout))
	}
	if c.ShutdownTimeout > 0 {
		opts = append(opts, internal.WithShutdownTimeout(c.ShutdownTimeout))
	}
	if c.UserAgent != "" {
		opts = append(opts, internal.WithUserAgent(c.UserAgent))
	}
	if c.MaxBodySize > 0 {
		opts = append(opts, internal.WithMaxBodySize(c.MaxBodySize))
	}
	if c.DNS.Server != "" || c.DNS.Network != "" || len(c.DNS.Hosts) > 0 {
		opts = append(opts, internal.WithResolveConfig(&dialer.ResolveConfig{
			CustomDNSServer: c.DNS.Server,
			Network:         c.DNS.Network,
			StaticHosts:     c.DNS.Hosts,
		}))
	}
	if t := c.Trust(); t != nil {
		opts = append(opts, internal.WithTrust(t))
	}
	if v, ok := tlsVersions[c.TLS.MinVersion]; ok {
		opts = append(opts, internal.WithTLSMinVersion(v))
	}
	return opts
}

// Trust is nil when the file leaves the system roots alone.
func (c *Config) Trust() *trust.Config {
	if c.TLS.CAFile == "" && c.TLS.CADir == "" && !c.TLS.NoSystem {
		return nil
	}
	return &trust.Config{CAFile: c.TLS.CAFile, CADir: c.TLS.CADir, NoSystem: c.TLS.NoSystem}
}

// HeaderNames lists the configured header names in a stable order.
func (c *Config) HeaderNames() []string {
	names := make([]string, 0, len(c.Headers))
	for k := range c.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
