package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazz-dev/stackmon/internal/probe"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// MonitorConfig holds periodic monitoring settings.
type MonitorConfig struct {
	Interval time.Duration
}

// Config is the root application configuration.
type Config struct {
	Server  ServerConfig
	Monitor MonitorConfig
	Checks  []probe.Request
}

// Load reads and parses the config file at path. Check entries are parsed
// leniently: a malformed entry (missing port, missing url, unknown type)
// is kept as-is and surfaces later as a synthetic error result, so one bad
// entry never aborts the rest.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	type rawCheck struct {
		Name           string `yaml:"name"`
		Type           string `yaml:"type"`
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		URL            string `yaml:"url"`
		Timeout        string `yaml:"timeout"`
		ExpectedStatus int    `yaml:"expected_status"`
		Method         string `yaml:"method"`
	}
	type rawConfig struct {
		Server  ServerConfig `yaml:"server"`
		Monitor struct {
			Interval string `yaml:"interval"`
		} `yaml:"monitor"`
		Checks []rawCheck `yaml:"checks"`
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(raw.Checks) == 0 {
		return nil, fmt.Errorf("at least one check must be configured")
	}

	cfg := &Config{Server: raw.Server}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}

	if raw.Monitor.Interval == "" {
		cfg.Monitor.Interval = 30 * time.Second
	} else {
		d, err := time.ParseDuration(raw.Monitor.Interval)
		if err != nil {
			return nil, fmt.Errorf("invalid monitor interval %q: %w", raw.Monitor.Interval, err)
		}
		cfg.Monitor.Interval = d
	}

	for i, rc := range raw.Checks {
		req := probe.Request{
			Kind:           probe.Kind(rc.Type),
			Name:           rc.Name,
			Host:           rc.Host,
			Port:           rc.Port,
			URL:            rc.URL,
			ExpectedStatus: rc.ExpectedStatus,
			Method:         rc.Method,
		}
		if rc.Timeout != "" {
			d, err := time.ParseDuration(rc.Timeout)
			if err != nil {
				return nil, fmt.Errorf("check[%d]: invalid timeout %q: %w", i, rc.Timeout, err)
			}
			req.Timeout = d
		}
		cfg.Checks = append(cfg.Checks, req)
	}

	return cfg, nil
}
