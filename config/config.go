// Package config loads the application configuration from YAML or JSON with
// optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/sunledger/sunledger/core/aggregate"
	"github.com/sunledger/sunledger/core/envelope"
	"github.com/sunledger/sunledger/core/loss"
	"github.com/sunledger/sunledger/core/metrics"
	"github.com/sunledger/sunledger/infra/gmp"
	"github.com/sunledger/sunledger/infra/mqtt"
)

// Config is the root application configuration.
type Config struct {
	Site      SiteConfig       `json:"site"`
	Store     StoreConfig      `json:"store"`
	GMP       gmp.Config       `json:"gmp"`
	Envelope  envelope.Config  `json:"envelope"`
	Loss      loss.Config      `json:"loss"`
	Aggregate aggregate.Config `json:"aggregate"`
	Metrics   metrics.Config   `json:"metrics"`
	MQTT      MQTTConfig       `json:"mqtt"`
}

// MQTTConfig wraps the publisher settings behind an enable switch; the
// report feed is optional.
type MQTTConfig struct {
	Enabled   bool        `json:"enabled"`
	Publisher mqtt.Config `json:"publisher"`
}

// Load reads, defaults, and validates the configuration at path.
// Environment variables prefixed SL_ override file values, with "__"
// separating nesting levels (SL_SITE__LATITUDE_DEG=44.5).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("SL_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sl_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}

	cfg.Site.SetDefaults()
	cfg.Store.SetDefaults()
	cfg.GMP.SetDefaults()
	cfg.Envelope.SetDefaults()
	cfg.Loss.SetDefaults()
	cfg.Aggregate.SetDefaults()
	if cfg.MQTT.Enabled {
		cfg.MQTT.Publisher.SetDefaults()
	}

	if err := cfg.Site.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Envelope.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Loss.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Aggregate.Validate(); err != nil {
		return nil, err
	}
	if cfg.MQTT.Enabled {
		if err := cfg.MQTT.Publisher.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
