package metrics

import "github.com/sunledger/sunledger/core/factory"

// Config defines settings for analysis metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr enables the /metrics HTTP server when non-empty.
	PrometheusAddr string `json:"prometheus_addr"`
}
