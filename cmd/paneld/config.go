package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/luisceladatrigo/hw-mockup/internal/panel"
)

// paneld config.toml key mapping to panel runtime settings.
type fileConfig struct {
	Addr          string   `toml:"addr"`
	TopologyPath  string   `toml:"topology_path"`
	CallTimeout   string   `toml:"call_timeout"`
	CallTimeoutMS int64    `toml:"call_timeout_ms"`
	CORSOrigins   []string `toml:"cors_origins"`
}

// paneld loader for TOML config with default overlay.
func loadServiceConfig(path string) (panel.ServiceConfig, error) {
	cfg := panel.DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return panel.ServiceConfig{}, fmt.Errorf("load panel config: %w", err)
	}

	if meta.IsDefined("addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("topology_path") {
		cfg.TopologyPath = strings.TrimSpace(raw.TopologyPath)
	}
	if meta.IsDefined("call_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.CallTimeout))
		if err != nil {
			return panel.ServiceConfig{}, fmt.Errorf("parse call_timeout: %w", err)
		}
		cfg.CallTimeout = d
	}
	if meta.IsDefined("call_timeout_ms") {
		cfg.CallTimeout = time.Duration(raw.CallTimeoutMS) * time.Millisecond
	}
	if meta.IsDefined("cors_origins") {
		cfg.CORSOrigins = normalizeOrigins(raw.CORSOrigins)
	}

	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
