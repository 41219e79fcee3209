package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/luisceladatrigo/hw-mockup/internal/cabinet"
)

// cabinetd config.toml key mapping to cabinet runtime settings.
type fileConfig struct {
	ID                  string   `toml:"id"`
	Addr                string   `toml:"addr"`
	RowLen              int      `toml:"row_len"`
	ColLen              int      `toml:"col_len"`
	CycleMS             int64    `toml:"cycle_ms"`
	Heartbeat           string   `toml:"heartbeat"`
	HeartbeatIntervalMS int64    `toml:"heartbeat_interval_ms"`
	CORSOrigins         []string `toml:"cors_origins"`
}

// cabinetd loader for TOML config with default overlay. A missing id
// gets a generated one so freshly provisioned nodes stay distinguishable
// when they self-report to the panel.
func loadServiceConfig(path string) (cabinet.ServiceConfig, error) {
	cfg := cabinet.DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cabinet.ServiceConfig{}, fmt.Errorf("load cabinet config: %w", err)
	}

	if id := strings.TrimSpace(raw.ID); meta.IsDefined("id") && id != "" {
		cfg.Descriptor.ID = id
	} else {
		cfg.Descriptor.ID = generateCabinetID()
	}

	if meta.IsDefined("addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("row_len") {
		cfg.Descriptor.RowLen = raw.RowLen
	}
	if meta.IsDefined("col_len") {
		cfg.Descriptor.ColLen = raw.ColLen
	}
	if meta.IsDefined("cycle_ms") {
		cfg.CycleLength = time.Duration(raw.CycleMS) * time.Millisecond
	}
	if meta.IsDefined("heartbeat") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Heartbeat))
		if err != nil {
			return cabinet.ServiceConfig{}, fmt.Errorf("parse heartbeat: %w", err)
		}
		cfg.HeartbeatInterval = d
	}
	if meta.IsDefined("heartbeat_interval_ms") {
		cfg.HeartbeatInterval = time.Duration(raw.HeartbeatIntervalMS) * time.Millisecond
	}
	if meta.IsDefined("cors_origins") {
		cfg.CORSOrigins = normalizeOrigins(raw.CORSOrigins)
	}

	return cfg, nil
}

func generateCabinetID() string {
	return "cab-" + uuid.NewString()[:8]
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
