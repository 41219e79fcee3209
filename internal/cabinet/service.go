package cabinet

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/luisceladatrigo/hw-mockup/internal/grid"
)

var ErrInvalidHeartbeatInterval = errors.New("cabinet: invalid heartbeat interval")

// ServiceConfig configures one standalone cabinet runtime.
type ServiceConfig struct {
	Descriptor        grid.Descriptor
	ListenAddr        string
	CycleLength       time.Duration
	HeartbeatInterval time.Duration
	CORSOrigins       []string
}

// DefaultServiceConfig returns cabinet runtime defaults: a 8x8 grid on :7101.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Descriptor:        grid.Descriptor{ID: "cab.local", RowLen: 8, ColLen: 8},
		ListenAddr:        ":7101",
		CycleLength:       DefaultCycleLength,
		HeartbeatInterval: 5 * time.Second,
	}
}

// Service runs one cabinet node lifecycle as a standalone process.
type Service struct {
	cfg    ServiceConfig
	server *Server
}

// NewServiceWithConfig wires store, resolver, and HTTP surface from config.
func NewServiceWithConfig(cfg ServiceConfig) (*Service, error) {
	if cfg.HeartbeatInterval <= 0 {
		return nil, ErrInvalidHeartbeatInterval
	}
	store, err := NewStore(cfg.Descriptor, nil)
	if err != nil {
		return nil, err
	}
	resolver := NewResolver(cfg.CycleLength, nil)
	server := Appear(store, resolver, cfg.CORSOrigins)
	server.RegisterRoutes()
	return &Service{cfg: cfg, server: server}, nil
}

// Server returns the cabinet HTTP boundary owner.
func (s *Service) Server() *Server {
	return s.server
}

// Run blocks serving the cabinet API until signal shutdown.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.serve(ctx)
}

func (s *Service) serve(ctx context.Context) error {
	desc := s.cfg.Descriptor
	httpServer := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.server.HTTPRouter(),
	}
	log.Info().
		Str("cabinet", desc.ID).
		Str("addr", s.cfg.ListenAddr).
		Int("row_len", desc.RowLen).
		Int("col_len", desc.ColLen).
		Msg("cabinet listening")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("cabinet", desc.ID).Msg("cabinet shutdown")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ticker.C:
			marks, ts := s.server.Store.Snapshot()
			log.Info().
				Str("cabinet", desc.ID).
				Int("marks", len(marks)).
				Time("last_update", ts).
				Msg("cabinet heartbeat")
		}
	}
}
