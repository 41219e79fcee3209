package panel

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/luisceladatrigo/hw-mockup/internal/topology"
)

// ServiceConfig configures the panel orchestrator runtime.
type ServiceConfig struct {
	ListenAddr   string
	TopologyPath string
	CallTimeout  time.Duration
	CORSOrigins  []string
}

// DefaultServiceConfig returns panel runtime defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ListenAddr:   ":7100",
		TopologyPath: "topology.json",
		CallTimeout:  5 * time.Second,
	}
}

// Service runs the panel lifecycle as a standalone process.
type Service struct {
	cfg    ServiceConfig
	server *Server
}

// NewServiceWithConfig wires client, panel, and HTTP surface from config.
func NewServiceWithConfig(cfg ServiceConfig) (*Service, error) {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = DefaultServiceConfig().ListenAddr
	}
	client := NewCabinetClient(cfg.CallTimeout)

	var store *topology.Store
	if strings.TrimSpace(cfg.TopologyPath) != "" {
		var err error
		store, err = topology.NewStore(cfg.TopologyPath)
		if err != nil {
			return nil, err
		}
	}

	p := NewPanel(client, store)
	if err := p.LoadTopology(); err != nil {
		return nil, err
	}
	if known := p.ListCabinets(); len(known) > 0 {
		log.Info().Int("cabinets", len(known)).Msg("topology loaded")
	}

	server := NewServer(p, cfg.CORSOrigins)
	server.RegisterRoutes()
	return &Service{cfg: cfg, server: server}, nil
}

// Server returns the panel HTTP boundary owner.
func (s *Service) Server() *Server {
	return s.server
}

// Run blocks serving the panel API until signal shutdown.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.serve(ctx)
}

func (s *Service) serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.server.HTTPRouter(),
	}
	log.Info().Str("addr", s.cfg.ListenAddr).Msg("panel listening")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("panel shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
