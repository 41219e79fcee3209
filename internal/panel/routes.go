package panel

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/luisceladatrigo/hw-mockup/internal/grid"
	"github.com/luisceladatrigo/hw-mockup/internal/observability"
)

// Server is the panel's HTTP boundary: client intents in, cabinet fleet
// management, and pull-based state reads.
type Server struct {
	Panel    *Panel
	Appeared time.Time

	router *gin.Engine
}

// RegisterRequest carries one cabinet registration intent. The cabinet
// identity is discovered from the node, never taken from the caller.
type RegisterRequest struct {
	URL   string `json:"url"`
	Alias string `json:"alias,omitempty"`
}

// IntentRequest carries one mark intent addressed to a registered cabinet.
type IntentRequest struct {
	ID    string `json:"id,omitempty"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Color string `json:"color"`
	On    bool   `json:"on"`
}

// NewServer builds the panel HTTP surface with the shared middleware stack.
func NewServer(p *Panel, corsOrigins []string) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware("panel"))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		Panel:    p,
		Appeared: time.Now(),
		router:   r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"uptime":    time.Since(s.Appeared).String(),
			"component": "panel-api",
			"version":   "0.1.0",
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":     true,
			"uptime":    time.Since(s.Appeared).String(),
			"component": "panel-api",
			"version":   "0.1.0",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/api/cabinets", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"cabinets": s.Panel.ListCabinets()})
	})

	s.router.POST("/api/cabinets", func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed register payload"})
			return
		}
		entry, err := s.Panel.RegisterCabinet(c.Request.Context(), req.URL, req.Alias)
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entry)
	})

	s.router.DELETE("/api/cabinets/:cabinet", func(c *gin.Context) {
		if err := s.Panel.DeregisterCabinet(c.Param("cabinet")); err != nil {
			c.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	s.router.POST("/api/cabinets/:cabinet/mark", func(c *gin.Context) {
		var req IntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed intent payload"})
			return
		}
		installed, err := s.Panel.ApplyMark(
			c.Request.Context(),
			c.Param("cabinet"),
			req.ID, req.Row, req.Col, req.Color, req.On,
		)
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "installed": installed})
	})

	s.router.GET("/api/cabinets/:cabinet/state", func(c *gin.Context) {
		report, err := s.Panel.CabinetState(c.Request.Context(), c.Param("cabinet"))
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	})
}

// errorStatus maps the panel error taxonomy onto HTTP status codes so a
// caller can distinguish bad input from network failure from peer rejection.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, grid.ErrOutOfRange),
		errors.Is(err, grid.ErrInvalidColor),
		errors.Is(err, ErrInvalidDiscovery):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownCabinet), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTransport), errors.Is(err, ErrNodeRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
