package cabinet

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

// Server is one simulated cabinet node: a mark store plus the HTTP surface
// the panel reconciles against.
type Server struct {
	Store    *Store
	Resolver *Resolver
	Appeared time.Time

	router   *gin.Engine
	basePath string
}

// MarkPayload is the single-mark wire shape for /api/mark.
type MarkPayload struct {
	ID    string `json:"id,omitempty"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Color string `json:"color"`
	On    bool   `json:"on"`
}

// BatchPayload is the full-replace wire shape for /api/marks.
type BatchPayload struct {
	Marks []MarkPayload `json:"marks"`
}

// StateReport is the node's self-report: identity, dimensions, and snapshot.
type StateReport struct {
	ID     string      `json:"id"`
	RowLen int         `json:"row_len"`
	ColLen int         `json:"col_len"`
	TS     time.Time   `json:"ts"`
	Marks  []grid.Mark `json:"marks"`
}

// Appear builds a standalone cabinet server with its own gin engine and the
// shared request middleware stack.
func Appear(store *Store, resolver *Resolver, corsOrigins []string) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(store.Descriptor().ID))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		Store:    store,
		Resolver: resolver,
		Appeared: time.Now(),
		router:   r,
	}
}

// Attach mounts a cabinet on an existing router under basePath, for hosting
// several simulated cabinets in one process.
func Attach(store *Store, resolver *Resolver, router *gin.Engine, basePath string) *Server {
	return &Server{
		Store:    store,
		Resolver: resolver,
		Appeared: time.Now(),
		router:   router,
		basePath: basePath,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) routes() gin.IRoutes {
	if s.basePath == "" {
		return s.router
	}
	return s.router.Group(s.basePath)
}

func (s *Server) RegisterRoutes() {
	routes := s.routes()
	desc := s.Store.Descriptor()

	routes.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"cabinet": desc.ID,
			"version": "0.1.0",
		})
	})

	routes.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.Appeared).String(),
			"cabinet": desc.ID,
			"version": "0.1.0",
		})
	})

	routes.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.GET("/api/state", func(c *gin.Context) {
		marks, ts := s.Store.Snapshot()
		c.JSON(http.StatusOK, StateReport{
			ID:     desc.ID,
			RowLen: desc.RowLen,
			ColLen: desc.ColLen,
			TS:     ts,
			Marks:  marks,
		})
	})

	routes.GET("/api/lines", func(c *gin.Context) {
		marks, _ := s.Store.Snapshot()
		c.JSON(http.StatusOK, s.Resolver.Project(marks))
	})

	routes.POST("/api/mark", func(c *gin.Context) {
		var payload MarkPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed mark payload"})
			return
		}
		if !payload.On {
			key := payload.ID
			if key == "" {
				key = grid.DeriveKey(payload.Row, payload.Col)
			}
			existed := s.Store.Delete(key)
			c.JSON(http.StatusOK, gin.H{"ok": true, "existed": existed})
			return
		}
		mark, err := s.Store.Set(MarkEntry{
			ID:    payload.ID,
			Row:   payload.Row,
			Col:   payload.Col,
			Color: payload.Color,
		})
		if err != nil {
			c.JSON(validationStatus(err), gin.H{"error": err.Error()})
			return
		}
		observability.RecordMarksInstalled(desc.ID, "set", 1)
		c.JSON(http.StatusOK, gin.H{"ok": true, "id": mark.ID})
	})

	routes.POST("/api/marks", func(c *gin.Context) {
		var payload BatchPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed marks payload"})
			return
		}
		entries := make([]MarkEntry, 0, len(payload.Marks))
		for i := range payload.Marks {
			entries = append(entries, MarkEntry{
				ID:    payload.Marks[i].ID,
				Row:   payload.Marks[i].Row,
				Col:   payload.Marks[i].Col,
				Color: payload.Marks[i].Color,
			})
		}
		installed := s.Store.ReplaceAll(entries)
		observability.RecordMarksInstalled(desc.ID, "replace_all", installed)
		if dropped := len(entries) - installed; dropped > 0 {
			observability.RecordMarksDropped(desc.ID, dropped)
			log.Warn().
				Str("cabinet", desc.ID).
				Int("installed", installed).
				Int("dropped", dropped).
				Msg("replace_all dropped invalid entries")
		}
		_, ts := s.Store.Snapshot()
		c.JSON(http.StatusOK, gin.H{"ok": true, "installed": installed, "ts": ts})
	})
}

// validationStatus maps store validation failures onto HTTP status codes.
func validationStatus(err error) int {
	if errors.Is(err, grid.ErrOutOfRange) || errors.Is(err, grid.ErrInvalidColor) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
