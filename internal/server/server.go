package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/alkime/soundboard/internal/config"
	"github.com/alkime/soundboard/internal/engine"
	"github.com/alkime/soundboard/internal/invoke"
	"github.com/alkime/soundboard/internal/keyrec"
	"github.com/alkime/soundboard/pkg/channels"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// Deps are the engine-side collaborators the server exposes over HTTP.
type Deps struct {
	Bus    *invoke.Bus
	Events *channels.Broadcaster[engine.Event]
}

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine

	bus    *invoke.Bus
	client *engine.Client
	events *channels.Broadcaster[engine.Event]

	// recMu serialises recorder access; HTTP handlers run concurrently.
	recMu    sync.Mutex
	recorder *keyrec.Recorder
	feed     *keyrec.Feed
}

// New creates a new Server instance
func New(cfg *config.Config, logger *slog.Logger, deps Deps) *Server {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(logger))

	client := engine.NewClient(deps.Bus)
	server := &Server{
		config:   cfg,
		logger:   logger,
		router:   router,
		bus:      deps.Bus,
		client:   client,
		events:   deps.Events,
		recorder: keyrec.New(client, logger),
		feed:     keyrec.NewFeed(),
	}

	// Setup middleware and routes
	setupSecurityMiddleware(router, cfg, logger)
	server.setupRoutes()

	return server
}

// Router exposes the handler, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server
func Run(s *Server) error {
	s.logger.Info("Server listening", "port", s.config.Port)
	return s.router.Run(":" + s.config.Port)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/v1", bearerAuth(s.config.Token))
	{
		api.GET("/commands", s.handleCommands)
		api.POST("/invoke/:command", s.handleInvoke)

		api.GET("/record", s.handleRecordStatus)
		api.POST("/record/start", s.handleRecordStart)
		api.POST("/record/key", s.handleRecordKey)
		api.DELETE("/record", s.handleRecordCancel)

		api.GET("/events", s.handleEvents)
	}

	// Frontend assets. Unmatched paths fall through to 404.
	s.router.Use(static.Serve("/", static.LocalFile(s.config.StaticDir, true)))
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"service": "soundboard",
	}

	if s.events != nil {
		dropped := 0
		for _, st := range s.events.Stats() {
			dropped += st.Dropped
		}
		body["subscribers"] = s.events.Len()
		body["droppedEvents"] = dropped
	}

	c.JSON(http.StatusOK, body)
}
