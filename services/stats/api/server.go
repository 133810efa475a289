package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("api")

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	storage        Storage
	processor      Processor
	listenAddr     string
	generalHandler func(http.Handler) http.Handler
	wg             sync.WaitGroup
}

// ModelsResponse is the body served on /api/models
type ModelsResponse struct {
	Models    []common.AggregatedMetric `json:"models"`
	Total     int                       `json:"total"`
	ScrapedAt *string                   `json:"scraped_at"`
}

// HealthResponse is the body served on /api/health
type HealthResponse struct {
	Status        string  `json:"status"`
	ModelsCount   int     `json:"models_count"`
	LastScrapedAt *string `json:"last_scraped_at"`
}

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ListenAddress  string
	Storage        Storage
	Processor      Processor
	GeneralHandler func(http.Handler) http.Handler
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Storage) {
		return nil, errNilStorage
	}
	if check.IfNil(args.Processor) {
		return nil, errNilProcessor
	}
	if args.GeneralHandler == nil {
		return nil, errNilGeneralHandler
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())

	s := &server{
		router:         router,
		storage:        args.Storage,
		processor:      args.Processor,
		listenAddr:     args.ListenAddress,
		generalHandler: args.GeneralHandler,
	}

	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/models", s.handleGetModels)
		api.POST("/scrape", s.handleScrape)
		api.GET("/health", s.handleHealth)
	}

	// wrong methods end up here too since HandleMethodNotAllowed is off
	s.router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not found")
	})
}

// Start listens and serves connections
func (s *server) Start() {
	handler := s.generalHandler(s.router)

	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server. The storage is owned by the caller and is left open
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.wg.Wait()
	return nil
}

// --- Handlers ---

func (s *server) handleGetModels(c *gin.Context) {
	models, err := s.storage.AllModels(c.Request.Context())
	if err != nil {
		log.Warn("failed to read models", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := ModelsResponse{
		Models: models,
		Total:  len(models),
	}
	if len(models) > 0 {
		response.ScrapedAt = &models[0].ScrapedAt
	}

	c.JSON(http.StatusOK, response)
}

func (s *server) handleScrape(c *gin.Context) {
	log.Debug("manual scrape requested", "sender", c.Request.RemoteAddr)

	// the run outlives a client that gives up, so the cursor still advances once per invocation
	result, err := s.processor.Process(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		log.Error("manual scrape failed", "run", result.RunID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *server) handleHealth(c *gin.Context) {
	info, err := s.storage.GetHealth(c.Request.Context())
	if err != nil {
		log.Error("health check failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:        "ok",
		ModelsCount:   info.ModelsCount,
		LastScrapedAt: info.LastScrapedAt,
	})
}
