package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"stockstreamer/src/analysis"
	"stockstreamer/src/interfaces"
	"stockstreamer/src/logger"
	"stockstreamer/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

// DashboardServer serves the stored history over REST and pushes every
// completed polling round to websocket clients.
type DashboardServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	Reader interfaces.IStockReader
	Status func() []models.CycleStatus
	Now    func() time.Time

	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.FetchBatch
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	hubOnce    sync.Once
	stopOnce   sync.Once

	// latest batch per kind, replayed to new clients
	latest     map[models.DataKind]*models.FetchBatch
	stateMutex sync.RWMutex
}

var _ interfaces.IRoundPublisher = (*DashboardServer)(nil)

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, reader interfaces.IStockReader, log *logger.Logger) *DashboardServer {
	if strings.ToUpper(cfg.LogLevel) != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:     cfg,
		Logger:     log,
		Reader:     reader,
		Now:        time.Now,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.FetchBatch, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		latest:     make(map[models.DataKind]*models.FetchBatch),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/prices", s.getPrices)
	api.GET("/logos", s.getLogos)
	api.GET("/highlow", s.getHighLow)
	api.GET("/symbols", s.getSymbols)
	api.GET("/health", s.getHealth)

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the routes, mainly for httptest.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// StartHub starts the websocket hub loop. Safe to call more than once.
func (s *DashboardServer) StartHub() {
	s.hubOnce.Do(func() {
		go s.handleWebsockets()
	})
}

// Start blocks serving HTTP until Stop is called.
func (s *DashboardServer) Start() error {
	s.Logger.Info("Starting dashboard on %s", s.httpServer.Addr)

	s.StartHub()
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getPrices(c *gin.Context) {
	days := s.Config.Dashboard.HistoryDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = n
	}

	since := s.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	points, err := s.Reader.RecentPrices(c.Request.Context(), since)
	if err != nil {
		s.fail(c, "prices", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"since":  since,
		"series": analysis.BuildSeries(points, s.Config.DataSource.DisplayNames, s.Config.Dashboard.Compact),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getLogos(c *gin.Context) {
	logos, err := s.Reader.LogoURLs(c.Request.Context())
	if err != nil {
		s.fail(c, "logos", err)
		return
	}
	if logos == nil {
		logos = []models.LogoRecord{}
	}
	c.JSON(http.StatusOK, logos)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHighLow(c *gin.Context) {
	records, err := s.Reader.HighLows(c.Request.Context())
	if err != nil {
		s.fail(c, "high/low", err)
		return
	}
	if records == nil {
		records = []models.HighLowRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSymbols(c *gin.Context) {
	out := make([]gin.H, 0, len(s.Config.DataSource.Symbols))
	for _, sym := range s.Config.DataSource.Symbols {
		name := s.Config.DataSource.DisplayNames[sym]
		if name == "" {
			name = sym
		}
		out = append(out, gin.H{"symbol": sym, "display_name": name})
	}
	c.JSON(http.StatusOK, out)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	var latestUpdate time.Time
	for _, b := range s.latest {
		if b.Timestamp.After(latestUpdate) {
			latestUpdate = b.Timestamp
		}
	}
	s.stateMutex.RUnlock()

	body := gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": latestUpdate,
	}
	if s.Status != nil {
		body["cycles"] = s.Status()
	}
	c.JSON(http.StatusOK, body)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) fail(c *gin.Context, what string, err error) {
	s.Logger.Error("Failed to load %s: %v", what, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load " + what})
}
