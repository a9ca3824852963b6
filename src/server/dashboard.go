package server

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"macro-observer/src/catalog"
	"macro-observer/src/config"
	"macro-observer/src/engine"
	"macro-observer/src/helpers"
	"macro-observer/src/interfaces"
	"macro-observer/src/logger"
	"macro-observer/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

// ERP bounds: a P/E outside this range is almost certainly a typo, and the
// formula degenerates near zero.
const (
	minPERatio = 15.0
	maxPERatio = 40.0
)

var _ interfaces.IDataExchanger = (*DashboardServer)(nil)

type DashboardServer struct {
	Config *config.Config
	Logger *logger.Logger
	Engine *engine.Engine
	router *gin.Engine

	// ConfigPath is where runtime config changes are persisted. Empty
	// disables persistence (tests).
	ConfigPath string

	// Refresh runs a fresh render cycle (cache flushed by the caller when
	// needed) and broadcasts the result. Wired by main.
	Refresh func() (*models.MLatestData, error)

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MLatestData // Strongly typed and Buffered Queue
	register   chan *Client
	unregister chan *Client

	// Local cache
	latestState *models.MLatestData
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *config.Config, log *logger.Logger, eng *engine.Engine) *DashboardServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:  cfg,
		Logger:  log,
		Engine:  eng,
		router:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking
		broadcast:  make(chan *models.MLatestData, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		latestState: &models.MLatestData{
			Type: "INITIAL",
		},
	}

	// Add CORS Middleware
	s.router.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// REST API endpoints
	s.router.GET("/api/table", s.getTable)
	s.router.GET("/api/metrics", s.getMetrics)
	s.router.GET("/api/simulate", s.getSimulate)
	s.router.GET("/api/erp", s.getERP)
	s.router.GET("/api/config", s.getConfig)
	s.router.PUT("/api/config", s.putConfig)
	s.router.POST("/api/refresh", s.postRefresh)
	s.router.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.router.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.router.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop() error {
	// Clean shutdown
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getTable(c *gin.Context) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	if s.latestState.Table == nil {
		c.JSON(503, gin.H{"error": "no table published yet"})
		return
	}
	c.JSON(200, s.latestState)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getMetrics(c *gin.Context) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"cards":            s.latestState.Cards,
		"failures":         s.latestState.Failures,
		"pipeline_metrics": s.latestState.PipelineMetrics,
	})
}

// -----------------------------------------------------------------------------

// getSimulate projects the anchor index forward at an assumed monthly rate.
// Query: rate (per-month decimal, defaults from config), horizon (months).
func (s *DashboardServer) getSimulate(c *gin.Context) {
	sim := s.Config.Simulator

	rate := sim.DefaultRate
	if raw := c.Query("rate"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": fmt.Sprintf("invalid rate %q", raw)})
			return
		}
		rate = parsed
	}
	if rate < sim.MinRate || rate > sim.MaxRate {
		c.JSON(400, gin.H{"error": fmt.Sprintf("rate %g outside bounds [%g, %g]", rate, sim.MinRate, sim.MaxRate)})
		return
	}

	horizon := sim.HorizonPeriods
	if raw := c.Query("horizon"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 24 {
			c.JSON(400, gin.H{"error": fmt.Sprintf("invalid horizon %q (want 1-24)", raw)})
			return
		}
		horizon = parsed
	}

	history := s.Engine.AnchorHistory()
	if len(history) == 0 {
		c.JSON(503, gin.H{"error": "no anchor history available yet"})
		return
	}

	points, err := engine.Simulate(history, rate, horizon)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"anchor":  catalog.Anchor().Name,
		"rate":    rate,
		"horizon": horizon,
		"points":  points,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getERP(c *gin.Context) {
	raw := c.Query("pe")
	if raw == "" {
		c.JSON(400, gin.H{"error": "pe query parameter is required"})
		return
	}
	pe, err := strconv.ParseFloat(raw, 64)
	if err != nil || pe < minPERatio || pe > maxPERatio {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid pe %q (want %g-%g)", raw, minPERatio, maxPERatio)})
		return
	}

	table := s.Engine.Table()
	if table == nil {
		c.JSON(503, gin.H{"error": "no table published yet"})
		return
	}

	erp, ok := engine.EquityRiskPremium(table, pe)
	if !ok {
		c.JSON(503, gin.H{"error": "10Y yield unavailable"})
		return
	}

	c.JSON(200, gin.H{
		"pe":             pe,
		"earnings_yield": (1.0 / pe) * 100.0,
		"erp":            erp,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getConfig(c *gin.Context) {
	c.JSON(200, gin.H{
		"lookback_years":          s.Config.Data.LookbackYears,
		"lookback_bounds":         []int{config.MinLookbackYears, config.MaxLookbackYears},
		"cache_ttl_seconds":       s.Config.Cache.TTLSeconds,
		"update_interval_seconds": s.Config.Data.UpdateIntervalSeconds,
		"simulator":               s.Config.Simulator,
		"panels":                  panelNames(),
	})
}

// -----------------------------------------------------------------------------

// putConfig adjusts the lookback window. A change invalidates every cached
// snapshot implicitly (the cache key embeds the lookback) and triggers a
// fresh cycle so clients see the new window immediately.
func (s *DashboardServer) putConfig(c *gin.Context) {
	var body struct {
		LookbackYears int `json:"lookback_years"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": "invalid body, want {\"lookback_years\": n}"})
		return
	}

	if err := s.Config.SetLookbackYears(body.LookbackYears); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	s.Logger.Info("Lookback window set to %d years", body.LookbackYears)

	if s.ConfigPath != "" {
		if err := s.Config.Save(s.ConfigPath); err != nil {
			s.Logger.Warning("Failed to persist config to %s: %v", s.ConfigPath, err)
		}
	}

	if s.Refresh != nil {
		if _, err := s.Refresh(); err != nil {
			c.JSON(502, gin.H{"error": fmt.Sprintf("lookback updated but refresh failed: %v", err)})
			return
		}
	}
	c.JSON(200, gin.H{"lookback_years": body.LookbackYears})
}

// -----------------------------------------------------------------------------

// postRefresh flushes the cache and forces a full upstream refetch.
func (s *DashboardServer) postRefresh(c *gin.Context) {
	if s.Refresh == nil {
		c.JSON(503, gin.H{"error": "refresh not available"})
		return
	}

	s.Engine.Flush()
	snapshot, err := s.Refresh()
	if err != nil {
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"status":           "refreshed",
		"pipeline_metrics": snapshot.PipelineMetrics,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	timestamp := s.latestState.Timestamp
	rows := 0
	if s.latestState.Table != nil {
		rows = s.latestState.Table.Rows()
	}
	s.stateMutex.RUnlock()

	anchorAsOf := ""
	if date, ok := s.Engine.AnchorAsOf(); ok {
		anchorAsOf = date.Format("2006-01-02")
	}

	c.JSON(200, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": timestamp,
		"rows":          rows,
		"anchor_as_of":  anchorAsOf,
		"memory":        helpers.ProbeMemory(),
	})
}

// -----------------------------------------------------------------------------

func panelNames() []string {
	seen := make(map[string]struct{})
	var panels []string
	for _, spec := range catalog.Registry {
		if _, ok := seen[spec.Panel]; ok {
			continue
		}
		seen[spec.Panel] = struct{}{}
		panels = append(panels, spec.Panel)
	}
	return panels
}
