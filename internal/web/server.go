package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devblac/airdrop-radar/internal/address"
	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/config"
	"github.com/devblac/airdrop-radar/internal/metrics"
	"github.com/devblac/airdrop-radar/internal/scan"
	"github.com/devblac/airdrop-radar/internal/scoring"
)

// Scanner runs one full scan. Implemented by scan.Coordinator.
type Scanner interface {
	Scan(ctx context.Context, addr, chain string, protocols []catalog.Protocol, windowDays int) scan.Outcome
}

// ResultCache stores serialized scan responses with a TTL.
type ResultCache interface {
	Get(ctx context.Context, key string, now time.Time) (string, bool, error)
	Set(ctx context.Context, key, payload string, expiresAt time.Time) error
}

// Server is the HTTP API surface.
type Server struct {
	cfg      *config.Config
	catalog  *catalog.DB
	scanner  Scanner
	engine   *scoring.Engine
	cache    ResultCache
	code     CodeReader
	accounts AccountReader
	log      *slog.Logger
	mtr      *metrics.Metrics
	nowFunc  func() time.Time
}

// NewServer wires the API. cache, code, and accounts may be nil; the matching
// features degrade gracefully.
func NewServer(cfg *config.Config, db *catalog.DB, scanner Scanner, engine *scoring.Engine, cache ResultCache, code CodeReader, accounts AccountReader, log *slog.Logger, mtr *metrics.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		catalog:  db,
		scanner:  scanner,
		engine:   engine,
		cache:    cache,
		code:     code,
		accounts: accounts,
		log:      log,
		mtr:      mtr,
		nowFunc:  time.Now,
	}
}

// Router builds the gin engine with logging and recovery middleware.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(s.requestLogger(), gin.Recovery())

	v1 := r.Group("/v1")
	v1.GET("/airdrop-exposure/:chain", s.handleInfo)
	v1.POST("/airdrop-exposure/:chain", s.handleScan)
	return r
}

// Run serves the API until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("api listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		return err
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// handleInfo describes the catalog coverage for one chain.
func (s *Server) handleInfo(c *gin.Context) {
	chain := c.Param("chain")
	if !s.cfg.ChainSupported(chain) {
		c.JSON(http.StatusNotFound, errorBody{Error: "unsupported chain: " + chain})
		return
	}

	protocols := s.catalog.ByChain(chain)
	categories := map[string]int{}
	tokenless := 0
	for _, p := range protocols {
		categories[p.Category]++
		if !p.HasToken {
			tokenless++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"chain":               chain,
		"protocols":           len(protocols),
		"tokenless_protocols": tokenless,
		"categories":          categories,
		"window_days_default": s.cfg.Scan.DefaultWindowDays,
		"window_days_max":     s.cfg.Scan.MaxWindowDays,
		"usage":               "POST with {\"address\": \"...\", \"windowDays\": N} to scan a wallet",
	})
}

// handleScan runs (or replays) one wallet scan.
func (s *Server) handleScan(c *gin.Context) {
	chain := c.Param("chain")
	if !s.cfg.ChainSupported(chain) {
		c.JSON(http.StatusNotFound, errorBody{Error: "unsupported chain: " + chain})
		return
	}

	params := newRequestParams(c)
	addr := params.address()
	if addr == "" {
		c.JSON(http.StatusBadRequest, errorBody{Error: "address is required"})
		return
	}
	if !address.Validate(addr, chain) {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid address for chain " + chain})
		return
	}
	addr = address.Normalize(addr, chain)

	windowDays, err := params.windowDays(s.cfg.Scan.DefaultWindowDays, s.cfg.Scan.MinWindowDays, s.cfg.Scan.MaxWindowDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	cacheKey := chain + ":" + addr + ":" + strconv.Itoa(windowDays)
	if cached, ok := s.cacheLookup(c.Request.Context(), cacheKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	protocols := s.catalog.ByChain(chain)
	if len(protocols) == 0 {
		c.JSON(http.StatusServiceUnavailable, errorBody{Error: "no protocols loaded for chain " + chain})
		return
	}

	resp := s.runScan(c.Request.Context(), addr, chain, protocols, windowDays)
	s.cacheStore(c.Request.Context(), cacheKey, resp)
	c.JSON(http.StatusOK, resp)
}

// runScan executes the scan and assembles the response.
func (s *Server) runScan(ctx context.Context, addr, chain string, protocols []catalog.Protocol, windowDays int) ScanResponse {
	walletType, notes := s.detectWalletType(ctx, addr, chain)

	out := s.scanner.Scan(ctx, addr, chain, protocols, windowDays)

	s.engine.ScoreSignals(out.Tokenless)
	summary := s.engine.BuildSummary(out.Tokenless, out.Tokened)
	actions := s.engine.NextActions(out.Tokenless, out.Tokened, chain)

	return ScanResponse{
		Chain:            chain,
		Address:          addr,
		WalletType:       walletType,
		WindowDays:       windowDays,
		ScanTimestamp:    s.nowFunc().UTC().Format(time.RFC3339),
		Completeness:     string(out.Completeness),
		Signals:          SignalsBlock{Tokenless: out.Tokenless, Tokened: out.Tokened},
		Summary:          summary,
		NextActions:      actions,
		SkippedProtocols: skippedFromOutcome(out),
		Notes:            append(notes, notesFromOutcome(out)...),
		Disclaimer:       disclaimer,
	}
}

func (s *Server) cacheLookup(ctx context.Context, key string) (ScanResponse, bool) {
	if s.cache == nil {
		return ScanResponse{}, false
	}
	payload, ok, err := s.cache.Get(ctx, key, s.nowFunc())
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "error", err)
		return ScanResponse{}, false
	}
	if !ok {
		s.mtr.CacheMiss()
		return ScanResponse{}, false
	}

	var resp ScanResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		s.log.Warn("cache payload corrupt", "key", key, "error", err)
		return ScanResponse{}, false
	}
	s.mtr.CacheHit()
	resp.Cached = true
	return resp, true
}

func (s *Server) cacheStore(ctx context.Context, key string, resp ScanResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.nowFunc().Add(s.cfg.Cache.TTLDuration())); err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
	}
}
