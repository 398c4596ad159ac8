package main

import (
	"context"
	"fmt"
	"io/fs"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/juanmmendes/monitor-sistema/internal/cache"
	"github.com/juanmmendes/monitor-sistema/internal/config"
	"github.com/juanmmendes/monitor-sistema/internal/handlers"
	"github.com/juanmmendes/monitor-sistema/internal/logging"
	"github.com/juanmmendes/monitor-sistema/internal/middleware"
	"github.com/juanmmendes/monitor-sistema/internal/proclist"
	"github.com/juanmmendes/monitor-sistema/internal/sampler"
	"github.com/juanmmendes/monitor-sistema/internal/sysinfo"
	"github.com/juanmmendes/monitor-sistema/internal/telemetry"
	"github.com/juanmmendes/monitor-sistema/internal/version"
	"github.com/juanmmendes/monitor-sistema/web"
)

// defaultConfigPath is tried when no --config flag is given; the file may be
// absent, in which case defaults plus environment apply.
const defaultConfigPath = "monitor.yaml"

// App bundles the long-lived components main wires together.
type App struct {
	cfg       *config.Config
	log       zerolog.Logger
	metrics   *telemetry.Metrics
	cache     *cache.MetricsCache
	hub       *middleware.Hub
	limiter   *middleware.RateLimiter
	api       *handlers.API
	forwarder *portForwarder
}

func newApp(cfg *config.Config, logger zerolog.Logger) *App {
	metrics := telemetry.NewMetrics()
	hub := middleware.NewHub(logger)

	collector := proclist.NewCollector(nil, logger, metrics)
	metricsCache := cache.New(
		sampler.NewCPUSampler(cfg.SampleInterval.Std()),
		sampler.NewMemoryReader(),
		collector,
		cache.Options{
			UsageTTL:        cfg.UsageTTL.Std(),
			ProcessTTL:      cfg.ProcessTTL.Std(),
			RefreshInterval: cfg.RefreshInterval.Std(),
			Logger:          logger,
			Metrics:         metrics,
			OnRefresh:       hub.BroadcastUsage,
		},
	)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		limiter = middleware.NewRateLimiter(
			rate.Every(time.Minute/time.Duration(cfg.RateLimitPerMinute)), burst)
	}

	var forwarder *portForwarder
	if cfg.PortForward {
		forwarder = newPortForwarder(cfg.Port, logger)
	}

	return &App{
		cfg:       cfg,
		log:       logger,
		metrics:   metrics,
		cache:     metricsCache,
		hub:       hub,
		limiter:   limiter,
		api:       handlers.NewAPI(metricsCache, sysinfo.NewProvider(), logger, cfg.Production),
		forwarder: forwarder,
	}
}

func (a *App) setupRouter() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(a.log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if a.limiter != nil {
		r.Use(a.limiter.Middleware())
	}

	staticFS, err := fs.Sub(web.Assets, "static")
	if err != nil {
		return nil, fmt.Errorf("embedded static directory missing: %w", err)
	}
	// Fail fast on assets the dashboard cannot live without.
	for _, asset := range []string{"monitor.png", "css/style.css", "js/app.js"} {
		f, openErr := staticFS.Open(asset)
		if openErr != nil {
			return nil, fmt.Errorf("embedded static asset missing: %s: %w", asset, openErr)
		}
		_ = f.Close()
	}
	// http.FileServer answers index.html with a redirect to ./, which loops on
	// the root route, so the dashboard page is served from bytes instead.
	indexHTML, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		return nil, fmt.Errorf("embedded index.html missing: %w", err)
	}

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	r.StaticFS("/static", http.FS(staticFS))
	r.GET("/monitor.png", func(c *gin.Context) {
		c.FileFromFS("monitor.png", http.FS(staticFS))
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", a.ready)
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": version.Version,
			"commit":  version.Commit,
			"date":    version.Date,
			"display": version.String(),
		})
	})

	api := r.Group("/api")
	{
		api.GET("/usage", a.api.Usage)
		api.GET("/processes", a.api.Processes)
		api.GET("/system-info", a.api.SystemInfo)
		api.POST("/processes/:pid/kill", a.api.KillProcess)
	}

	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))
	r.GET("/ws", a.hub.HandleWebSocket())

	return r, nil
}

// ready reports 200 once the cache has been primed; before that readers would
// hit the cold-cache error path, so the probe answers 503.
func (a *App) ready(c *gin.Context) {
	if a.cache.LastUpdate().IsZero() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "warming up"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func main() {
	// Parse CLI flags: --config/-c <path>
	configPath := defaultConfigPath
	for i := 1; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--config", "-c":
			if i+1 < len(os.Args) {
				configPath = strings.TrimSpace(os.Args[i+1])
				i++
			}
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "monitor-sistema: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		Production: cfg.Production,
		File:       cfg.LogFile,
	})

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// On Windows with tray enabled, spawn a detached background instance so
	// the launching console returns immediately. An env guard prevents the
	// child from spawning again.
	if runtime.GOOS == "windows" && cfg.Tray {
		if spawnDetachedIfNeeded() {
			return
		}
		hideConsoleWindow()
	}

	app := newApp(cfg, logger)
	go app.hub.Run()

	// Prime the cache before accepting traffic so first readers land on the
	// fresh path; the warmer keeps it fresh afterwards.
	app.cache.Start(context.Background())

	router, err := app.setupRouter()
	if err != nil {
		logger.Fatal().Err(err).Msg("router setup failed")
	}

	srv := &http.Server{
		Addr:           ":" + strconv.Itoa(cfg.Port),
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	// Keep handshake and listener errors in the structured log.
	srv.ErrorLog = stdlog.New(logger.With().Str("component", "http").Logger(), "", 0)

	startServer := func() {
		logger.Info().
			Int("port", cfg.Port).
			Str("version", version.String()).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if app.forwarder != nil {
		app.forwarder.Start()
	}

	if cfg.Tray && runtime.GOOS == "windows" {
		go startServer()
		go func() {
			<-quit
			logger.Info().Msg("shutdown signal received")
			trayQuit()
		}()
		// systray must own the main thread; blocks until the tray exits.
		startTray(app)
		logger.Info().Msg("tray exit requested")
	} else {
		go startServer()
		<-quit
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}
	cancel()

	app.cache.Stop()
	if app.limiter != nil {
		app.limiter.Stop()
	}
	if app.forwarder != nil {
		app.forwarder.Stop()
	}

	logger.Info().Msg("server exited")
}
