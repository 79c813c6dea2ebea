package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/artpar/yatube/internal/shell/api"
	"github.com/artpar/yatube/internal/shell/media"
	"github.com/artpar/yatube/internal/shell/metrics"
	"github.com/artpar/yatube/internal/shell/pagecache"
	"github.com/artpar/yatube/internal/shell/service"
	"github.com/artpar/yatube/internal/shell/session"
	"github.com/artpar/yatube/internal/shell/store"
	"github.com/artpar/yatube/internal/shell/web"
	webmw "github.com/artpar/yatube/internal/shell/web/middleware"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitCacheError      = 3
	ExitHTTPServerError = 4
)

// throttleSweepInterval is how often idle login limiters are dropped.
const throttleSweepInterval = 5 * time.Minute

// maxTrackedClients bounds the login throttle's memory.
const maxTrackedClients = 10000

// =============================================================================
// Dependencies
// =============================================================================

// deps are the long-lived components shared by every command.
type deps struct {
	store  *store.SQLStore
	cache  pagecache.Cache
	media  *media.Storage
	svc    *service.Service
	logger *slog.Logger
}

// openDeps connects the store, cache and media storage and builds the service.
// rec may be nil.
func openDeps(ctx context.Context, cfg *Config, logger *slog.Logger, rec service.Recorder) (*deps, error) {
	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, &ServerError{Op: "OpenStore", Err: err, ExitCode: ExitDatabaseError}
	}

	cache, err := pagecache.New(ctx, pagecache.Config{
		Backend:  cfg.Cache.Backend,
		RedisURL: cfg.Cache.RedisURL,
	})
	if err != nil {
		st.Close()
		return nil, &ServerError{Op: "OpenCache", Err: err, ExitCode: ExitCacheError}
	}

	storage, err := media.NewOSStorage(cfg.Media.Root, cfg.Media.MaxUploadBytes)
	if err != nil {
		cache.Close()
		st.Close()
		return nil, &ServerError{Op: "OpenMedia", Err: err, ExitCode: ExitConfigError}
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithMedia(storage),
		service.WithPageCache(cache),
		service.WithPageSize(cfg.Site.PageSize),
	}
	if rec != nil {
		opts = append(opts, service.WithRecorder(rec))
	}

	return &deps{
		store:  st,
		cache:  cache,
		media:  storage,
		svc:    service.New(st, opts...),
		logger: logger,
	}, nil
}

// Close releases the cache and the database.
func (d *deps) Close() {
	if err := d.cache.Close(); err != nil {
		d.logger.Error("page cache close error", "error", err)
	}
	if err := d.store.Close(); err != nil {
		d.logger.Error("database close error", "error", err)
	}
}

// =============================================================================
// Server
// =============================================================================

// Server represents the yatube application server.
type Server struct {
	config     *Config
	httpServer *http.Server
	deps       *deps
	throttle   *webmw.LoginThrottle
	logger     *slog.Logger
}

// NewServer creates a new server with the given config.
func NewServer(ctx context.Context, cfg *Config, logger *slog.Logger) (*Server, error) {
	m := metrics.New()

	d, err := openDeps(ctx, cfg, logger, m)
	if err != nil {
		return nil, err
	}

	secret := cfg.Session.Secret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("session.secret is not set, using a random secret; sessions end on restart")
	}
	sessions, err := session.NewManager(session.Config{
		Secret:     secret,
		TTL:        cfg.Session.TTL,
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
	})
	if err != nil {
		d.Close()
		return nil, &ServerError{Op: "NewServer", Err: err, ExitCode: ExitConfigError}
	}

	throttle := webmw.NewLoginThrottle(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.Burst)

	site, err := web.New(web.Config{
		Service:  d.svc,
		Sessions: sessions,
		IndexCache: pagecache.NewMiddleware(d.cache, "index", cfg.Cache.IndexTTL,
			pagecache.WithObserver(m),
			pagecache.WithLogger(logger),
		),
		Throttle:       throttle,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		Logger:         logger,
	})
	if err != nil {
		d.Close()
		return nil, &ServerError{Op: "NewServer", Err: err, ExitCode: ExitConfigError}
	}

	apiHandler := api.NewHandler(d.svc, logger, Version)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(webmw.RequestLogger(logger))
	r.Use(m.Middleware)
	r.Use(sessions.Middleware(d.svc, logger))

	r.Get("/health", apiHandler.Health)
	r.Get("/ready", apiHandler.Ready)
	r.Handle("/metrics", m.Handler())
	r.Mount("/api/v1", apiHandler.Routes())
	r.Mount("/media", http.StripPrefix("/media", d.media.Handler()))
	r.Mount("/", site.Routes())

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("server configured",
		"database_driver", cfg.Database.Driver,
		"cache_backend", cfg.Cache.Backend,
		"media_root", cfg.Media.Root,
		"page_size", cfg.Site.PageSize,
	)

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		deps:       d,
		throttle:   throttle,
		logger:     logger,
	}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweepThrottle(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			"address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		s.deps.Close()
		return &ServerError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.deps.Close()

	s.logger.Info("shutdown complete")
	return nil
}

func (s *Server) sweepThrottle(ctx context.Context) {
	ticker := time.NewTicker(throttleSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.throttle.Cleanup(maxTrackedClients)
		}
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
