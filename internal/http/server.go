package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"go-skud-reconciliation-ui/internal/config"
	"go-skud-reconciliation-ui/internal/connectors/directory"
	"go-skud-reconciliation-ui/internal/connectors/sheets"
	"go-skud-reconciliation-ui/internal/connectors/skuddb"
)

// Server wraps an HTTP server and route handlers.
type Server struct {
	httpServer    *nethttp.Server
	logger        *zap.Logger
	sessions      *sessionStore
	loginUsername string
	loginPassword string
	sheetReader   *sheets.Reader
	skudStore     *skuddb.Store
	dirStore      *directory.Store
}

// NewServer creates a configured HTTP server with all routes registered.
func NewServer(cfg config.Config, logger *zap.Logger) (*Server, error) {
	var sheetReader *sheets.Reader
	if cfg.GoogleSheetURL != "" {
		reader, err := sheets.NewReader(cfg.GoogleSheetURL, cfg.SheetTimeout)
		if err != nil {
			return nil, err
		}
		sheetReader = reader
	}

	var skudStore *skuddb.Store
	if cfg.SKUDDBEnabled {
		store, err := skuddb.NewStore(cfg)
		if err != nil {
			return nil, err
		}
		skudStore = store
	}

	var dirStore *directory.Store
	if cfg.DirectorySQLitePath != "" {
		store, err := directory.NewSQLiteStore(cfg.DirectorySQLitePath)
		if err != nil {
			return nil, err
		}
		dirStore = store
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, err
	}

	s := &Server{
		logger:        logger,
		sessions:      newSessionStore(cfg.SessionTTL),
		loginUsername: cfg.LoginUsername,
		loginPassword: cfg.LoginPassword,
		sheetReader:   sheetReader,
		skudStore:     skudStore,
		dirStore:      dirStore,
	}

	mux := nethttp.NewServeMux()
	mux.HandleFunc("/", s.requirePage(dashboardHandler))
	mux.HandleFunc("/login", s.loginHandler)
	mux.HandleFunc("/logout", s.logoutHandler)
	mux.HandleFunc("/favicon.ico", faviconHandler)
	mux.Handle("/metrics", metricsHandler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler)
	mux.HandleFunc("/api/compare", s.requireAPI(compareHandler(cfg, sheetReader, skudStore, dirStore, logger)))
	mux.HandleFunc("/api/v1/projects", s.requireAPI(projectsHandler(sheetReader)))
	mux.HandleFunc("/api/v1/directory", s.requireAPI(directoryHandler(cfg.DirectoryListLimit, dirStore)))
	mux.HandleFunc("/api/v1/directory/", s.requireAPI(directoryEntryHandler(dirStore)))
	mux.HandleFunc("/api/v1/status/services", s.requireAPI(servicesStatusHandler(sheetReader, skudStore, dirStore)))

	s.httpServer = &nethttp.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.loggingMiddleware(observabilityMiddleware(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server and closes the stores.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.skudStore != nil {
		_ = s.skudStore.Close()
	}
	if s.dirStore != nil {
		_ = s.dirStore.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func readyHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (s *Server) loggingMiddleware(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w nethttp.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
