package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/itsatony/rahub/api"
	"github.com/itsatony/rahub/api/middleware"
	"github.com/itsatony/rahub/internal/cleanup"
	"github.com/itsatony/rahub/internal/config"
	"github.com/itsatony/rahub/internal/database"
	"github.com/itsatony/rahub/internal/hubservice"
	"github.com/itsatony/rahub/internal/monitoring"
	"github.com/itsatony/rahub/internal/repository/files"
	"github.com/itsatony/rahub/internal/repository/postgres"
	"github.com/itsatony/rahub/internal/secrets"
	"github.com/itsatony/rahub/internal/service"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	db         database.DB
	redis      *redis.Client
	hubservice *hubservice.HubService
	ingest     *service.Service
	monitoring *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config: cfg,
		srv:    srv,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	s.db = initAppDB(s.config.Database.AppDB)
	defer s.db.Close()

	s.monitoring = monitoring.NewService(monitoring.Config{Stream: s.config.Redis.Stream}, s.initEventSink())
	if s.redis != nil {
		defer s.redis.Close()
	}

	s.initializeServices()

	// Set up cleanup event handlers
	s.setupCleanupHandlers()

	s.srv.Handler = s.setupRoutes()

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// Ingest is the hand-off point for the device protocol layer, which runs
// outside this server: it parses device requests and calls the returned
// service for logins, channel definitions, readings, blobs and config.
func (s *Server) Ingest() *service.Service {
	return s.ingest
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// setupRoutes builds the admin API and wraps it in recovery, access log and CORS
func (s *Server) setupRoutes() http.Handler {
	auth := middleware.NewKeycloakMiddleware(middleware.KeycloakConfig{
		URL:          s.config.Keycloak.URL,
		Realm:        s.config.Keycloak.Realm,
		ClientID:     s.config.Keycloak.ClientID,
		ClientSecret: s.config.Keycloak.ClientSecret,
	})

	router := api.NewRouter(s.hubservice, auth, s.config.Keycloak.RequiredRole)
	router.Resources.SetHealthCheck(s.handleHealth())

	var h http.Handler = router
	h = handlers.CORS(
		handlers.AllowedOrigins(s.config.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(h)
	h = handlers.CombinedLoggingHandler(os.Stdout, h)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	return h
}

// handleHealth reports the version and whether the database answers
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		if err := s.db.Ping(ctx); err != nil {
			nuts.L.Warnf("[Server] Health check: database unavailable: %v", err)
			status, code = "degraded", http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write([]byte(`{"status":"` + status + `","version":"` + nuts.GetVersion() + `"}`))
	}
}

func (s *Server) setupCleanupHandlers() {
	// Handle device deletion events
	s.hubservice.Cleanup.OnCleanup(cleanup.EventDeviceDeleted, func(id int64) {
		nuts.L.Infof("[Cleanup] Device %d and all associated data deleted", id)
		s.monitoring.RecordEvent(cleanup.EventDeviceDeleted, map[string]string{
			"device_id": strconv.FormatInt(id, 10),
		})
	})

	// Handle blob deletion events
	s.hubservice.Cleanup.OnCleanup(cleanup.EventBlobDeleted, func(id int64) {
		nuts.L.Infof("[Cleanup] Blob %d deleted", id)
		s.monitoring.RecordEvent(cleanup.EventBlobDeleted, map[string]string{
			"blob_id": strconv.FormatInt(id, 10),
		})
	})
}

// initializeServices creates repositories and both services on the app database
func (s *Server) initializeServices() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, s.db); err != nil {
		nuts.L.Fatalf("[Server] Failed to migrate schema: %v", err)
	}
	nuts.L.Infof("[Server] Schema migrated: devices, sessions, sensors, measures, blobs")

	fileRepo, err := files.NewFileRepository(files.FileConfig{
		BasePath:    s.config.FileStore.BasePath,
		MaxFileSize: s.config.FileStore.MaxFileSize,
	})
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize file repository: %v", err)
	}

	cipher, err := secrets.NewCipher(s.config.Security.PassphraseKey)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize passphrase cipher: %v", err)
	}

	s.hubservice = hubservice.New(postgres.NewDeviceRepository(s.db), fileRepo, cipher, s.config.Server.PublicURL)
	if err := s.hubservice.Validate(); err != nil {
		nuts.L.Fatalf("[Server] Invalid hub service: %v", err)
	}

	s.ingest = service.New(
		postgres.NewSessionRepository(s.db),
		postgres.NewTelemetryRepository(s.db),
		fileRepo,
		s.monitoring,
	)
	if err := s.ingest.Validate(); err != nil {
		nuts.L.Fatalf("[Server] Invalid device service: %v", err)
	}
}

// initEventSink connects Redis when configured; events are only logged otherwise
func (s *Server) initEventSink() monitoring.EventSink {
	if s.config.Redis.Host == "" {
		nuts.L.Infof("[Server] Redis not configured, events are only logged")
		return nil
	}

	s.redis = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", s.config.Redis.Host, s.config.Redis.Port),
		Password: s.config.Redis.Password,
		DB:       s.config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		nuts.L.Warnf("[Server] Redis unavailable at %s: %v", s.config.Redis.Host, err)
	}
	return monitoring.NewRedisSink(s.redis, s.config.Redis.Stream)
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to AppDB: %v", err)
	}
	// Set up connection timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping database: %v", err)
	}
	return wrappedDB
}
