package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/snapreward/apiserver/config"
	"github.com/snapreward/apiserver/internal/db"
	"github.com/snapreward/apiserver/internal/handlers"
	"github.com/snapreward/apiserver/internal/notify"
	"github.com/snapreward/apiserver/internal/services"
	"github.com/snapreward/apiserver/internal/storage"
	"github.com/snapreward/apiserver/internal/store"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	db         *sql.DB
	notifier   *notify.Notifier
	logger     *zap.Logger
}

// New constructs a Server with its storage, notifier, and routes wired.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objectStore, err := newObjectStorage(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	notifier, err := newNotifier(ctx, cfg.Notify, logger)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if notifier == nil {
		logger.Warn("notification broker not configured, notify routes disabled")
	}

	userRepo := store.NewUserRepository(dbConn)
	campaignRepo := store.NewCampaignRepository(dbConn)
	customerRepo := store.NewCustomerRepository(dbConn)
	submissionRepo := store.NewSubmissionRepository(dbConn)

	userService := services.NewUserService(userRepo)
	campaignService := services.NewCampaignService(campaignRepo)
	customerService := services.NewCustomerService(customerRepo)
	submissionService := services.NewSubmissionService(submissionRepo, campaignRepo, objectStore)
	dashboardService := services.NewDashboardService(campaignRepo, submissionRepo, customerRepo)

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}
	authMiddleware := handlers.RequireAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		handlers.RequestLogger(logger),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret)
	})
	router.Route("/api/campaigns", func(r chi.Router) {
		handlers.CampaignRouter(r, campaignService, authMiddleware)
	})
	router.Route("/api/submissions", func(r chi.Router) {
		handlers.SubmissionRouter(r, submissionService, authMiddleware)
	})
	router.Route("/api/customers", func(r chi.Router) {
		handlers.CustomerRouter(r, customerService, authMiddleware)
	})
	router.Route("/api/dashboard", func(r chi.Router) {
		handlers.DashboardRouter(r, dashboardService, authMiddleware)
	})
	if notifier != nil {
		router.Route("/api/notify", func(r chi.Router) {
			handlers.NotifyRouter(r, notifier, campaignService, authMiddleware)
		})
	}
	router.Route("/uploads", func(r chi.Router) {
		handlers.UploadsRouter(r, objectStore, logger)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		db:         dbConn,
		notifier:   notifier,
		logger:     logger,
	}, nil
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.notifier != nil {
		_ = s.notifier.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newObjectStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	switch cfg.Backend {
	case "", "local":
		backend, err := storage.NewLocalClient(cfg.LocalDir)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	case "minio":
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// newNotifier returns nil when no broker is configured; notify routes
// are then left unregistered.
func newNotifier(ctx context.Context, cfg config.NotifyConfig, logger *zap.Logger) (*notify.Notifier, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		if strings.TrimSpace(cfg.RabbitMQ.URL) == "" {
			return nil, nil
		}
		backend, err := notify.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return notify.New(backend, cfg.Channel, logger), nil
	case "pubsub":
		if strings.TrimSpace(cfg.PubSub.ProjectID) == "" {
			return nil, nil
		}
		backend, err := notify.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return notify.New(backend, cfg.Channel, logger), nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Backend)
	}
}
