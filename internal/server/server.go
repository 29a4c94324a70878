package server

import (
	"fmt"
	"net/http"
	"time"

	"warunku-backend/internal/config"
	"warunku-backend/internal/database"
	custommiddleware "warunku-backend/internal/middleware"
	"warunku-backend/internal/repository"
	"warunku-backend/internal/service"
	"warunku-backend/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Service) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))

	server := &Server{
		config: cfg,
		logger: logger,
		db:     db,
	}

	if cfg.RateLimit.Enabled {
		server.redis = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		router.Use(custommiddleware.RateLimitMiddleware(server.redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerMinute,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/health", server.healthHandler)

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())
	debtRepo := repository.NewDebtRecordRepository(db.DB())

	// Initialize services
	productService := service.NewProductService(productRepo)
	customerService := service.NewCustomerService(customerRepo, debtRepo)
	debtService := service.NewDebtService(debtRepo, customerRepo, productService)

	// Initialize handlers and register routes
	transport.NewProductHandler(productService, logger).RegisterRoutes(router)
	transport.NewCustomerHandler(customerService, debtService, logger).RegisterRoutes(router)
	transport.NewDebtHandler(debtService, logger).RegisterRoutes(router)

	server.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health()

	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
	}

	custommiddleware.RespondWithJSON(w, status, health)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
