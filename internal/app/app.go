// Package app wires configuration, storage, repositories, services and handlers into an HTTP router
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/onlineshop/backend/internal/auth/middleware"
	"github.com/onlineshop/backend/internal/auth/service"
	"github.com/onlineshop/backend/internal/config"
	"github.com/onlineshop/backend/internal/handlers"
	loggerMiddleware "github.com/onlineshop/backend/internal/logger/middleware"
	"github.com/onlineshop/backend/internal/middlewares"
	"github.com/onlineshop/backend/internal/models"
	"github.com/onlineshop/backend/internal/repositories"
	"github.com/onlineshop/backend/internal/services"
	"github.com/onlineshop/backend/internal/storage"
	"github.com/onlineshop/backend/internal/upload"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// maxRequestSize bounds every request body, multipart uploads included
const maxRequestSize = 20 << 20

// NewRouter builds the API router on top of an open database
func NewRouter(ctx context.Context, cfg *config.Config, db *sql.DB, logger *zap.Logger) (http.Handler, error) {
	store, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	uploader := upload.NewHandler(store, cfg.Storage.UploadMaxMemory, logger)

	// Initialize JWT token generator and password hasher
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	hasher := service.NewPasswordHasher(0)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger)
	roleRepo := repositories.NewRoleRepository(db, logger)
	productRepo := repositories.NewProductRepository(db, logger)
	orderRepo := repositories.NewOrderRepository(db, logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, roleRepo, tokenGenerator, hasher, logger)
	userService := services.NewUserService(userRepo, roleRepo, productRepo, orderRepo, hasher, logger)
	productService := services.NewProductService(db, productRepo, userRepo, uploader, cfg.Product.TxTimeout, logger)
	orderService := services.NewOrderService(orderRepo, userRepo, logger)
	roleService := services.NewRoleService(roleRepo, logger)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(authService, userService, logger)
	productHandler := handlers.NewProductHandler(productService, logger)
	orderHandler := handlers.NewOrderHandler(orderService, logger)
	roleHandler := handlers.NewRoleHandler(roleService, logger)

	// Initialize auth middleware
	authMiddleware := middleware.AuthMiddleware(tokenGenerator, authService)
	profileMiddleware := middleware.RoleMiddleware(tokenGenerator, authService, middleware.HasAnyRole, models.RoleNameUser)

	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger))
	r.Use(middlewares.RecoveryMiddleware(logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	if cfg.Server.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.Server.RateLimitPerMinute, time.Minute))
	}
	r.Use(middlewares.RequestSizeLimitMiddleware(maxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Route("/api/v1", func(r chi.Router) {
		userHandler.RegisterRoutes(r, profileMiddleware)
		productHandler.RegisterRoutes(r, authMiddleware)
		orderHandler.RegisterRoutes(r)
		roleHandler.RegisterRoutes(r)
	})

	return r, nil
}
