package router

import (
	"fmt"
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, logger *slog.Logger) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := handlers.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle)))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	adminHandler := handlers.NewAdminOrderHandler(facade)
	addressHandler := handlers.NewAddressHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	user := api.Group("")
	user.Use(middleware.SessionRequired(facade))
	user.POST("/auth/logout", authHandler.Logout)
	user.GET("/session", authHandler.Me)
	user.GET("/orders", orderHandler.List)
	user.GET("/orders/:id", orderHandler.Get)
	user.PUT("/orders/:id/received", orderHandler.MarkReceived)
	user.GET("/addresses/provinces", addressHandler.Provinces)
	user.PUT("/addresses/province", addressHandler.SelectProvince)
	user.PUT("/addresses/district", addressHandler.SelectDistrict)

	admin := user.Group("/admin")
	admin.Use(middleware.BackOfficeRequired())
	admin.GET("/orders", adminHandler.List)
	admin.GET("/orders/:id", adminHandler.Get)
	admin.PUT("/orders/:id/status", adminHandler.UpdateStatus)
	admin.DELETE("/orders/:id", adminHandler.Delete)

	return engine, nil
}
