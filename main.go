// Gnosis Auth server entrypoint.
//
// @title Gnosis Auth API
// @version 1.0.0
// @description Identity and token-issuance service for the Gnosis ecosystem.

package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/gnosis-auth/backend/internal/client"
	"github.com/gnosis-auth/backend/internal/config"
	"github.com/gnosis-auth/backend/internal/db"
	"github.com/gnosis-auth/backend/internal/handler"
	"github.com/gnosis-auth/backend/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	store, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("[Main] Failed to connect to postgres: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("[Main] Failed to ensure schema: %v", err)
	}
	if err := store.PruneOAuthStates(ctx); err != nil {
		log.Printf("[Main] Failed to prune stale oauth states: %v", err)
	}

	// The signing key is loaded exactly once; a missing or unreadable
	// key must not let the process serve traffic.
	jwtSvc, err := service.NewJWTService(cfg.JWT)
	if err != nil {
		log.Fatalf("[Main] Failed to initialize JWT service: %v", err)
	}

	mailer := client.NewMailer(cfg.Email)
	magicLink := service.NewMagicLinkService(store, jwtSvc, mailer, cfg.App.ConsoleDelivery(), cfg.App.Domain)
	apiTokens := service.NewAPITokenService(store, store, jwtSvc)

	var providers []service.Provider
	if cfg.OAuth.GoogleClientID != "" {
		google, err := client.NewGoogleProvider(ctx, cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.App.Domain)
		if err != nil {
			log.Fatalf("[Main] Failed to initialize Google provider: %v", err)
		}
		providers = append(providers, google)
	}
	if cfg.OAuth.GitHubClientID != "" {
		providers = append(providers, client.NewGitHubProvider(cfg.OAuth.GitHubClientID, cfg.OAuth.GitHubClientSecret, cfg.App.Domain))
	}
	oauthSvc := service.NewOAuthService(store, store, jwtSvc, providers...)

	authHandler := handler.NewAuthHandler(magicLink)
	oauthHandler := handler.NewOAuthHandler(oauthSvc)
	tokenHandler := handler.NewTokenHandler(apiTokens)
	jwtHandler := handler.NewJWTHandler(jwtSvc, apiTokens)

	router := gin.Default()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowCredentials))
	}

	router.GET("/", handler.Root)
	router.GET("/ping", handler.Ping)
	router.GET("/openapi.json", handler.OpenAPIDoc)

	router.POST("/api/auth/login", authHandler.Login)
	router.POST("/api/auth/token", authHandler.VerifyToken)
	router.GET("/api/auth/token", authHandler.VerifyTokenLink)

	router.GET("/api/oauth/:provider/login", oauthHandler.Login)
	router.GET("/api/oauth/:provider/callback", oauthHandler.Callback)

	router.POST("/auth", jwtHandler.Exchange)
	router.GET("/.well-known/jwks.json", jwtHandler.JWKS)

	authed := router.Group("/api", handler.AuthMiddleware(jwtSvc, store))
	authed.GET("/verify", jwtHandler.Verify)
	authed.GET("/tokens", tokenHandler.List)
	authed.POST("/tokens", tokenHandler.Create)
	authed.POST("/tokens/:uid/revoke", tokenHandler.Revoke)
	authed.DELETE("/tokens/:uid", tokenHandler.Delete)

	if cfg.App.EnableDevEndpoints() {
		devHandler := handler.NewDevHandler(store)
		router.POST("/dev/clear-database", devHandler.ClearDatabase)
	}

	log.Printf("[Main] Gnosis Auth server starting (env=%s, addr=%s)", cfg.App.Environment, cfg.App.Addr)
	if err := router.Run(cfg.App.Addr); err != nil {
		log.Fatalf("[Main] Server exited: %v", err)
	}
}
