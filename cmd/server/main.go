package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pigmemento/internal/config"
	"pigmemento/internal/database"
	"pigmemento/internal/handlers"
	"pigmemento/internal/repository"
	"pigmemento/internal/scheduler"
	"pigmemento/internal/security"
	"pigmemento/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Seed demo cases on an empty database
	if cfg.SeedDemoData {
		if err := db.SeedDemoCases(); err != nil {
			log.Printf("Warning: Failed to seed demo cases: %v", err)
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	caseRepo := repository.NewCaseRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)

	// Scheduler core works against the stats repository
	selector := scheduler.NewSelector(statsRepo)
	updater := scheduler.NewUpdater(statsRepo)

	// Initialize services
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	authService := service.NewAuthService(userRepo, tokenRepo, tokens, cfg.RefreshTokenTTL)
	caseService := service.NewCaseService(caseRepo, selector, updater)
	answerService := service.NewAnswerService(caseRepo, attemptRepo, updater)
	progressService := service.NewProgressService(attemptRepo, statsRepo)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	waitlistService := service.NewWaitlistService(waitlistRepo, emailService, cfg.WaitlistNotify)

	// Initialize handlers
	limiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(tokens, limiter)
	authHandler := handlers.NewAuthHandler(authService)
	caseHandler := handlers.NewCaseHandler(caseService)
	answerHandler := handlers.NewAnswerHandler(answerService)
	meHandler := handlers.NewMeHandler(authService, progressService)
	waitlistHandler := handlers.NewWaitlistHandler(waitlistService)
	adminHandler := handlers.NewAdminHandler(caseRepo, waitlistRepo)
	healthHandler := handlers.NewHealthHandler(db)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("POST /auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /auth/refresh", middleware.RateLimit(authHandler.Refresh))
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /waitlist", middleware.RateLimit(waitlistHandler.Join))

	// Case feed, anonymous allowed
	mux.HandleFunc("GET /cases", middleware.OptionalAuth(caseHandler.ListCases))
	mux.HandleFunc("GET /cases/{id}", caseHandler.GetCase)

	// Authenticated routes
	mux.HandleFunc("POST /answers", middleware.RequireAuth(answerHandler.SubmitAnswer))
	mux.HandleFunc("GET /answers/recent", middleware.RequireAuth(answerHandler.RecentAttempts))
	mux.HandleFunc("GET /me", middleware.RequireAuth(meHandler.GetMe))
	mux.HandleFunc("GET /me/progress", middleware.RequireAuth(meHandler.GetProgress))

	// Admin routes
	mux.HandleFunc("GET /admin/cases", middleware.RequireAdmin(adminHandler.ListCases))
	mux.HandleFunc("POST /admin/cases", middleware.RequireAdmin(adminHandler.CreateCase))
	mux.HandleFunc("GET /admin/cases/{id}", middleware.RequireAdmin(adminHandler.GetCase))
	mux.HandleFunc("PUT /admin/cases/{id}", middleware.RequireAdmin(adminHandler.UpdateCase))
	mux.HandleFunc("DELETE /admin/cases/{id}", middleware.RequireAdmin(adminHandler.DeleteCase))
	mux.HandleFunc("GET /admin/waitlist", middleware.RequireAdmin(adminHandler.WaitlistCount))

	// Wrap with logging middleware
	handler := middleware.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background refresh token cleanup
	go cleanupExpiredTokens(authService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// cleanupExpiredTokens periodically removes refresh tokens that can
// never be redeemed again
func cleanupExpiredTokens(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		deleted, err := authService.CleanupExpiredTokens()
		if err != nil {
			log.Printf("Failed to clean up expired tokens: %v", err)
			continue
		}
		if deleted > 0 {
			log.Printf("Cleaned up %d expired refresh tokens", deleted)
		}
	}
}
