package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/inkwell-hq/inkwell-engine/pkg/auth"
	"github.com/inkwell-hq/inkwell-engine/pkg/config"
	"github.com/inkwell-hq/inkwell-engine/pkg/database"
	"github.com/inkwell-hq/inkwell-engine/pkg/handlers"
	"github.com/inkwell-hq/inkwell-engine/pkg/metrics"
	"github.com/inkwell-hq/inkwell-engine/pkg/middleware"
	"github.com/inkwell-hq/inkwell-engine/pkg/repositories"
	"github.com/inkwell-hq/inkwell-engine/pkg/retry"
	"github.com/inkwell-hq/inkwell-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database))

	ctx := context.Background()

	// Migrations run over database/sql; the application pool is pgx-native.
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open database for migrations", zap.Error(err))
	}
	if err := retry.DoIfRetryable(ctx, retry.StartupConfig(), func() error {
		return database.RunMigrations(sqlDB, "migrations", logger)
	}); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	// The database may still be starting when we are; wait it out.
	db, err := retry.DoWithResult(ctx, retry.StartupConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Auth: JWT validation against the configured JWKS issuers.
	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	defer jwksClient.Close()

	authService := auth.NewAuthService(jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)

	tenantProvider := database.NewTenantScopeProvider(db)
	tenantMiddleware := newTenantMiddleware(tenantProvider, logger)

	// Repositories and services
	auditRepo := repositories.NewAuditRepository()
	documentRepo := repositories.NewDocumentRepository()
	commentRepo := repositories.NewCommentRepository()
	membershipRepo := repositories.NewMembershipRepository()

	auditService := services.NewAuditService(auditRepo, membershipRepo, logger)
	documentService := services.NewDocumentService(documentRepo, membershipRepo, auditService, logger)
	commentService := services.NewCommentService(commentRepo, documentRepo, membershipRepo, auditService, logger)
	membershipService := services.NewMembershipService(membershipRepo, auditService, logger)

	metrics.Init()

	mux := http.NewServeMux()

	// Register handlers
	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	documentsHandler := handlers.NewDocumentsHandler(documentService, logger)
	documentsHandler.RegisterRoutes(mux, authMiddleware, tenantMiddleware)

	commentsHandler := handlers.NewCommentsHandler(commentService, logger)
	commentsHandler.RegisterRoutes(mux, authMiddleware, tenantMiddleware)

	auditHandler := handlers.NewAuditHandler(auditService, cfg, logger)
	auditHandler.RegisterRoutes(mux, authMiddleware, tenantMiddleware)

	membershipsHandler := handlers.NewMembershipsHandler(membershipService, logger)
	membershipsHandler.RegisterRoutes(mux, authMiddleware, tenantMiddleware)

	mux.Handle("GET /metrics", metrics.Handler())

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, logger)

	var handler http.Handler = mux
	handler = rateLimiter.Limit(handler)
	handler = metrics.Instrument(handler)
	handler = middleware.RequestLogger(logger)(handler)
	handler = middleware.RequestID(handler)

	srv := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Starting inkwell-engine",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.Version))

		var err error
		if cfg.TLSCertPath != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Shutdown did not complete cleanly", zap.Error(err))
	}
	logger.Info("Stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newTenantMiddleware binds each authenticated request to a tenant-scoped
// database connection. It runs after the auth middleware, which guarantees
// the organization id is present in the request context.
func newTenantMiddleware(provider *database.TenantScopeProvider, logger *zap.Logger) handlers.TenantMiddleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			orgID := auth.GetOrgIDFromContext(r.Context())
			if orgID == uuid.Nil {
				_ = handlers.ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing organization context")
				return
			}

			ctx, cleanup, err := provider.WithTenantScope(r.Context(), orgID)
			if err != nil {
				logger.Error("Failed to acquire tenant scope",
					zap.String("org_id", orgID.String()),
					zap.Error(err))
				_ = handlers.ErrorResponse(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
				return
			}
			defer cleanup()

			next(w, r.WithContext(ctx))
		}
	}
}
