package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	securityport "github.com/amirhossein-jamali/marketplace/internal/domain/port/security"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/account"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/admin"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/catalog"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/purchase"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/workflow"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/assets"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/security"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/store"
	timeProvider "github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	} else if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := newLogger(cfg)
	defer appLogger.Flush() //nolint:errcheck

	tp := timeProvider.NewRealTimeProvider()
	ctx := context.Background()

	// Record store backend
	backend, err := openBackend(ctx, cfg, appLogger, tp)
	if err != nil {
		appLogger.Error("Failed to open record store", map[string]any{
			"backend": cfg.Store.Backend,
			"error":   err.Error(),
		})
		os.Exit(1)
	}
	defer backend.Close() //nolint:errcheck

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	seed, err := buildSeed(cfg, hasher)
	if err != nil {
		appLogger.Error("Failed to prepare seed data", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	uow := store.NewUnitOfWork(backend, seed, coreport.Duration(cfg.Store.LockTimeoutMs)*coreport.Millisecond, appLogger, tp)
	if err := uow.Initialize(ctx); err != nil {
		// A corrupt family stays quarantined until an admin repairs it; the rest keep serving
		appLogger.Error("Record store initialized with errors", map[string]any{"error": err.Error()})
	}

	images, err := assets.NewImageStore(cfg.Assets.ImageDir, cfg.Assets.DefaultImage, cfg.Assets.MaxUploadBytes)
	if err != nil {
		appLogger.Error("Failed to open image store", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	issuer, err := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, coreport.Duration(cfg.Auth.TokenTTL), tp)
	if err != nil {
		appLogger.Error("Failed to create session issuer", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	startingBalance, err := cfg.Market.StartingBalanceCents()
	if err != nil {
		appLogger.Error("Invalid starting balance", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	// Initialize use cases
	ledgerSvc := ledger.NewLedger(tp, appLogger)
	catalogUseCase := catalog.NewCatalogUseCase(uow, images, tp, appLogger)
	accountUseCase := account.NewAccountUseCase(uow, hasher, issuer, account.Config{StartingBalance: startingBalance}, tp, appLogger)
	purchaseUseCase := purchase.NewPurchaseUseCase(uow, catalogUseCase, ledgerSvc, appLogger)
	workflowUseCase := workflow.NewWorkflowUseCase(uow, tp, appLogger)
	adminUseCase := admin.NewAdminUseCase(uow, ledgerSvc, tp, appLogger)

	// Initialize Gin router
	router := gin.New()
	router.MaxMultipartMemory = cfg.Assets.MaxUploadBytes
	routes.SetupMiddlewares(router, appLogger, tp, cfg.Server.AllowedOrigins)
	routes.SetupRoutes(router, routes.Handlers{
		Account:  handler.NewAccountHandler(accountUseCase, appLogger),
		Catalog:  handler.NewCatalogHandler(catalogUseCase, images, appLogger),
		Purchase: handler.NewPurchaseHandler(purchaseUseCase, appLogger),
		Workflow: handler.NewWorkflowHandler(workflowUseCase, appLogger),
		Admin:    handler.NewAdminHandler(adminUseCase, appLogger),
	}, accountUseCase)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":    server.Addr,
			"env":     cfg.Environment,
			"backend": cfg.Store.Backend,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

func newLogger(cfg *config.Config) coreport.Logger {
	return logger.NewZapLogger(logger.Options{
		Production: cfg.Logger.Format == "json" || cfg.Environment == config.Production,
		Level:      logger.ParseLevel(cfg.Logger.Level),
		File: logger.FileOptions{
			Enabled:    cfg.Logger.File.Enabled,
			Path:       cfg.Logger.File.Path,
			MaxSizeMB:  cfg.Logger.File.MaxSizeMB,
			MaxBackups: cfg.Logger.File.MaxBackups,
			MaxAgeDays: cfg.Logger.File.MaxAgeDays,
			Compress:   cfg.Logger.File.Compress,
		},
	})
}

// openBackend selects the snapshot backend named by store.backend
func openBackend(ctx context.Context, cfg *config.Config, appLogger coreport.Logger, tp coreport.TimeProvider) (persistence.SnapshotBackend, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		appLogger.Warn("Using in-memory record store; data is lost on exit", nil)
		return store.NewMemoryBackend(), nil

	case config.BackendPostgres:
		dbManager := database.NewManager(database.CreateConfigFromViperConfig(cfg), appLogger, tp)
		if _, err := dbManager.Connect(ctx); err != nil {
			return nil, err
		}
		if err := dbManager.Migrate(ctx); err != nil {
			dbManager.Close() //nolint:errcheck
			return nil, err
		}
		return database.NewSnapshotBackend(dbManager, appLogger, tp), nil

	default:
		return store.NewFileBackend(cfg.Store.DataDir, cfg.Store.JournalName, appLogger)
	}
}

// buildSeed hashes the configured admin password for the first run of an empty store
func buildSeed(cfg *config.Config, hasher securityport.PasswordHasher) (store.Seed, error) {
	seed := store.Seed{Items: store.DefaultSeedItems()}
	if cfg.Market.AdminName == "" {
		return seed, nil
	}

	hash, err := hasher.Hash(cfg.Market.AdminPassword)
	if err != nil {
		return store.Seed{}, err
	}
	balance, err := cfg.Market.AdminBalanceCents()
	if err != nil {
		return store.Seed{}, err
	}

	seed.AdminName = cfg.Market.AdminName
	seed.AdminPasswordHash = hash
	seed.AdminBalance = balance
	return seed, nil
}
