package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"coffee-change.backend/internal/config"
	"coffee-change.backend/internal/infrastructure/blockchain"
	"coffee-change.backend/internal/infrastructure/blockscout"
	"coffee-change.backend/internal/infrastructure/jobs"
	"coffee-change.backend/internal/infrastructure/migrations"
	"coffee-change.backend/internal/infrastructure/repositories"
	"coffee-change.backend/internal/interfaces/http/handlers"
	"coffee-change.backend/internal/interfaces/http/middleware"
	"coffee-change.backend/internal/usecases"
	"coffee-change.backend/pkg/logger"
	"coffee-change.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt:    false,
			TranslateError: true,
		})
	}
	runMigrations = migrations.Run
	dialChain     = blockchain.NewEVMClient
	runServer     = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB      = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Redis backs the price cache and idempotency keys; both degrade without it.
	if cfg.Redis.URL != "" {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		logger.Info(context.Background(), "Redis initialized")
	} else {
		log.Println("⚠️ REDIS_URL not set, price cache and idempotency disabled")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
		if cfg.Database.RunMigrations {
			if err := runMigrations(dsn); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Println("✅ Migrations applied")
		}
	}

	userRepo := repositories.NewUserRepository(db)
	roundupRepo := repositories.NewRoundupRepository(db)
	uow := repositories.NewUnitOfWork(db)

	source := blockscout.NewClient(blockscout.Config{
		BaseURL:           cfg.TransferSource.BaseURL,
		TokenAddress:      cfg.TransferSource.TokenAddress,
		Timeout:           cfg.TransferSource.Timeout,
		RequestsPerSecond: cfg.TransferSource.RequestsPerSecond,
		Burst:             cfg.TransferSource.Burst,
		MaxPages:          cfg.TransferSource.MaxPages,
	})

	// Chain readers stay nil interfaces when no RPC is reachable.
	var (
		receipts  usecases.ReceiptFetcher
		oracle    usecases.OracleReader
		positions usecases.PositionReader
	)
	if evm := connectChain(cfg.Blockchain.RPCURL); evm != nil {
		defer evm.Close()
		receipts = evm
		if o, err := blockchain.NewChronicleOracle(evm, cfg.Blockchain.OracleAddress); err != nil {
			log.Printf("⚠️ Price oracle disabled: %v", err)
		} else {
			oracle = o
		}
		if c, err := blockchain.NewCoffeeChangeContract(evm, cfg.Blockchain.CoffeeChangeAddress); err != nil {
			log.Printf("⚠️ CoffeeChange contract disabled: %v", err)
		} else {
			positions = c
		}
	}

	syncUsecase := usecases.NewSyncUsecase(userRepo, roundupRepo, source)
	balanceUsecase := usecases.NewBalanceUsecase(userRepo, roundupRepo)
	depositUsecase := usecases.NewDepositUsecase(userRepo, roundupRepo, uow, receipts, cfg.Blockchain.VerifyDepositReceipt)
	priceUsecase := usecases.NewPriceUsecase(
		oracle,
		balanceUsecase,
		decimal.NewFromFloat(cfg.Blockchain.FallbackEthPrice),
		cfg.Blockchain.PriceCacheTTL,
	)
	portfolioUsecase := usecases.NewPortfolioUsecase(positions, balanceUsecase)

	roundupHandler := handlers.NewRoundupHandler(syncUsecase, balanceUsecase, depositUsecase)
	priceHandler := handlers.NewPriceHandler(priceUsecase, portfolioUsecase)
	diagnosticsHandler := handlers.NewDiagnosticsHandler(userRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resyncJob := jobs.NewResyncJob(userRepo, syncUsecase, cfg.Jobs.ResyncInterval, cfg.Jobs.ResyncConcurrency)
	if err := resyncJob.Start(ctx); err != nil {
		log.Printf("⚠️ Wallet resync job not started: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIRoutes(r, routeDeps{
		roundupHandler:     roundupHandler,
		priceHandler:       priceHandler,
		diagnosticsHandler: diagnosticsHandler,
	})

	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		resyncJob.Stop()
		cancel()
	}()

	log.Printf("🚀 Coffee Change Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// connectChain returns nil when the RPC endpoint is unset or unreachable.
func connectChain(rpcURL string) *blockchain.EVMClient {
	if rpcURL == "" {
		log.Println("⚠️ EVM_RPC_URL not set, on-chain reads disabled")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	evm, err := dialChain(ctx, rpcURL)
	if err != nil {
		log.Printf("⚠️ EVM RPC unavailable: %v (price falls back, position disabled)", err)
		return nil
	}
	log.Printf("✅ Connected to EVM chain %s", evm.ChainID())
	return evm
}
