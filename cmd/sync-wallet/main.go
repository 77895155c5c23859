package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"coffee-change.backend/internal/config"
	"coffee-change.backend/internal/domain/entities"
	"coffee-change.backend/internal/infrastructure/blockscout"
	"coffee-change.backend/internal/infrastructure/repositories"
	"coffee-change.backend/internal/usecases"
)

var openSyncDB = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
	})
}

var openSyncSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type syncRuntime interface {
	ListWalletAddresses(ctx context.Context) ([]string, error)
	Sync(ctx context.Context, walletAddress string) (*entities.SyncResult, error)
}

type syncWalletDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (syncRuntime, io.Closer, error)
	out     io.Writer
}

type syncRuntimeImpl struct {
	users       *repositories.UserRepository
	syncUsecase *usecases.SyncUsecase
}

func (r syncRuntimeImpl) ListWalletAddresses(ctx context.Context) ([]string, error) {
	return r.users.ListWalletAddresses(ctx)
}

func (r syncRuntimeImpl) Sync(ctx context.Context, walletAddress string) (*entities.SyncResult, error) {
	return r.syncUsecase.Sync(ctx, walletAddress)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultSyncWalletDeps() syncWalletDeps {
	return syncWalletDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (syncRuntime, io.Closer, error) {
			db, err := openSyncDB(cfg.Database.URL())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}

			sqlDB, err := openSyncSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}

			userRepo := repositories.NewUserRepository(db)
			roundupRepo := repositories.NewRoundupRepository(db)
			source := blockscout.NewClient(blockscout.Config{
				BaseURL:           cfg.TransferSource.BaseURL,
				TokenAddress:      cfg.TransferSource.TokenAddress,
				Timeout:           cfg.TransferSource.Timeout,
				RequestsPerSecond: cfg.TransferSource.RequestsPerSecond,
				Burst:             cfg.TransferSource.Burst,
				MaxPages:          cfg.TransferSource.MaxPages,
			})
			return syncRuntimeImpl{
				users:       userRepo,
				syncUsecase: usecases.NewSyncUsecase(userRepo, roundupRepo, source),
			}, sqlDB, nil
		},
		out: os.Stdout,
	}
}

func runSyncWallet(args []string, deps syncWalletDeps) error {
	def := defaultSyncWalletDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = os.Stdout
	}

	fs := flag.NewFlagSet("sync-wallet", flag.ContinueOnError)
	walletFlag := fs.String("wallet", "", "wallet address to sync")
	allFlag := fs.Bool("all", false, "sync every stored wallet")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *walletFlag == "" && !*allFlag {
		return fmt.Errorf("--wallet or --all is required")
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	runtime, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx := context.Background()
	wallets := []string{*walletFlag}
	if *allFlag {
		wallets, err = runtime.ListWalletAddresses(ctx)
		if err != nil {
			return fmt.Errorf("failed to list wallets: %w", err)
		}
	}

	failed := 0
	for _, wallet := range wallets {
		res, err := runtime.Sync(ctx, wallet)
		if err != nil {
			failed++
			_, _ = fmt.Fprintf(deps.out, "wallet=%s error=%v\n", wallet, err)
			continue
		}
		_, _ = fmt.Fprintf(deps.out, "wallet=%s new=%d duplicates=%d whole_dollar=%d fetched=%d message=%q\n",
			wallet, res.NewRecords, res.SkippedDuplicates, res.SkippedWholeDollar, res.TotalFetched, res.Message)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d wallets failed to sync", failed, len(wallets))
	}
	return nil
}

func main() {
	if err := runSyncWallet(os.Args[1:], defaultSyncWalletDeps()); err != nil {
		log.Fatal(err)
	}
}
