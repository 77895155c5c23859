package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/sync/errgroup"

	"coffee-change.backend/internal/domain/entities"
)

type walletLister interface {
	ListWalletAddresses(ctx context.Context) ([]string, error)
}

type walletSyncer interface {
	Sync(ctx context.Context, walletAddress string) (*entities.SyncResult, error)
}

var newScheduler = func() (gocron.Scheduler, error) {
	return gocron.NewScheduler()
}

// ResyncJob periodically re-syncs every known wallet
type ResyncJob struct {
	users       walletLister
	syncer      walletSyncer
	interval    time.Duration
	concurrency int
	scheduler   gocron.Scheduler
}

func NewResyncJob(users walletLister, syncer walletSyncer, interval time.Duration, concurrency int) *ResyncJob {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ResyncJob{
		users:       users,
		syncer:      syncer,
		interval:    interval,
		concurrency: concurrency,
	}
}

// Start schedules the job. A zero interval leaves it disabled.
func (j *ResyncJob) Start(ctx context.Context) error {
	if j.interval <= 0 {
		log.Println("⏸️ Wallet resync job disabled")
		return nil
	}

	sched, err := newScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(func() { j.runOnce(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return err
	}

	log.Printf("🕐 Starting wallet resync job (every %s)...", j.interval)
	sched.Start()
	j.scheduler = sched
	return nil
}

func (j *ResyncJob) Stop() {
	if j.scheduler == nil {
		return
	}
	if err := j.scheduler.Shutdown(); err != nil {
		log.Printf("❌ Error stopping wallet resync job: %v", err)
		return
	}
	j.scheduler = nil
	log.Println("⏹️ Wallet resync job stopped")
}

// runOnce syncs every stored wallet and returns how many syncs failed
func (j *ResyncJob) runOnce(ctx context.Context) int {
	wallets, err := j.users.ListWalletAddresses(ctx)
	if err != nil {
		log.Printf("❌ Error listing wallets for resync: %v", err)
		return 0
	}
	if len(wallets) == 0 {
		return 0
	}

	log.Printf("🔄 Resyncing %d wallets...", len(wallets))

	failures := make([]bool, len(wallets))
	inserted := make([]int, len(wallets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)
	for i, wallet := range wallets {
		i, wallet := i, wallet
		g.Go(func() error {
			result, err := j.syncer.Sync(gctx, wallet)
			if err != nil {
				failures[i] = true
				log.Printf("❌ Resync failed for %s: %v", wallet, err)
				return nil
			}
			inserted[i] = result.NewRecords
			return nil
		})
	}
	_ = g.Wait()

	failed, total := 0, 0
	for i := range wallets {
		if failures[i] {
			failed++
		}
		total += inserted[i]
	}
	log.Printf("✅ Resynced %d wallets: %d new roundups, %d failures", len(wallets), total, failed)
	return failed
}
