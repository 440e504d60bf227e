package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
)

// WorkerModule registers the background workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

const defaultPurgeInterval = 10 * time.Minute

// CodePurger deletes expired one-time codes.
type CodePurger interface {
	PurgeExpiredCodes(ctx context.Context, now time.Time) (int64, error)
}

type WorkerParams struct {
	fx.In

	Lc  fx.Lifecycle
	DB  *repo.Client
	Cfg *config.Config
}

func RegisterWorkers(p WorkerParams) {
	interval := time.Duration(p.Cfg.Booking.PurgeIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = defaultPurgeInterval
	}

	var (
		cancel context.CancelFunc
		wg     sync.WaitGroup
	)
	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			wg.Add(1)
			go func() {
				defer wg.Done()
				runCodeJanitor(ctx, p.DB, interval, time.Now)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

// ---------------------------------------------------------------------------
// code_janitor
// ---------------------------------------------------------------------------

// runCodeJanitor purges expired codes every interval until ctx is done.
func runCodeJanitor(ctx context.Context, db CodePurger, interval time.Duration, now func() time.Time) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("code_janitor: started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("code_janitor: stopped")
			return
		case <-ticker.C:
			PurgeCodesOnce(ctx, db, now())
		}
	}
}

// PurgeCodesOnce runs a single purge and logs the outcome.
func PurgeCodesOnce(ctx context.Context, db CodePurger, now time.Time) (int64, error) {
	n, err := db.PurgeExpiredCodes(ctx, now)
	if err != nil {
		slog.Warn("code_janitor: purge failed", "err", err)
		return 0, err
	}
	if n > 0 {
		slog.Info("code_janitor: purged expired codes", "count", n)
	}
	return n, nil
}
