package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultRefreshSpec refreshes the cached random drink every ten seconds.
const DefaultRefreshSpec = "@every 10s"

// RefreshWorker periodically replaces the cached random drink. Runs overlap
// is prevented with a busy flag: if a refresh is still in flight when the
// next tick fires, the tick is skipped.
type RefreshWorker struct {
	client *Client
	repo   RandomCocktails
	logger Logger
	spec   string
	cron   *cron.Cron
	busy   atomic.Bool
}

func NewRefreshWorker(client *Client, repo RandomCocktails) *RefreshWorker {
	return &RefreshWorker{
		client: client,
		repo:   repo,
		logger: noopLogger{},
		spec:   DefaultRefreshSpec,
	}
}

func (w *RefreshWorker) WithLogger(l Logger) *RefreshWorker {
	if l != nil {
		w.logger = l
	}
	return w
}

// WithSpec overrides the cron spec, e.g. "@every 1m".
func (w *RefreshWorker) WithSpec(spec string) *RefreshWorker {
	if spec != "" {
		w.spec = spec
	}
	return w
}

// Start schedules the periodic refresh and runs one refresh immediately so
// the cache is warm before the first tick.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.cron = cron.New()

	if _, err := w.cron.AddFunc(w.spec, func() {
		w.RefreshNow(ctx)
	}); err != nil {
		return err
	}

	w.logger.Info("random cocktail worker started with spec %s", w.spec)
	go w.RefreshNow(ctx)
	w.cron.Start()
	return nil
}

// Stop halts the schedule and waits for an in-flight refresh to finish.
func (w *RefreshWorker) Stop() {
	if w.cron == nil {
		return
	}
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.logger.Info("random cocktail worker stopped")
}

// RefreshNow fetches one random drink and stores it. Returns the stored row,
// or nil when skipped because a refresh was already running.
func (w *RefreshWorker) RefreshNow(ctx context.Context) *RandomCocktailRow {
	if !w.busy.CompareAndSwap(false, true) {
		w.logger.Debug("refresh already in flight, skipping tick")
		return nil
	}
	defer w.busy.Store(false)

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	row, err := w.client.RandomLite(ctx)
	if err != nil {
		w.logger.Error("failed to fetch random cocktail: %s", err)
		return nil
	}
	if row == nil {
		return nil
	}

	if _, err := w.repo.AddOrUpdate(ctx, row); err != nil {
		w.logger.Error("failed to store random cocktail: %s", err)
		return nil
	}

	return row
}
