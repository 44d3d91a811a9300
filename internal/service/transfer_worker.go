package service

import (
	"assessment_results_backend/pkg/logger"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TransferSettings are read on every run so config reloads apply to the next
// tick.
type TransferSettings struct {
	BatchSize int
	Workers   int
	ClaimTTL  time.Duration
}

// TransferWorker drains TRANSFER rows on a bounded pool, one student per
// transaction.
type TransferWorker struct {
	Service *TransferService

	mu       sync.RWMutex
	settings TransferSettings
}

func NewTransferWorker(svc *TransferService, settings TransferSettings) *TransferWorker {
	return &TransferWorker{Service: svc, settings: settings}
}

func (w *TransferWorker) Settings() TransferSettings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.settings
}

func (w *TransferWorker) UpdateSettings(settings TransferSettings) {
	w.mu.Lock()
	w.settings = settings
	w.mu.Unlock()
	logger.Log.Info("transfer settings updated",
		zap.Int("batchSize", settings.BatchSize),
		zap.Int("workers", settings.Workers),
		zap.Duration("claimTTL", settings.ClaimTTL))
}

type RunSummary struct {
	Fetched     int `json:"fetched"`
	Claimed     int `json:"claimed"`
	Transferred int `json:"transferred"`
	Failed      int `json:"failed"`
}

// RunOnce releases stale claims, fetches one batch and transfers every item
// it manages to claim. Item failures are logged and counted; they never stop
// sibling items.
func (w *TransferWorker) RunOnce(ctx context.Context) (RunSummary, error) {
	settings := w.Settings()
	var summary RunSummary

	if settings.ClaimTTL > 0 {
		if _, err := w.Service.ReleaseStaleClaims(ctx, settings.ClaimTTL); err != nil {
			return summary, err
		}
	}

	ids, err := w.Service.FindBatchOfTransferStudentIDs(ctx, settings.BatchSize)
	if err != nil {
		return summary, err
	}
	summary.Fetched = len(ids)
	if len(ids) == 0 {
		return summary, nil
	}

	var claimed, transferred, failed int64
	g, gctx := errgroup.WithContext(ctx)
	workers := settings.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			ok, err := w.Service.ClaimForTransfer(gctx, id)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				logger.Log.Error("failed to claim staged student",
					zap.String("stagedStudentId", id),
					zap.Error(err))
				return nil
			}
			if !ok {
				return nil
			}
			atomic.AddInt64(&claimed, 1)

			if _, err := w.Service.TransferStagedStudentToMainTables(gctx, id); err != nil {
				atomic.AddInt64(&failed, 1)
				logger.Log.Error("failed to transfer staged student",
					zap.String("stagedStudentId", id),
					zap.Error(err))
				return nil
			}
			atomic.AddInt64(&transferred, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	summary.Claimed = int(claimed)
	summary.Transferred = int(transferred)
	summary.Failed = int(failed)
	logger.Log.Info("transfer run finished",
		zap.Int("fetched", summary.Fetched),
		zap.Int("claimed", summary.Claimed),
		zap.Int("transferred", summary.Transferred),
		zap.Int("failed", summary.Failed))
	return summary, ctx.Err()
}
