package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// SyncOutcome is the result of one account in a batch
type SyncOutcome struct {
	Request SyncRequest
	Result  *SyncResult
	Err     error
}

// WorkerPoolSyncService runs account syncs on a bounded ants pool
type WorkerPoolSyncService struct {
	baseService SyncService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolSyncService(
	baseService SyncService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolSyncService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolSyncService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// SyncAccount submits one sync to the pool and waits for its result
func (s *WorkerPoolSyncService) SyncAccount(ctx context.Context, request *SyncRequest) (*SyncResult, error) {
	type outcome struct {
		result *SyncResult
		err    error
	}
	resultChan := make(chan outcome, 1)

	requestCopy := *request
	err := s.pool.Submit(func() {
		result, err := s.baseService.SyncAccount(ctx, &requestCopy)
		resultChan <- outcome{result: result, err: err}
	})
	if err != nil {
		s.logger.Error("Failed to submit sync to worker pool",
			"account_id", request.AccountID.String(),
			"error", err,
		)
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-resultChan:
		return out.result, out.err
	}
}

// SyncMany fans the requests out over the pool and waits for all of them.
// Each sync gets its own timeout when timeout is positive. Outcomes are
// returned in request order.
func (s *WorkerPoolSyncService) SyncMany(ctx context.Context, requests []SyncRequest, timeout time.Duration) []SyncOutcome {
	outcomes := make([]SyncOutcome, len(requests))
	var wg sync.WaitGroup

	for i := range requests {
		i := i
		outcomes[i].Request = requests[i]

		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()

			taskCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				taskCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			request := requests[i]
			outcomes[i].Result, outcomes[i].Err = s.baseService.SyncAccount(taskCtx, &request)
		})
		if err != nil {
			wg.Done()
			outcomes[i].Err = err
			s.logger.Error("Failed to submit sync to worker pool",
				"account_id", requests[i].AccountID.String(),
				"error", err,
			)
		}
	}

	wg.Wait()
	return outcomes
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolSyncService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolSyncService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolSyncService) Capacity() int {
	return s.pool.Cap()
}
