// Package scheduler periodically resyncs every bank account so balances
// drift back into line even when ledger change events were missed.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/config"
	"github.com/clinic-backoffice/cashflow/internal/domain/account"
)

// BatchSyncer runs many account syncs and reports one outcome per request
type BatchSyncer interface {
	SyncMany(ctx context.Context, requests []service.SyncRequest, timeout time.Duration) []service.SyncOutcome
}

// Summary counts the outcomes of one full pass
type Summary struct {
	Accounts  int
	Corrected int
	Failed    int
}

type Scheduler struct {
	accountRepo    account.Repository
	syncer         BatchSyncer
	logger         *slog.Logger
	interval       time.Duration
	accountTimeout time.Duration
	runOnStartup   bool
}

func NewScheduler(cfg *config.SyncConfig, accountRepo account.Repository, syncer BatchSyncer, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		accountRepo:    accountRepo,
		syncer:         syncer,
		logger:         logger,
		interval:       cfg.Interval,
		accountTimeout: cfg.AccountTimeout,
		runOnStartup:   cfg.RunOnStartup,
	}
}

// Start runs full passes on every tick until ctx is canceled
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting sync scheduler",
		"interval", s.interval.String(),
		"account_timeout", s.accountTimeout.String(),
		"run_on_startup", s.runOnStartup,
	)

	if s.runOnStartup {
		s.pass(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sync scheduler stopping due to context cancellation.")
			return
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

func (s *Scheduler) pass(ctx context.Context) {
	summary, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("Full sync pass failed", "error", err)
		return
	}
	s.logger.Info("Full sync pass finished",
		"accounts", summary.Accounts,
		"corrected", summary.Corrected,
		"failed", summary.Failed,
	)
}

// RunOnce syncs every account once
func (s *Scheduler) RunOnce(ctx context.Context) (Summary, error) {
	accounts, err := s.accountRepo.ListAll(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list accounts: %w", err)
	}

	requests := make([]service.SyncRequest, len(accounts))
	for i, acc := range accounts {
		requests[i] = service.SyncRequest{
			ClinicID:  acc.ClinicID,
			AccountID: acc.ID,
			Trigger:   service.TriggerSchedule,
		}
	}

	summary := Summary{Accounts: len(accounts)}
	for _, outcome := range s.syncer.SyncMany(ctx, requests, s.accountTimeout) {
		switch {
		case outcome.Err != nil:
			summary.Failed++
			s.logger.Warn("Account sync failed",
				"account_id", outcome.Request.AccountID.String(),
				"error", outcome.Err,
			)
		case outcome.Result != nil && outcome.Result.Applied:
			summary.Corrected++
		}
	}
	return summary, nil
}
