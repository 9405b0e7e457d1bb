package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	syncservice "github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/domain/account"
	"github.com/clinic-backoffice/cashflow/internal/domain/correction"
)

// BalanceServiceImpl implements the BalanceService interface
type BalanceServiceImpl struct {
	syncService    syncservice.SyncService
	accountRepo    account.Repository
	correctionRepo correction.Repository
}

// NewBalanceService creates a balance service
func NewBalanceService(syncService syncservice.SyncService, accountRepo account.Repository, correctionRepo correction.Repository) BalanceService {
	return &BalanceServiceImpl{
		syncService:    syncService,
		accountRepo:    accountRepo,
		correctionRepo: correctionRepo,
	}
}

// Sync delegates to the sync service, tagged as an API trigger
func (s *BalanceServiceImpl) Sync(ctx context.Context, clinicID, accountID uuid.UUID, correlationID string) (*syncservice.SyncResult, error) {
	return s.syncService.SyncAccount(ctx, &syncservice.SyncRequest{
		ClinicID:      clinicID,
		AccountID:     accountID,
		CorrelationID: correlationID,
		Trigger:       syncservice.TriggerAPI,
	})
}

// Corrections checks the account belongs to the clinic before paging its history
func (s *BalanceServiceImpl) Corrections(ctx context.Context, clinicID, accountID uuid.UUID, page, perPage int) ([]*correction.Correction, int64, error) {
	if _, err := s.accountRepo.GetByID(ctx, clinicID, accountID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	corrections, err := s.correctionRepo.ListByAccount(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list corrections: %w", err)
	}

	total, err := s.correctionRepo.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count corrections: %w", err)
	}

	return corrections, total, nil
}
