// Package services – LedgerService
//
// Read-side operations over the transaction ledger used by the dashboard's
// listing screens. Kept deliberately thin: all reconciliation logic lives
// in ReconcileService.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ldmoura/go-payments-backend/internal/domain"
	"github.com/ldmoura/go-payments-backend/internal/repo"
)

// LedgerService exposes paginated reads over the transaction ledger.
type LedgerService struct {
	// DB is the GORM handle used for ledger reads.
	DB *gorm.DB
}

// Get returns a single ledger row by id, or ErrTransactionNotFound.
func (s *LedgerService) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	tx, err := repo.GetTransaction(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// ListPage returns a page of ledger rows plus the total count.
// It applies defaults for invalid page/pageSize.
func (s *LedgerService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountTransactions(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Transaction{}, 0, nil
	}

	items, err := repo.ListTransactionsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}
