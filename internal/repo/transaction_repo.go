// Transaction repository.
//
// Thin, context-aware CRUD over the ledger table. No business logic lives
// here: reconciliation decisions (match vs create, which fields to carry
// over) belong to services.ReconcileService.
//
// Error semantics follow the package convention: gorm.ErrRecordNotFound
// (aliased as ErrNotFound) when a row is missing, raw gorm errors otherwise.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ldmoura/go-payments-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateTransaction inserts a new ledger row. The ID is a randomly generated
// UUID (string) and CreatedAt is set to UTC.
func CreateTransaction(ctx context.Context, db *gorm.DB, tx *domain.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(tx).Error
}

// FindByNormalizedExternalID returns the oldest ledger row whose normalized
// external id equals key. Duplicates should not exist; if they do, the
// first-created row is authoritative. Returns ErrNotFound when no row
// matches or key is empty.
func FindByNormalizedExternalID(ctx context.Context, db *gorm.DB, key string) (*domain.Transaction, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	var tx domain.Transaction
	err := db.WithContext(ctx).
		Where("normalized_external_id = ?", key).
		Order("created_at asc").
		First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// SaveTransaction persists all current fields of an already-loaded row.
func SaveTransaction(ctx context.Context, db *gorm.DB, tx *domain.Transaction) error {
	return db.WithContext(ctx).Save(tx).Error
}

// GetTransaction fetches a single ledger row by id, or ErrNotFound.
func GetTransaction(ctx context.Context, db *gorm.DB, id string) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := db.WithContext(ctx).Where("id = ?", id).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// CountTransactions returns the total number of ledger rows.
func CountTransactions(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Transaction{}).Count(&total).Error
	return total, err
}

// ListTransactionsPage returns a page of ledger rows ordered by creation
// time descending (most recent first). The caller computes offset and limit.
func ListTransactionsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
