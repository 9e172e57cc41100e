// Push subscription repository.
//
// Subscriptions are created by the dashboard's subscribe flow and removed in
// batch by the notification dispatcher when a delivery attempt reports the
// endpoint permanently gone (self-pruning).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ldmoura/go-payments-backend/internal/domain"
)

// CreateSubscription inserts a new push subscription. The endpoint is unique;
// inserting a duplicate surfaces the driver's unique-constraint error.
func CreateSubscription(ctx context.Context, db *gorm.DB, sub *domain.PushSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(sub).Error
}

// ListSubscriptions returns all registered push subscriptions, oldest first.
func ListSubscriptions(ctx context.Context, db *gorm.DB) ([]domain.PushSubscription, error) {
	var out []domain.PushSubscription
	err := db.WithContext(ctx).Order("created_at asc").Find(&out).Error
	return out, err
}

// DeleteSubscriptions removes the given subscription ids in one statement.
// A nil/empty id list is a no-op.
func DeleteSubscriptions(ctx context.Context, db *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.PushSubscription{}).Error
}
