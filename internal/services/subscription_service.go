// Package services – SubscriptionService
//
// Registration and listing of Web Push subscriptions. Removal is not
// exposed here: dead endpoints are pruned automatically by NotifyService
// after failed delivery attempts.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/ldmoura/go-payments-backend/internal/domain"
	"github.com/ldmoura/go-payments-backend/internal/repo"
)

// SubscriptionService manages push subscription registration.
type SubscriptionService struct {
	// DB is the GORM handle used for subscription operations.
	DB *gorm.DB
}

// Register stores a new subscription. Returns ErrInvalidSubscription when
// any of the three addressing fields is blank and ErrDuplicateSubscription
// when the endpoint is already registered.
func (s *SubscriptionService) Register(ctx context.Context, endpoint, p256dh, auth string) (*domain.PushSubscription, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" || strings.TrimSpace(p256dh) == "" || strings.TrimSpace(auth) == "" {
		return nil, ErrInvalidSubscription
	}
	sub := &domain.PushSubscription{
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	}
	if err := repo.CreateSubscription(ctx, s.DB, sub); err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateSubscription
		}
		return nil, err
	}
	return sub, nil
}

// List returns all registered subscriptions.
func (s *SubscriptionService) List(ctx context.Context) ([]domain.PushSubscription, error) {
	return repo.ListSubscriptions(ctx, s.DB)
}

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
