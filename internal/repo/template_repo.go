// Notification template repository.
//
// Templates are keyed by event key ("<type>_<status>", e.g. "pix_paid") and
// read by the dispatcher on every notification pass; the settings UI writes
// them through the upsert below.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ldmoura/go-payments-backend/internal/domain"
)

// GetActiveTemplate returns the active template for eventKey, or ErrNotFound
// when no template is configured or it is switched off.
func GetActiveTemplate(ctx context.Context, db *gorm.DB, eventKey string) (*domain.NotificationTemplate, error) {
	var tpl domain.NotificationTemplate
	err := db.WithContext(ctx).
		Where("event_key = ? AND active = ?", eventKey, true).
		First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// UpsertTemplate creates or replaces the template for tpl.EventKey.
// Existing rows keep their id and created_at; title, message, category and
// the active flag are overwritten.
func UpsertTemplate(ctx context.Context, db *gorm.DB, tpl *domain.NotificationTemplate) error {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "message", "category", "active", "updated_at"}),
		}).
		Create(tpl).Error
}
