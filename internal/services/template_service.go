// Package services – TemplateService
//
// Write-side for notification templates, backing the settings UI. The
// dispatcher only ever reads templates (repo.GetActiveTemplate).
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/ldmoura/go-payments-backend/internal/domain"
	"github.com/ldmoura/go-payments-backend/internal/repo"
)

// TemplateService manages relay notification templates.
type TemplateService struct {
	// DB is the GORM handle used for template writes.
	DB *gorm.DB
}

// Upsert creates or replaces the template for eventKey.
func (s *TemplateService) Upsert(ctx context.Context, eventKey, title, msg, category string, active bool) (*domain.NotificationTemplate, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(msg) == "" {
		return nil, ErrInvalidTemplate
	}
	tpl := &domain.NotificationTemplate{
		EventKey: strings.TrimSpace(eventKey),
		Title:    title,
		Message:  msg,
		Category: category,
		Active:   active,
	}
	if err := repo.UpsertTemplate(ctx, s.DB, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}
