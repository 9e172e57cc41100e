// Package services – ReconcileService
//
// The reconciler is the webhook entry point. It validates the inbound
// event, derives the target status, finds-or-creates the ledger row by
// normalized external id, and then triggers notification dispatch. The
// caller's response depends solely on the ledger write: dispatch runs on a
// detached deadline and its failures are logged and swallowed.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ldmoura/go-payments-backend/internal/domain"
	"github.com/ldmoura/go-payments-backend/internal/normalize"
	"github.com/ldmoura/go-payments-backend/internal/observability"
	"github.com/ldmoura/go-payments-backend/internal/repo"
)

// Reconciliation actions reported to the webhook caller.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// WebhookEvent is the inbound gateway event after JSON binding. Type and
// Amount are required; everything else is optional and, on updates, only
// fields actually present overwrite stored values.
type WebhookEvent struct {
	Type             string
	Amount           *decimal.Decimal
	Status           string
	Event            string
	ExternalID       string
	PaidAt           *time.Time
	CustomerName     *string
	CustomerEmail    *string
	CustomerPhone    *string
	CustomerDocument *string
	Description      *string
	Metadata         map[string]any
	BoletoURL        string
}

// ReconcileResult is the outcome of one ingested event.
type ReconcileResult struct {
	Action      string
	Transaction *domain.Transaction
}

// Notifier is the dispatch collaborator invoked after a successful write.
// NotifyService is the production implementation.
type Notifier interface {
	Dispatch(ctx context.Context, tx *domain.Transaction, action string)
}

// ReconcileService merges gateway events into the transaction ledger.
type ReconcileService struct {
	// DB is the GORM handle used for ledger operations.
	DB *gorm.DB
	// Notifier receives the resulting row after every committed write.
	// May be nil (notifications disabled).
	Notifier Notifier
	// DispatchTimeout bounds the notification pass that follows a write.
	DispatchTimeout time.Duration
}

// Ingest processes one webhook event.
//
// Validation failures return one of the validation sentinels (nothing is
// written). Persistence failures return the raw DB error. On success the
// result carries the action taken and the stored row, and the notifier has
// been invoked (its outcome does not influence the returned values).
func (s *ReconcileService) Ingest(ctx context.Context, ev WebhookEvent) (*ReconcileResult, error) {
	if strings.TrimSpace(ev.Type) == "" || ev.Amount == nil {
		return nil, ErrMissingFields
	}
	if !domain.ValidType(ev.Type) {
		return nil, ErrInvalidType
	}
	if ev.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	status, paidAt := deriveStatus(ev)

	var (
		tx     *domain.Transaction
		action string
		err    error
	)
	normKey := normalize.ExternalID(ev.ExternalID)
	if normKey != nil {
		tx, err = repo.FindByNormalizedExternalID(ctx, s.DB, *normKey)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
	}

	if tx != nil {
		action = ActionUpdated
		s.applyUpdate(tx, ev, status, paidAt)
		if err := repo.SaveTransaction(ctx, s.DB, tx); err != nil {
			return nil, err
		}
	} else {
		action = ActionCreated
		tx = buildTransaction(ev, status, paidAt, normKey)
		if err := repo.CreateTransaction(ctx, s.DB, tx); err != nil {
			return nil, err
		}
	}
	observability.WebhookEvents.WithLabelValues(action).Inc()

	s.notify(tx, action)

	return &ReconcileResult{Action: action, Transaction: tx}, nil
}

// applyUpdate mutates an existing row with the fields present in the event.
// Absent payload fields never clobber stored values, and the original
// external id is never rewritten.
func (s *ReconcileService) applyUpdate(tx *domain.Transaction, ev WebhookEvent, status string, paidAt *time.Time) {
	tx.Status = status
	if paidAt != nil {
		tx.PaidAt = paidAt
	}
	if ev.CustomerName != nil && *ev.CustomerName != "" {
		tx.CustomerName = ev.CustomerName
	}
	if ev.CustomerEmail != nil && *ev.CustomerEmail != "" {
		tx.CustomerEmail = ev.CustomerEmail
	}
	if ev.CustomerPhone != nil {
		if p := normalize.Phone(*ev.CustomerPhone); p != nil {
			tx.CustomerPhone = p
		}
	}
	if ev.CustomerDocument != nil && *ev.CustomerDocument != "" {
		tx.CustomerDocument = ev.CustomerDocument
	}
	if ev.Description != nil && *ev.Description != "" {
		tx.Description = ev.Description
	}
	mergeMetadata(tx, ev)
}

// buildTransaction assembles a fresh ledger row from the event. The stored
// external id prefers the normalized form; the raw value is kept only when
// normalization yields nothing.
func buildTransaction(ev WebhookEvent, status string, paidAt *time.Time, normKey *string) *domain.Transaction {
	tx := &domain.Transaction{
		Type:   ev.Type,
		Status: status,
		Amount: *ev.Amount,
		PaidAt: paidAt,
	}
	if normKey != nil {
		tx.ExternalID = normKey
		tx.NormalizedExternalID = *normKey
	} else if strings.TrimSpace(ev.ExternalID) != "" {
		raw := ev.ExternalID
		tx.ExternalID = &raw
	}
	if ev.CustomerName != nil && *ev.CustomerName != "" {
		tx.CustomerName = ev.CustomerName
	}
	if ev.CustomerEmail != nil && *ev.CustomerEmail != "" {
		tx.CustomerEmail = ev.CustomerEmail
	}
	if ev.CustomerPhone != nil {
		tx.CustomerPhone = normalize.Phone(*ev.CustomerPhone)
	}
	if ev.CustomerDocument != nil && *ev.CustomerDocument != "" {
		tx.CustomerDocument = ev.CustomerDocument
	}
	if ev.Description != nil && *ev.Description != "" {
		tx.Description = ev.Description
	}
	mergeMetadata(tx, ev)
	return tx
}

// mergeMetadata folds payload metadata into the row's bag, key by key, and
// records a payload-carried document URL under the fixed key. Existing keys
// not present in the payload survive.
func mergeMetadata(tx *domain.Transaction, ev WebhookEvent) {
	if len(ev.Metadata) == 0 && ev.BoletoURL == "" {
		return
	}
	if tx.Metadata == nil {
		tx.Metadata = map[string]any{}
	}
	for k, v := range ev.Metadata {
		tx.Metadata[k] = v
	}
	if ev.BoletoURL != "" {
		tx.Metadata[domain.MetadataDocumentURLKey] = ev.BoletoURL
	}
}

// notify runs the dispatcher on a detached, deadline-bound context so the
// webhook response neither waits on a slow push service beyond the budget
// nor fails when dispatch does.
func (s *ReconcileService) notify(tx *domain.Transaction, action string) {
	if s.Notifier == nil {
		return
	}
	timeout := s.DispatchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("transaction_id", tx.ID).Msg("notification dispatch panicked")
		}
	}()
	s.Notifier.Dispatch(ctx, tx, action)
}

// deriveStatus determines the target status for the event. An explicit
// status field wins (Portuguese aliases accepted); otherwise the free-text
// event name is matched by substring in priority order. Ambiguous names
// fall through to "generated". A paid status carries the payload timestamp
// or now.
func deriveStatus(ev WebhookEvent) (string, *time.Time) {
	status := ""
	if s := canonicalStatus(ev.Status); s != "" {
		status = s
	} else {
		name := strings.ToLower(ev.Event)
		switch {
		case strings.Contains(name, "paid") || strings.Contains(name, "pago"):
			status = domain.StatusPaid
		case strings.Contains(name, "cancel"):
			status = domain.StatusCanceled
		case strings.Contains(name, "expir"):
			status = domain.StatusExpired
		default:
			status = domain.StatusGenerated
		}
	}

	var paidAt *time.Time
	if status == domain.StatusPaid {
		if ev.PaidAt != nil {
			paidAt = ev.PaidAt
		} else {
			now := time.Now().UTC()
			paidAt = &now
		}
	}
	return status, paidAt
}

// canonicalStatus maps explicit status values (including the gateway's
// Portuguese forms) to ledger statuses. Unknown values return "".
func canonicalStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case domain.StatusPaid, "pago":
		return domain.StatusPaid
	case domain.StatusPending, "pendente":
		return domain.StatusPending
	case domain.StatusCanceled, "cancelled", "cancelado":
		return domain.StatusCanceled
	case domain.StatusExpired, "expirado":
		return domain.StatusExpired
	case domain.StatusGenerated, "gerado":
		return domain.StatusGenerated
	}
	return ""
}
