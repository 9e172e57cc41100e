// Webhook HTTP handler.
//
// This file exposes the gateway-facing endpoint:
//   - POST /webhooks/payments (ingest one payment event)
//
// Handlers are transport-thin: they bind input, call application services,
// and translate results into HTTP responses. All reconciliation semantics
// live in the services package.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ldmoura/go-payments-backend/internal/domain"
	"github.com/ldmoura/go-payments-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// Reconciler merges inbound gateway events into the transaction ledger.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type Reconciler interface {
	// Ingest validates and applies one webhook event, returning the action
	// taken and the resulting ledger row.
	Ingest(ctx context.Context, ev services.WebhookEvent) (*services.ReconcileResult, error)
}

// Ledger exposes read access to stored transactions.
type Ledger interface {
	// Get returns one transaction by id.
	Get(ctx context.Context, id string) (*domain.Transaction, error)
	// ListPage returns a page of transactions and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Transaction, int64, error)
}

// Subscriptions manages push subscription registrations.
type Subscriptions interface {
	// Register stores a new push subscription.
	Register(ctx context.Context, endpoint, p256dh, auth string) (*domain.PushSubscription, error)
	// List returns all registered subscriptions.
	List(ctx context.Context) ([]domain.PushSubscription, error)
}

// Templates manages the relay's notification templates.
type Templates interface {
	// Upsert creates or replaces the template bound to eventKey.
	Upsert(ctx context.Context, eventKey, title, msg, category string, active bool) (*domain.NotificationTemplate, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for webhooks, transactions, push
// subscriptions, and templates. It depends on abstract service interfaces
// to keep transport concerns separate from business logic.
type Handlers struct {
	reconciler Reconciler
	ledger     Ledger
	subs       Subscriptions
	templates  Templates
}

// New constructs a Handlers instance bound to the given services.
func New(reconciler Reconciler, ledger Ledger, subs Subscriptions, templates Templates) *Handlers {
	return &Handlers{reconciler: reconciler, ledger: ledger, subs: subs, templates: templates}
}

//
// DTOs
//

// WebhookRequest is the JSON payload accepted from the payment gateway.
// Only type and amount are required; pointer fields distinguish "absent"
// from "empty" so updates never clobber stored values.
type WebhookRequest struct {
	Type             string           `json:"type"`
	Amount           *decimal.Decimal `json:"amount"`
	Status           string           `json:"status"`
	Event            string           `json:"event"`
	ExternalID       string           `json:"external_id"`
	PaidAt           *time.Time       `json:"paid_at"`
	CustomerName     *string          `json:"customer_name"`
	CustomerEmail    *string          `json:"customer_email"`
	CustomerPhone    *string          `json:"customer_phone"`
	CustomerDocument *string          `json:"customer_document"`
	Description      *string          `json:"description"`
	Metadata         map[string]any   `json:"metadata"`
	BoletoURL        string           `json:"boleto_url"`
}

// WebhookResponse acknowledges an ingested event.
type WebhookResponse struct {
	Success       bool   `json:"success"`
	Action        string `json:"action"`
	TransactionID string `json:"transaction_id"`
}

//
// Handlers
//

// IngestWebhook receives one payment event from the gateway.
//
// Responds 201 when a new ledger row was created, 200 when an existing row
// was updated, 400 on validation failure, 500 on persistence failure. The
// response never depends on notification outcomes.
func (h *Handlers) IngestWebhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	res, err := h.reconciler.Ingest(c.Request.Context(), services.WebhookEvent{
		Type:             req.Type,
		Amount:           req.Amount,
		Status:           req.Status,
		Event:            req.Event,
		ExternalID:       req.ExternalID,
		PaidAt:           req.PaidAt,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
		CustomerDocument: req.CustomerDocument,
		Description:      req.Description,
		Metadata:         req.Metadata,
		BoletoURL:        req.BoletoURL,
	})
	if err != nil {
		if services.IsValidation(err) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeIngestFailed, err.Error())
		return
	}

	status := http.StatusOK
	if res.Action == services.ActionCreated {
		status = http.StatusCreated
	}
	ok(c, status, WebhookResponse{
		Success:       true,
		Action:        res.Action,
		TransactionID: res.Transaction.ID,
	})
}
