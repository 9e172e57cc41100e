// Package services – NotifyService
//
// The notification dispatcher fans one ledger state change out to every
// registered push subscription and, independently, to the secondary
// templated relay. Both legs run after the ledger write is durable, neither
// blocks the other, and every failure is contained here: nothing the
// dispatcher does can affect the webhook caller's response.
package services

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ldmoura/go-payments-backend/internal/domain"
	"github.com/ldmoura/go-payments-backend/internal/observability"
	"github.com/ldmoura/go-payments-backend/internal/repo"
	"github.com/ldmoura/go-payments-backend/internal/webpush"
)

// PushSender abstracts the Web Push delivery used by the dispatcher so
// tests can substitute a recorder. webpush.Sender is the production
// implementation.
type PushSender interface {
	Send(ctx context.Context, sub domain.PushSubscription, n webpush.Notification) webpush.Outcome
}

// NotifyService broadcasts ledger state changes.
//
// Sender may be nil when no VAPID credentials are configured; Relay must be
// non-nil (use NoopRelay when the channel is disabled). Absence of
// subscriptions, templates, or credentials is never an error, the
// corresponding leg is simply skipped.
type NotifyService struct {
	// DB is the GORM handle used for subscription and template reads.
	DB *gorm.DB
	// Sender delivers to push endpoints; nil disables the broadcast leg.
	Sender PushSender
	// Relay is the secondary templated channel.
	Relay Relay
	// Concurrency caps in-flight push deliveries per broadcast.
	Concurrency int
}

// Dispatch notifies all channels about a created or updated transaction.
//
// The two legs run concurrently; Dispatch returns when both finished or ctx
// expired. All errors are logged and swallowed.
func (s *NotifyService) Dispatch(ctx context.Context, tx *domain.Transaction, action string) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.broadcastPush(ctx, tx, action)
	}()
	go func() {
		defer wg.Done()
		s.sendRelay(ctx, tx)
	}()
	wg.Wait()
}

// broadcastPush attempts delivery to every subscription, collects the ids
// that failed permanently, and prunes them in one batch after the full
// pass. Pruning never happens mid-loop so concurrent sends iterate a
// stable subscription set.
func (s *NotifyService) broadcastPush(ctx context.Context, tx *domain.Transaction, action string) {
	if s.Sender == nil {
		return
	}
	subs, err := repo.ListSubscriptions(ctx, s.DB)
	if err != nil {
		log.Error().Err(err).Msg("list push subscriptions")
		return
	}
	if len(subs) == 0 {
		return
	}

	n := composePush(tx, action)

	var (
		mu   sync.Mutex
		dead []string
	)
	g, gctx := errgroup.WithContext(ctx)
	limit := s.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			out := s.Sender.Send(gctx, sub, n)
			observability.PushDeliveries.WithLabelValues(out.String()).Inc()
			if out == webpush.OutcomePermanentFailure {
				mu.Lock()
				dead = append(dead, sub.ID)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // send errors are contained in the Sender

	if len(dead) > 0 {
		if err := repo.DeleteSubscriptions(ctx, s.DB, dead); err != nil {
			log.Error().Err(err).Int("count", len(dead)).Msg("prune dead subscriptions")
			return
		}
		observability.PrunedSubscriptions.Add(float64(len(dead)))
		log.Info().Int("count", len(dead)).Msg("pruned dead push subscriptions")
	}
}

// sendRelay renders the configured template for this event (if any) and
// fires it over the secondary channel.
func (s *NotifyService) sendRelay(ctx context.Context, tx *domain.Transaction) {
	if s.Relay == nil {
		return
	}

	eventKey := tx.Type + "_" + tx.Status
	tpl, err := repo.GetActiveTemplate(ctx, s.DB, eventKey)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Error().Err(err).Str("event_key", eventKey).Msg("load relay template")
		}
		observability.RelayMessages.WithLabelValues("skipped").Inc()
		return
	}

	title := renderTemplate(tpl.Title, tx)
	body := renderTemplate(tpl.Message, tx)
	if err := s.Relay.Send(ctx, title, body, tpl.Category); err != nil {
		observability.RelayMessages.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("event_key", eventKey).Msg("relay send failed")
		return
	}
	observability.RelayMessages.WithLabelValues("sent").Inc()
}

// composePush builds the broadcast payload. The tag lets the client replace
// an earlier notification for the same transaction: creations use the row
// id alone, updates suffix the new status so the replacement is visible.
func composePush(tx *domain.Transaction, action string) webpush.Notification {
	tag := tx.ID
	if action == ActionUpdated {
		tag = tx.ID + "-" + tx.Status
	}

	name := defaultCustomerName
	if tx.CustomerName != nil && *tx.CustomerName != "" {
		name = *tx.CustomerName
	}

	var title string
	switch tx.Status {
	case domain.StatusPaid:
		title = domain.TypeLabel(tx.Type) + " pago"
	case domain.StatusCanceled:
		title = domain.TypeLabel(tx.Type) + " cancelado"
	case domain.StatusExpired:
		title = domain.TypeLabel(tx.Type) + " expirado"
	case domain.StatusPending:
		title = domain.TypeLabel(tx.Type) + " pendente"
	default:
		title = domain.TypeLabel(tx.Type) + " gerado"
	}

	return webpush.Notification{
		Title: title,
		Body:  name + " • " + formatCurrency(tx.Amount),
		Tag:   tag,
	}
}
