// Push sender. One call is one delivery attempt to one subscription.
package webpush

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ldmoura/go-payments-backend/internal/domain"
)

// Notification is the payload delivered to a subscription endpoint. Tag is a
// client-side collapse key: a later notification with the same tag replaces
// the earlier one in the subscriber's UI.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag,omitempty"`
}

// Outcome classifies one delivery attempt. Only OutcomePermanentFailure
// should trigger pruning of the subscription; transient failures are
// expected to resolve on a later broadcast.
type Outcome int

const (
	// OutcomeDelivered means the push service accepted the message (2xx).
	OutcomeDelivered Outcome = iota
	// OutcomePermanentFailure means the endpoint is gone or the request can
	// never succeed (404/410 and other non-retryable 4xx).
	OutcomePermanentFailure
	// OutcomeTransientFailure covers timeouts, network errors, 408/429 and
	// 5xx responses, plus signing failures local to this attempt.
	OutcomeTransientFailure
)

// String returns a stable label for metrics and logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomePermanentFailure:
		return "permanent_failure"
	case OutcomeTransientFailure:
		return "transient_failure"
	}
	return "unknown"
}

// Sender delivers notification payloads to push subscription endpoints,
// authenticating each request with a fresh assertion from the Signer.
// It is safe for concurrent use.
type Sender struct {
	signer *Signer
	client *http.Client
	ttl    time.Duration
}

// NewSender builds a Sender. timeout bounds one delivery attempt end to end
// so a single unreachable endpoint cannot stall a broadcast; ttl is the
// message lifetime advertised to the push service.
func NewSender(signer *Signer, ttl, timeout time.Duration) *Sender {
	return &Sender{
		signer: signer,
		client: &http.Client{Timeout: timeout},
		ttl:    ttl,
	}
}

// Send delivers n to sub's endpoint and classifies the result.
//
// Any error is contained here: signing failures and transport errors are
// logged and mapped to an Outcome, never propagated, so one bad target
// cannot abort sibling deliveries.
func (s *Sender) Send(ctx context.Context, sub domain.PushSubscription, n Notification) Outcome {
	token, err := s.signer.Assertion(sub.Endpoint)
	if err != nil {
		log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("push assertion failed")
		return OutcomeTransientFailure
	}

	body, err := json.Marshal(n)
	if err != nil {
		log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("push payload marshal failed")
		return OutcomeTransientFailure
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("push request build failed")
		return OutcomePermanentFailure
	}
	req.Header.Set("Authorization", "vapid t="+token+", k="+s.signer.PublicKey())
	req.Header.Set("TTL", strconv.Itoa(int(s.ttl.Seconds())))
	req.Header.Set("Urgency", "high")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("push delivery error")
		return OutcomeTransientFailure
	}
	defer resp.Body.Close()

	out := classifyStatus(resp.StatusCode)
	if out != OutcomeDelivered {
		log.Warn().
			Int("status", resp.StatusCode).
			Str("subscription_id", sub.ID).
			Str("outcome", out.String()).
			Msg("push delivery rejected")
	}
	return out
}

// classifyStatus maps a push-service HTTP status to an Outcome. 404 and 410
// are the canonical "subscription is gone" answers; 408 and 429 are
// explicitly retryable; remaining 4xx will not succeed on retry.
func classifyStatus(code int) Outcome {
	switch {
	case code >= 200 && code < 300:
		return OutcomeDelivered
	case code == http.StatusRequestTimeout || code == http.StatusTooManyRequests:
		return OutcomeTransientFailure
	case code >= 400 && code < 500:
		return OutcomePermanentFailure
	default:
		return OutcomeTransientFailure
	}
}
