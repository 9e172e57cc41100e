package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ldmoura/go-payments-backend/internal/domain"
	"github.com/ldmoura/go-payments-backend/internal/repo"
	"github.com/ldmoura/go-payments-backend/internal/webpush"
)

// fakeSender maps endpoints to outcomes and records every attempt.
type fakeSender struct {
	mu       sync.Mutex
	outcomes map[string]webpush.Outcome
	sent     []string
	last     webpush.Notification
}

func (f *fakeSender) Send(_ context.Context, sub domain.PushSubscription, n webpush.Notification) webpush.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sub.Endpoint)
	f.last = n
	out, ok := f.outcomes[sub.Endpoint]
	if !ok {
		out = webpush.OutcomeDelivered
	}
	return out
}

func (f *fakeSender) attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func seedSubscription(t *testing.T, db *gorm.DB, endpoint string) domain.PushSubscription {
	t.Helper()
	sub := domain.PushSubscription{Endpoint: endpoint, P256dh: "p256dh-key", Auth: "auth-secret"}
	if err := repo.CreateSubscription(context.Background(), db, &sub); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
	return sub
}

func sampleTx(status string) *domain.Transaction {
	name := "Maria Silva"
	return &domain.Transaction{
		ID:           "tx-1",
		Type:         domain.TypePix,
		Status:       status,
		Amount:       decimal.NewFromFloat(50),
		CustomerName: &name,
	}
}

func TestDispatch_PrunesOnlyPermanentFailures(t *testing.T) {
	db := newTestDB(t)
	seedSubscription(t, db, "https://push.example.com/gone")
	keep := seedSubscription(t, db, "https://push.example.com/alive")
	flaky := seedSubscription(t, db, "https://push.example.com/flaky")

	sender := &fakeSender{outcomes: map[string]webpush.Outcome{
		"https://push.example.com/gone":  webpush.OutcomePermanentFailure,
		"https://push.example.com/alive": webpush.OutcomeDelivered,
		"https://push.example.com/flaky": webpush.OutcomeTransientFailure,
	}}
	svc := &NotifyService{DB: db, Sender: sender, Relay: NoopRelay{}, Concurrency: 4}

	svc.Dispatch(context.Background(), sampleTx(domain.StatusPaid), ActionCreated)

	if got := sender.attempts(); got != 3 {
		t.Fatalf("attempts = %d; want 3", got)
	}
	remaining, err := repo.ListSubscriptions(context.Background(), db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("remaining = %d; want 2 (only the gone endpoint pruned)", len(remaining))
	}
	ids := map[string]bool{}
	for _, s := range remaining {
		ids[s.ID] = true
	}
	if !ids[keep.ID] || !ids[flaky.ID] {
		t.Fatalf("wrong subscriptions survived: %v", ids)
	}
}

func TestDispatch_SkipsPushWithoutSenderOrSubscriptions(t *testing.T) {
	db := newTestDB(t)

	// no sender configured: must not touch the store
	svc := &NotifyService{DB: db, Relay: NoopRelay{}}
	svc.Dispatch(context.Background(), sampleTx(domain.StatusPaid), ActionCreated)

	// sender configured but zero subscriptions: no attempts
	sender := &fakeSender{}
	svc = &NotifyService{DB: db, Sender: sender, Relay: NoopRelay{}, Concurrency: 2}
	svc.Dispatch(context.Background(), sampleTx(domain.StatusPaid), ActionCreated)
	if sender.attempts() != 0 {
		t.Fatalf("attempts = %d; want 0", sender.attempts())
	}
}

func TestDispatch_PushPayload(t *testing.T) {
	db := newTestDB(t)
	seedSubscription(t, db, "https://push.example.com/a")
	sender := &fakeSender{}
	svc := &NotifyService{DB: db, Sender: sender, Relay: NoopRelay{}, Concurrency: 1}

	svc.Dispatch(context.Background(), sampleTx(domain.StatusPaid), ActionUpdated)

	if sender.last.Title != "Pix pago" {
		t.Errorf("title = %q", sender.last.Title)
	}
	if sender.last.Body != "Maria Silva • R$ 50,00" {
		t.Errorf("body = %q", sender.last.Body)
	}
	if sender.last.Tag != "tx-1-paid" {
		t.Errorf("tag = %q; updates should carry the status suffix", sender.last.Tag)
	}
}

func TestDispatch_RelayRendersActiveTemplate(t *testing.T) {
	db := newTestDB(t)
	if err := repo.UpsertTemplate(context.Background(), db, &domain.NotificationTemplate{
		EventKey: "pix_paid",
		Title:    "Pagamento de {primeiro_nome}",
		Message:  "{nome} pagou {valor} via {tipo}",
		Category: "payments",
		Active:   true,
	}); err != nil {
		t.Fatalf("seed template: %v", err)
	}

	var (
		mu   sync.Mutex
		got  url.Values
		hits int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = r.URL.Query()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := &NotifyService{DB: db, Relay: NewHTTPRelay(srv.URL, "office-panel", 2*time.Second)}
	svc.Dispatch(context.Background(), sampleTx(domain.StatusPaid), ActionCreated)

	mu.Lock()
	defer mu.Unlock()
	if hits != 1 {
		t.Fatalf("relay hits = %d; want 1", hits)
	}
	if got.Get("device") != "office-panel" {
		t.Errorf("device = %q", got.Get("device"))
	}
	if got.Get("title") != "Pagamento de Maria" {
		t.Errorf("title = %q", got.Get("title"))
	}
	if got.Get("message") != "Maria Silva pagou R$ 50,00 via Pix" {
		t.Errorf("message = %q", got.Get("message"))
	}
	if got.Get("type") != "payments" {
		t.Errorf("type = %q", got.Get("type"))
	}
}

func TestDispatch_RelaySkippedWithoutTemplate(t *testing.T) {
	db := newTestDB(t)

	called := false
	svc := &NotifyService{DB: db, Relay: relayFunc(func(context.Context, string, string, string) error {
		called = true
		return nil
	})}
	svc.Dispatch(context.Background(), sampleTx(domain.StatusCanceled), ActionUpdated)
	if called {
		t.Fatal("relay fired without an active template for the event")
	}
}

func TestDispatch_RelayErrorIsContained(t *testing.T) {
	db := newTestDB(t)
	if err := repo.UpsertTemplate(context.Background(), db, &domain.NotificationTemplate{
		EventKey: "pix_paid", Title: "t", Message: "m", Active: true,
	}); err != nil {
		t.Fatalf("seed template: %v", err)
	}

	svc := &NotifyService{DB: db, Relay: relayFunc(func(context.Context, string, string, string) error {
		return errors.New("relay down")
	})}
	// must not panic or propagate
	svc.Dispatch(context.Background(), sampleTx(domain.StatusPaid), ActionCreated)
}

type relayFunc func(ctx context.Context, title, message, category string) error

func (f relayFunc) Send(ctx context.Context, title, message, category string) error {
	return f(ctx, title, message, category)
}
