package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ldmoura/go-payments-backend/internal/domain"
	"github.com/ldmoura/go-payments-backend/internal/services"
)

func TestCreateSubscription(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	svc := &services.SubscriptionService{DB: db}
	h := New(stubReconciler{}, stubLedger{}, svc, stubTemplates{})
	r := gin.New()
	r.POST("/push/subscriptions", h.CreateSubscription)

	body := `{"endpoint":"https://fcm.googleapis.com/fcm/send/abc","keys":{"p256dh":"BPub","auth":"secret"}}`

	// First registration -> 201
	w := postJSON(r, "/push/subscriptions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
	}
	var sub domain.PushSubscription
	if err := json.Unmarshal(w.Body.Bytes(), &sub); err != nil {
		t.Fatalf("json: %v", err)
	}
	if sub.ID == "" || sub.Endpoint != "https://fcm.googleapis.com/fcm/send/abc" {
		t.Fatalf("unexpected subscription: %#v", sub)
	}

	// Same endpoint again -> 409
	if w := postJSON(r, "/push/subscriptions", body); w.Code != http.StatusConflict {
		t.Fatalf("duplicate -> %d body=%s", w.Code, w.Body.String())
	}

	// Missing keys -> 400
	if w := postJSON(r, "/push/subscriptions", `{"endpoint":"https://x.example.com"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing keys -> %d", w.Code)
	}

	// Bad JSON -> 400
	if w := postJSON(r, "/push/subscriptions", "{bad"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}
}

func TestListSubscriptions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	svc := &services.SubscriptionService{DB: db}
	h := New(stubReconciler{}, stubLedger{}, svc, stubTemplates{})
	r := gin.New()
	r.POST("/push/subscriptions", h.CreateSubscription)
	r.GET("/push/subscriptions", h.ListSubscriptions)

	for _, ep := range []string{"https://a.example.com/1", "https://b.example.com/2"} {
		body := `{"endpoint":"` + ep + `","keys":{"p256dh":"k","auth":"a"}}`
		if w := postJSON(r, "/push/subscriptions", body); w.Code != http.StatusCreated {
			t.Fatalf("seed %s -> %d", ep, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/push/subscriptions", bytes.NewReader(nil))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Subscriptions []domain.PushSubscription `json:"subscriptions"`
		Count         int                       `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Count != 2 || len(resp.Subscriptions) != 2 {
		t.Fatalf("count=%d len=%d", resp.Count, len(resp.Subscriptions))
	}
}
