// Push subscription HTTP handlers.
//
// This file exposes the browser-facing registration endpoints:
//   - POST /push/subscriptions (register)
//   - GET  /push/subscriptions (list)
//
// The request shape mirrors the browser PushSubscription JSON: an endpoint
// URL plus the client's p256dh and auth keys.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ldmoura/go-payments-backend/internal/services"
)

// CreateSubscriptionRequest is the JSON payload for registering a push
// subscription.
type CreateSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

// CreateSubscription registers a new push subscription endpoint.
func (h *Handlers) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "endpoint and keys are required")
		return
	}

	sub, err := h.subs.Register(c.Request.Context(), req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSubscription):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrDuplicateSubscription):
			fail(c, http.StatusConflict, ErrCodeConflict, "subscription already registered")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSaveFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, sub)
}

// ListSubscriptions returns all registered push subscriptions.
func (h *Handlers) ListSubscriptions(c *gin.Context) {
	subs, err := h.subs.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"subscriptions": subs, "count": len(subs)})
}
