// Notification template HTTP handler.
//
// This file exposes the settings backend for the secondary relay:
//   - PUT /templates/{event_key} (create or replace)
//
// Event keys pair a transaction type with a status, e.g. "pix_paid" or
// "boleto_expired". Message bodies may carry the placeholder tokens
// {nome}, {primeiro_nome}, {valor} and {tipo}.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ldmoura/go-payments-backend/internal/services"
)

// UpsertTemplateRequest is the JSON payload for saving a template.
type UpsertTemplateRequest struct {
	Title    string `json:"title" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Category string `json:"category"`
	Active   *bool  `json:"active"`
}

// UpsertTemplate creates or replaces the relay template for an event key.
func (h *Handlers) UpsertTemplate(c *gin.Context) {
	eventKey := c.Param("event_key")

	var req UpsertTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title and message are required")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	tpl, err := h.templates.Upsert(c.Request.Context(), eventKey, req.Title, req.Message, req.Category, active)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTemplate) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeSaveFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, tpl)
}
