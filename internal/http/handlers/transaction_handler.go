// Transaction HTTP handlers.
//
// This file exposes read access to the ledger:
//   - GET /transactions       (list, paginated)
//   - GET /transactions/{id}  (single row)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ldmoura/go-payments-backend/internal/domain"
	"github.com/ldmoura/go-payments-backend/internal/services"
	"github.com/ldmoura/go-payments-backend/internal/utils"
)

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListTransactionsResponse wraps a page of transactions and pagination
// information.
type ListTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	Pagination   Pagination           `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// ListTransactions returns a page of ledger rows, newest first.
func (h *Handlers) ListTransactions(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.ledger.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListTransactionsResponse{
		Transactions: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetTransaction returns a single ledger row by id.
func (h *Handlers) GetTransaction(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "transaction id must be a UUID")
		return
	}

	tx, err := h.ledger.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "transaction not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, tx)
}
