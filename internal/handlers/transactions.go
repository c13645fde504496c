package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"serata/internal/models"
)

// OpenTransaction handles POST /api/transactions
func (h *Handlers) OpenTransaction(c *gin.Context) {
	var req models.OpenTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	txn, err := h.services.Transactions.Open(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

// GetTransaction handles GET /api/transactions/:id
func (h *Handlers) GetTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	txn, err := h.services.Transactions.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

// AttachTickets handles POST /api/transactions/:id/tickets
func (h *Handlers) AttachTickets(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.AttachTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	txn, err := h.services.Transactions.Attach(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

// CompleteTransaction handles POST /api/transactions/:id/complete
func (h *Handlers) CompleteTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CompleteTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	txn, err := h.services.Transactions.Complete(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

// FailTransaction handles POST /api/transactions/:id/fail
func (h *Handlers) FailTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.FailTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	txn, err := h.services.Transactions.Fail(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

// RefundTransaction handles POST /api/transactions/:id/refund
func (h *Handlers) RefundTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.FailTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	txn, err := h.services.Transactions.Refund(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}
