package handler

import (
	"net/http"

	"ticket-ledger/internal/ledger"

	"github.com/gin-gonic/gin"
)

// AccountHandler funds and inspects ledger accounts.
type AccountHandler struct {
	ledger ledger.PaymentLedger
}

func NewAccountHandler(ledger ledger.PaymentLedger) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

func (h *AccountHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1", CallerIdentity())
	{
		router.POST("accounts/:owner/deposit", h.Deposit)
		router.GET("accounts/:owner", h.Balance)
	}
}

type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

func (h *AccountHandler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if err := h.ledger.Deposit(c, req.Amount, c.Param("owner")); err != nil {
		handleError(c, err, "Deposit")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deposited"})
}

func (h *AccountHandler) Balance(c *gin.Context) {
	balance, err := h.ledger.BalanceOf(c, c.Param("owner"))
	if err != nil {
		handleError(c, err, "Balance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner": c.Param("owner"), "balance": balance})
}
