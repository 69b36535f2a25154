package handler

import (
	"net/http"
	"strconv"

	apperrors "ticket-ledger/pkg/app_errors"
	"ticket-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// ParamInt64 parses a numeric path parameter, responding 400 on failure.
func ParamInt64(c *gin.Context, name string) (int64, bool) {
	val, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return val, true
}

// handleError maps domain sentinels to HTTP statuses. Shared by all handlers.
func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch err {
	case apperrors.ErrEventNotFound, apperrors.ErrTicketNotFound, apperrors.ErrAuthCodeNotFound, apperrors.ErrAccountNotFound:
		log.Warn("Not found")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.ErrUnauthorized:
		log.Warn("Unauthorized")
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case apperrors.ErrInvalidInput, apperrors.ErrInvalidPrice, apperrors.ErrInvalidDate, apperrors.ErrInvalidQuantity:
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.ErrInsufficientFunds:
		log.Warn("Insufficient payment")
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case apperrors.ErrEventExpired, apperrors.ErrSoldOut, apperrors.ErrAlreadyUsed,
		apperrors.ErrAlreadyCheckedIn, apperrors.ErrNotForSale, apperrors.ErrSelfTransfer,
		apperrors.ErrExceedsMaxPerUser:
		log.Warn("Operation rejected")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
