package handler

import (
	"net/http"

	"ticket-ledger/internal/model"

	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// CallerIdentity extracts the caller's account identity from the X-Caller-ID
// header. The header is supplied by the ledger gateway, which has already
// authenticated the caller; requests without it are rejected.
func CallerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetHeader("X-Caller-ID")
		if caller == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing caller identity"})
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// Caller returns the identity set by CallerIdentity.
func Caller(c *gin.Context) model.Identity {
	return c.GetString(callerKey)
}
