package recipient

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/service"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type verifyBody struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// RecipientVerify is the only unauthenticated recipient endpoint. The person
// clicking the emailed link has no account here, so it sits behind Turnstile
// and the per-recipient attempt limit instead of a session
func RecipientVerify(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data verifyBody
	if err := c.ShouldBind(&data); err != nil || data.ID == "" || data.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Both id and token are required",
			"error_code": "invalid_request",
			"requestID":  requestID,
		})
		return
	}

	res, err := service.VerifyRecipientCode(d.DB, data.ID, data.Token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Verification attempt failed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	switch res.Status {
	case service.VerifySuccess:
		c.JSON(http.StatusOK, gin.H{
			"status":    string(res.Status),
			"name":      res.RecipientName,
			"requestID": requestID,
		})

	case service.VerifyExpired:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "This verification link has expired. Ask the will owner to send a new one",
			"error_code": string(res.Status),
			"requestID":  requestID,
		})

	case service.VerifyRateLimited:
		retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))

		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Too many failed attempts. Please wait before trying again",
			"error_code":  string(res.Status),
			"retry_after": retryAfter,
			"requestID":   requestID,
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":              "Invalid or unknown verification code",
			"error_code":         string(res.Status),
			"attempts_remaining": res.AttemptsRemaining,
			"requestID":          requestID,
		})
	}
}
