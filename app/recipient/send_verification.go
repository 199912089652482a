package recipient

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecipientSendVerification issues a fresh verification token for one of the
// caller's recipients and mails it out. Reissuing invalidates the previous
// token and resets the attempt counter
func RecipientSendVerification(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	recipientID := c.Param("id")
	if recipientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No recipient ID provided",
			"requestID": requestID,
		})
		return
	}

	err := service.IssueRecipientVerification(d.DB, d.Mailer, userID, recipientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecipientNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Recipient not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})

		case errors.Is(err, service.ErrRecipientNoEmail):
			c.JSON(http.StatusConflict, gin.H{
				"error":     "Recipient has no email address. Add one before requesting verification",
				"requestID": requestID,
			})

		case errors.Is(err, service.ErrDeliveryFailed):
			// The token survived, the frontend can offer a plain resend
			c.JSON(http.StatusBadGateway, gin.H{
				"error":      "The verification email could not be delivered. Please try again later",
				"error_code": "delivery_failed",
				"requestID":  requestID,
			})

		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to issue recipient verification", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Verification email sent",
		"requestID": requestID,
	})
}
