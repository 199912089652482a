package recipient

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RecipientDelete(c *gin.Context, d *internal.Deps) {
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

	res := d.DB.
		Where("user_id = ? AND id = ?", userID, recipientID).
		Delete(model.Recipient{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete recipient", zap.Error(res.Error))
		return
	}

	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Recipient not found. It either doesn't exist or you don't own it",
			"requestID": requestID,
		})
		return
	}

	c.Status(http.StatusNoContent)
}
