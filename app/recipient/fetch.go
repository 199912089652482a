package recipient

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RecipientFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var recipients []model.Recipient

	err := d.DB.
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&recipients).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch recipients", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, recipients)
}
