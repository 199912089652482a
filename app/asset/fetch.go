package asset

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func AssetFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	q := d.DB.Where("user_id = ?", userID)

	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var assets []model.Asset

	err := q.Order("created_at desc").Find(&assets).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch assets", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, assets)
}
