package will

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func WillFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	willID := c.Param("id")
	if willID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No will ID provided",
			"requestID": requestID,
		})
		return
	}

	var w model.Will

	err := d.DB.
		Where("user_id = ? AND id = ?", userID, willID).
		First(&w).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Will not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch will from db", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, w)
}

func WillFetchBulk(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var wills []model.Will

	err := d.DB.
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&wills).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch wills", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, wills)
}
