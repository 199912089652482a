package user

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserFetch returns the data the dashboard needs on first load, the owner's
// recipients and a summary of what's stored in the vault
func UserFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var user model.User

	err := d.DB.
		Select("id", "email", "verified").
		Where("id = ?", userID).
		First(&user).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch initial user data", zap.Error(err))
		return
	}

	var recipients []model.Recipient
	err = d.DB.
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&recipients).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch initial user data", zap.Error(err))
		return
	}

	var assetCount, willCount int64

	if err := d.DB.Model(model.Asset{}).Where("user_id = ?", userID).Count(&assetCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to count assets", zap.Error(err))
		return
	}

	if err := d.DB.Model(model.Will{}).Where("user_id = ?", userID).Count(&willCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to count wills", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":      user.Email,
		"verified":   user.Verified,
		"recipients": recipients,
		"assets":     assetCount,
		"wills":      willCount,
	})
}
