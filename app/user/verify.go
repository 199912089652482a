package user

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"bitwise74/will-api/pkg/security"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func UserVerify(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No verification token provided",
			"requestID": requestID,
		})
		return
	}

	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No user ID provided",
			"requestID": requestID,
		})
		return
	}

	var user model.User

	err := d.DB.
		Select("id", "verified", "verification_code_hash", "verification_expires_at").
		Where("id = ?", userID).
		First(&user).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Token expired or invalid",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to get user verification state", zap.Error(err))
		return
	}

	if user.Verified || user.VerificationCodeHash == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Token was used already",
			"requestID": requestID,
		})
		return
	}

	if user.VerificationExpiresAt != nil && user.VerificationExpiresAt.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Token expired",
			"requestID": requestID,
		})
		return
	}

	if !security.TokenMatches(token, user.VerificationCodeHash) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Token expired or invalid",
			"requestID": requestID,
		})
		return
	}

	// Clearing the hash makes the link single use
	err = d.DB.Model(model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"verified":                true,
			"expires_at":              nil,
			"verification_code_hash":  "",
			"verification_expires_at": nil,
		}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to validate user",
			"requestID": requestID,
		})
		zap.L().Error("Failed to mark user verified", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "User validated successfully",
		"requestID": requestID,
	})
}
