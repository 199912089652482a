package recipient

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"bitwise74/will-api/validators"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type editBody struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Relationship *string `json:"relationship,omitempty"`
}

func RecipientEdit(c *gin.Context, d *internal.Deps) {
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

	var data editBody
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read JSON body", zap.Error(err))
		return
	}

	if data.Name == nil && data.Email == nil && data.Relationship == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No edit options provided",
			"requestID": requestID,
		})
		return
	}

	if data.Name != nil && *data.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Empty name",
			"requestID": requestID,
		})
		return
	}

	var rec model.Recipient
	err := d.DB.
		Where("user_id = ? AND id = ?", userID, recipientID).
		First(&rec).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Recipient not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch recipient from db", zap.Error(err))
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UnixMilli(),
	}

	if data.Name != nil {
		updates["name"] = *data.Name
	}

	if data.Relationship != nil {
		updates["relationship"] = *data.Relationship
	}

	// Changing the address voids any verification done against the old one
	if data.Email != nil && *data.Email != rec.Email {
		if *data.Email != "" {
			if err := validators.EmailValidator(*data.Email); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     err.Error(),
					"requestID": requestID,
				})
				return
			}
		}

		updates["email"] = *data.Email
		updates["is_verified"] = false
		updates["verification_code_hash"] = ""
		updates["verification_expires_at"] = nil
		updates["verification_attempts"] = 0
		updates["last_verification_attempt_at"] = nil
	}

	err = d.DB.Model(model.Recipient{}).
		Where("id = ?", rec.ID).
		Updates(updates).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update recipient", zap.Error(err))
		return
	}

	err = d.DB.Where("id = ?", rec.ID).First(&rec).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to reload recipient", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, rec)
}
