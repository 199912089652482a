// Package recipient holds the handlers for managing the people named in a
// will and for the email verification flow they go through
package recipient

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"bitwise74/will-api/validators"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

type createBody struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
}

func RecipientCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data createBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Name field can't be empty",
			"requestID": requestID,
		})
		return
	}

	// Email is optional at creation time but must be valid when present,
	// verification can't be issued without one
	if data.Email != "" {
		if err := validators.EmailValidator(data.Email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}
	}

	id, err := gonanoid.Generate(charset, 16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate recipient ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	rec := model.Recipient{
		ID:           id,
		UserID:       userID,
		Name:         data.Name,
		Email:        data.Email,
		Relationship: data.Relationship,
		CreatedAt:    time.Now().UnixMilli(),
	}

	if err := d.DB.Create(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create recipient", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, rec)
}
