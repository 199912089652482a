// Package will holds the handlers for the will documents themselves
package will

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

type createBody struct {
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

func WillCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data createBody
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read JSON body", zap.Error(err))
		return
	}

	if data.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Title field can't be empty",
			"requestID": requestID,
		})
		return
	}

	id, err := gonanoid.Generate(charset, 16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate will ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	w := model.Will{
		ID:        id,
		UserID:    userID,
		Title:     data.Title,
		Content:   string(data.Content),
		Status:    "draft",
		CreatedAt: time.Now().UnixMilli(),
	}

	if err := d.DB.Create(&w).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create will", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, w)
}
