package will

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type editBody struct {
	Title   *string         `json:"title,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
	Status  *string         `json:"status,omitempty"`
}

var allowedStatuses = map[string]bool{
	"draft":     true,
	"finalized": true,
}

func WillEdit(c *gin.Context, d *internal.Deps) {
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

	var data editBody
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read JSON body", zap.Error(err))
		return
	}

	if data.Title == nil && data.Content == nil && data.Status == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No edit options provided",
			"requestID": requestID,
		})
		return
	}

	if data.Title != nil && *data.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Empty title",
			"requestID": requestID,
		})
		return
	}

	if data.Status != nil && !allowedStatuses[*data.Status] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Status must be draft or finalized",
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

	// Finalized wills are immutable apart from being reopened as drafts
	if w.Status == "finalized" && (data.Title != nil || data.Content != nil) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "This will is finalized. Reopen it as a draft before editing",
			"requestID": requestID,
		})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UnixMilli(),
	}

	if data.Title != nil {
		updates["title"] = *data.Title
	}

	if data.Content != nil {
		updates["content"] = string(data.Content)
	}

	if data.Status != nil {
		updates["status"] = *data.Status
	}

	err = d.DB.Model(model.Will{}).
		Where("id = ?", w.ID).
		Updates(updates).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update will", zap.Error(err))
		return
	}

	err = d.DB.Where("id = ?", w.ID).First(&w).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to reload will", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, w)
}
