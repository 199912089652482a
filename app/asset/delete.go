package asset

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type deleteInfo struct {
	FileKey string
}

func AssetDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	assetID := c.Param("id")
	if assetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "ID is missing",
			"requestID": requestID,
		})
		return
	}

	var info deleteInfo

	err := d.DB.
		Model(model.Asset{}).
		Where("user_id = ? AND id = ?", userID, assetID).
		Select("file_key").
		First(&info).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Asset not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if asset exists", zap.Error(err))
		return
	}

	// Database row goes first, a dangling S3 object is recoverable while a
	// dangling row pointing at nothing is not
	err = d.DB.
		Where("user_id = ? AND id = ?", userID, assetID).
		Delete(model.Asset{}).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete asset record", zap.Error(err))
		return
	}

	if err := d.Uploader.Delete(c.Request.Context(), info.FileKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete document from S3", zap.Error(err))
		return
	}

	c.Status(http.StatusNoContent)
}
