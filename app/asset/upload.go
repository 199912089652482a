// Package asset holds the handlers for the document vault, the deeds and
// statements a will points at
package asset

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/validators"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var allowedCategories = map[string]bool{
	"property":  true,
	"financial": true,
	"digital":   true,
	"personal":  true,
}

func AssetUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open multipart file", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	if fh == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	category := c.PostForm("category")
	if !allowedCategories[category] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Category must be one of property, financial, digital, personal",
			"requestID": requestID,
		})
		return
	}

	var tags []string
	if raw := c.PostForm("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	code, f, err := validators.DocumentValidator(fh)
	if err != nil {
		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	format := fh.Header.Get("Content-Type")

	asset, err := d.Uploader.Do(f, fh.Size, fh.Filename, userID, category, format, tags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upload document to S3", zap.Error(err))
		return
	}

	if err := d.DB.Create(asset).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save asset record", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, asset)
}
