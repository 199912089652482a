package service

import (
	"bitwise74/will-api/internal/model"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VerificationCleanup periodically clears expired verification state from
// recipients so stale hashes don't linger in the database forever. The
// verifier rejects expired hashes on its own, this just keeps the table tidy
func VerificationCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Verification cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			err := db.Model(model.Recipient{}).
				Where("verification_code_hash <> '' AND verification_expires_at < ?", time.Now()).
				Updates(map[string]any{
					"verification_code_hash":       "",
					"verification_expires_at":      nil,
					"verification_attempts":        0,
					"last_verification_attempt_at": nil,
				}).Error
			if err != nil {
				zap.L().Error("Failed to clear expired verification state", zap.Error(err))
			}
		}
	}()
}

// AccountCleanup automatically deletes accounts that were registered but
// never verified within their window, together with their S3 documents
func AccountCleanup(t time.Duration, db *gorm.DB, c *s3.Client) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Account cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			var toCleanUserIds []string

			err := db.
				Model(model.User{}).
				Where("expires_at < ?", time.Now()).
				Select("id").
				Find(&toCleanUserIds).
				Error
			if err != nil {
				zap.L().Error("Failed to query db for users to clean", zap.Error(err))
				continue
			}

			if len(toCleanUserIds) == 0 {
				continue
			}

			// Collect their document keys so S3 doesn't keep orphans
			var toCleanFileKeys []string

			err = db.
				Model(model.Asset{}).
				Where("user_id IN ?", toCleanUserIds).
				Select("file_key").
				Find(&toCleanFileKeys).
				Error
			if err != nil {
				zap.L().Error("Failed to query db for documents to delete", zap.Error(err))
				continue
			}

			if len(toCleanFileKeys) > 0 && c != nil {
				// S3 can delete at most 1000 objects per batch request
				for start := 0; start < len(toCleanFileKeys); start += 1000 {
					end := min(start+1000, len(toCleanFileKeys))

					objects := make([]types.ObjectIdentifier, end-start)
					for i, key := range toCleanFileKeys[start:end] {
						objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
					}

					if _, err := c.DeleteObjects(context.Background(), &s3.DeleteObjectsInput{
						Bucket: aws.String(viper.GetString("storage.bucket")),
						Delete: &types.Delete{
							Objects: objects,
						},
					}); err != nil {
						zap.L().Error("Failed to delete documents from S3", zap.Error(err))
					}
				}
			}

			err = db.Transaction(func(tx *gorm.DB) error {
				for _, m := range []any{model.Recipient{}, model.Asset{}, model.Will{}} {
					if err := tx.Where("user_id IN ?", toCleanUserIds).Delete(m).Error; err != nil {
						return err
					}
				}

				return tx.Where("id IN ?", toCleanUserIds).Delete(model.User{}).Error
			})
			if err != nil {
				zap.L().Error("Failed to delete users from database", zap.Error(err))
			}

			zap.L().Debug("Account cleanup finished")
		}
	}()
}
