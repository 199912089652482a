package service

import (
	a "bitwise74/will-api/aws"
	"bitwise74/will-api/internal/model"
	"bitwise74/will-api/pkg/util"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const minMultipartSize = 12 << 20

type Uploader struct {
	S3 *a.S3Client
}

func NewUploader(s *a.S3Client) *Uploader {
	return &Uploader{S3: s}
}

// Do stores a validated asset document in S3 and returns the database row
// to persist for it. The original file name only survives as a column, the
// object key is random to avoid collisions
func (u *Uploader) Do(r io.Reader, size int64, name, userID, category, format string, tags []string) (*model.Asset, error) {
	key := util.RandStr(12) + path.Ext(name)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(time.Minute))
	defer cancel()

	objectInput := &s3.PutObjectInput{
		Bucket:        u.S3.Bucket,
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(format),
		CacheControl:  aws.String("private, no-store"),
	}

	var err error
	if size > minMultipartSize {
		uploader := manager.NewUploader(u.S3.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})

		_, err = uploader.Upload(ctx, objectInput)
	} else {
		_, err = u.S3.C.PutObject(ctx, objectInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upload document to S3, %w", err)
	}

	return &model.Asset{
		UserID:       userID,
		FileKey:      key,
		OriginalName: name,
		Category:     category,
		Format:       format,
		Size:         size,
		Tags:         tags,
		CreatedAt:    time.Now().UnixMilli(),
	}, nil
}

// Delete removes a stored document. Used by asset deletion and account
// cleanup
func (u *Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.S3.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: u.S3.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete document from S3, %w", err)
	}

	return nil
}
