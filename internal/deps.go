package internal

import (
	"bitwise74/will-api/aws"
	"bitwise74/will-api/internal/service"
	"bitwise74/will-api/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Argon    *security.ArgonHash
	S3       *aws.S3Client
	Mailer   service.Mailer
	Pwned    *security.PwnedClient
	Uploader *service.Uploader
}
