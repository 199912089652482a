package service

import (
	"bitwise74/will-api/internal/model"
	"bitwise74/will-api/pkg/security"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// VerificationTTL is how long an emailed verification link stays valid
	VerificationTTL = 7 * 24 * time.Hour

	// MaxVerifyAttempts failed matches within AttemptWindow lock the
	// recipient out until the window passes. Attempts only reset to zero
	// when a fresh token is issued
	MaxVerifyAttempts = 5
	AttemptWindow     = 15 * time.Minute
)

var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrRecipientNoEmail  = errors.New("recipient has no email address")
	ErrDeliveryFailed    = errors.New("verification mail could not be delivered")
)

// VerifyStatus classifies the outcome of a single verification attempt
type VerifyStatus string

const (
	VerifySuccess     VerifyStatus = "success"
	VerifyInvalid     VerifyStatus = "invalid_code"
	VerifyExpired     VerifyStatus = "expired"
	VerifyRateLimited VerifyStatus = "rate_limited"
)

type VerifyResult struct {
	Status            VerifyStatus
	RecipientName     string
	AttemptsRemaining int
	RetryAfter        time.Duration
}

// IssueRecipientVerification generates a fresh single-use token for the
// recipient, stores only its hash and mails the plaintext out. Issuing
// always invalidates whatever token was outstanding before
func IssueRecipientVerification(db *gorm.DB, m Mailer, ownerID, recipientID string) error {
	var rec model.Recipient

	err := db.Where("id = ? AND user_id = ?", recipientID, ownerID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipientNotFound
		}

		return fmt.Errorf("failed to load recipient, %w", err)
	}

	if rec.Email == "" {
		return ErrRecipientNoEmail
	}

	token, err := security.GenerateVerificationToken()
	if err != nil {
		return err
	}

	expires := time.Now().Add(VerificationTTL)

	err = db.Model(model.Recipient{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"verification_code_hash":       security.HashToken(token),
			"verification_expires_at":      expires,
			"verification_attempts":        0,
			"last_verification_attempt_at": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to store verification state, %w", err)
	}

	// The stored hash stays put if delivery fails so the caller can retry
	// the send without invalidating a mail that might still arrive
	if err := m.SendRecipientVerification(rec.Email, rec.Name, rec.ID, token); err != nil {
		zap.L().Error("Verification mail delivery failed", zap.String("recipientID", rec.ID), zap.Error(err))
		return fmt.Errorf("%w, %w", ErrDeliveryFailed, err)
	}

	return nil
}

// VerifyRecipientCode runs a single verification attempt against the state
// stored for recipientID. Unknown IDs come back as invalid_code on purpose,
// the public endpoint must not reveal which IDs exist
func VerifyRecipientCode(db *gorm.DB, recipientID, code string) (VerifyResult, error) {
	now := time.Now()

	var rec model.Recipient

	err := db.Where("id = ?", recipientID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VerifyResult{Status: VerifyInvalid}, nil
		}

		return VerifyResult{}, fmt.Errorf("failed to load recipient, %w", err)
	}

	if rec.VerificationCodeHash == "" {
		return VerifyResult{Status: VerifyInvalid}, nil
	}

	// Expiry wins over everything else, even a correct token
	if rec.VerificationExpiresAt == nil || now.After(*rec.VerificationExpiresAt) {
		return VerifyResult{Status: VerifyExpired}, nil
	}

	if rec.VerificationAttempts >= MaxVerifyAttempts && rec.LastVerificationAttemptAt != nil {
		wait := rec.LastVerificationAttemptAt.Add(AttemptWindow).Sub(now)
		if wait > 0 {
			return VerifyResult{Status: VerifyRateLimited, RetryAfter: wait}, nil
		}
	}

	if !security.TokenMatches(code, rec.VerificationCodeHash) {
		// Increment in SQL, two racing attempts must not both read the
		// same pre-increment count
		err := db.Model(model.Recipient{}).
			Where("id = ?", rec.ID).
			Updates(map[string]any{
				"verification_attempts":        gorm.Expr("verification_attempts + 1"),
				"last_verification_attempt_at": now,
			}).Error
		if err != nil {
			return VerifyResult{}, fmt.Errorf("failed to record attempt, %w", err)
		}

		remaining := MaxVerifyAttempts - rec.VerificationAttempts - 1
		if remaining < 0 {
			remaining = 0
		}

		return VerifyResult{Status: VerifyInvalid, AttemptsRemaining: remaining}, nil
	}

	// Clearing the hash makes the token single use. Presenting the same
	// token again after this point returns invalid_code
	err = db.Model(model.Recipient{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"is_verified":                  true,
			"verification_code_hash":       "",
			"verification_expires_at":      nil,
			"verification_attempts":        0,
			"last_verification_attempt_at": nil,
		}).Error
	if err != nil {
		return VerifyResult{}, fmt.Errorf("failed to mark recipient verified, %w", err)
	}

	return VerifyResult{Status: VerifySuccess, RecipientName: rec.Name}, nil
}
