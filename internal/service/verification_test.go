package service

import (
	"bitwise74/will-api/internal/model"
	"bitwise74/will-api/pkg/security"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeMailer records every send so tests can fish out the plaintext token
type fakeMailer struct {
	lastToken     string
	lastRecipient string
	sends         int
	fail          bool
}

func (m *fakeMailer) SendRecipientVerification(to, recipientName, recipientID, token string) error {
	if m.fail {
		return errors.New("smtp connection refused")
	}

	m.lastToken = token
	m.lastRecipient = recipientID
	m.sends++
	return nil
}

func (m *fakeMailer) SendAccountVerification(to, userID, token string) error {
	return nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One shared in-memory database per test, gorm pools connections and a
	// plain :memory: DSN would give every connection its own empty database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	db, err := gorm.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(model.User{}, model.Recipient{}, model.Asset{}, model.Will{}))

	return db
}

func seedRecipient(t *testing.T, db *gorm.DB, email string) model.Recipient {
	t.Helper()

	rec := model.Recipient{
		ID:        "rec_" + fmt.Sprint(time.Now().UnixNano()),
		UserID:    "owner1",
		Name:      "Jane",
		Email:     email,
		CreatedAt: time.Now().UnixMilli(),
	}
	require.NoError(t, db.Create(&rec).Error)

	return rec
}

func TestIssueAndVerify(t *testing.T) {
	db := testDB(t)
	m := &fakeMailer{}
	rec := seedRecipient(t, db, "jane@example.com")

	require.NoError(t, IssueRecipientVerification(db, m, "owner1", rec.ID))
	require.Equal(t, 1, m.sends)

	// Only the hash may hit the database
	var stored model.Recipient
	require.NoError(t, db.First(&stored, "id = ?", rec.ID).Error)
	assert.NotEmpty(t, stored.VerificationCodeHash)
	assert.NotEqual(t, m.lastToken, stored.VerificationCodeHash)
	assert.NotNil(t, stored.VerificationExpiresAt)

	res, err := VerifyRecipientCode(db, rec.ID, m.lastToken)
	require.NoError(t, err)
	assert.Equal(t, VerifySuccess, res.Status)
	assert.Equal(t, "Jane", res.RecipientName)

	require.NoError(t, db.First(&stored, "id = ?", rec.ID).Error)
	assert.True(t, stored.IsVerified)
	assert.Empty(t, stored.VerificationCodeHash)

	// The token is single use, replaying it must fail
	res, err = VerifyRecipientCode(db, rec.ID, m.lastToken)
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, res.Status)
}

func TestVerifyUnknownRecipient(t *testing.T) {
	db := testDB(t)

	res, err := VerifyRecipientCode(db, "does-not-exist", "whatever")
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, res.Status)
}

func TestVerifyWithoutIssuedToken(t *testing.T) {
	db := testDB(t)
	rec := seedRecipient(t, db, "jane@example.com")

	res, err := VerifyRecipientCode(db, rec.ID, "whatever")
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, res.Status)
}

func TestVerifyExpiredToken(t *testing.T) {
	db := testDB(t)
	m := &fakeMailer{}
	rec := seedRecipient(t, db, "jane@example.com")

	require.NoError(t, IssueRecipientVerification(db, m, "owner1", rec.ID))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(model.Recipient{}).
		Where("id = ?", rec.ID).
		Update("verification_expires_at", past).Error)

	// Expiry wins even though the token itself is correct
	res, err := VerifyRecipientCode(db, rec.ID, m.lastToken)
	require.NoError(t, err)
	assert.Equal(t, VerifyExpired, res.Status)

	var stored model.Recipient
	require.NoError(t, db.First(&stored, "id = ?", rec.ID).Error)
	assert.False(t, stored.IsVerified)
}

func TestVerifyWrongCodeCountsAttempts(t *testing.T) {
	db := testDB(t)
	m := &fakeMailer{}
	rec := seedRecipient(t, db, "jane@example.com")

	require.NoError(t, IssueRecipientVerification(db, m, "owner1", rec.ID))

	res, err := VerifyRecipientCode(db, rec.ID, "0000000000")
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, res.Status)
	assert.Equal(t, MaxVerifyAttempts-1, res.AttemptsRemaining)

	var stored model.Recipient
	require.NoError(t, db.First(&stored, "id = ?", rec.ID).Error)
	assert.Equal(t, 1, stored.VerificationAttempts)
	assert.NotNil(t, stored.LastVerificationAttemptAt)
}

func TestVerifyRateLimited(t *testing.T) {
	db := testDB(t)
	m := &fakeMailer{}
	rec := seedRecipient(t, db, "jane@example.com")

	require.NoError(t, IssueRecipientVerification(db, m, "owner1", rec.ID))

	for i := 0; i < MaxVerifyAttempts; i++ {
		res, err := VerifyRecipientCode(db, rec.ID, "wrong")
		require.NoError(t, err)
		assert.Equal(t, VerifyInvalid, res.Status)
	}

	// Even the correct token is refused while the limit holds
	res, err := VerifyRecipientCode(db, rec.ID, m.lastToken)
	require.NoError(t, err)
	assert.Equal(t, VerifyRateLimited, res.Status)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, AttemptWindow)
}

func TestVerifyRateLimitExpiresWithWindow(t *testing.T) {
	db := testDB(t)
	m := &fakeMailer{}
	rec := seedRecipient(t, db, "jane@example.com")

	require.NoError(t, IssueRecipientVerification(db, m, "owner1", rec.ID))

	longAgo := time.Now().Add(-AttemptWindow - time.Minute)
	require.NoError(t, db.Model(model.Recipient{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"verification_attempts":        MaxVerifyAttempts,
			"last_verification_attempt_at": longAgo,
		}).Error)

	res, err := VerifyRecipientCode(db, rec.ID, m.lastToken)
	require.NoError(t, err)
	assert.Equal(t, VerifySuccess, res.Status)
}

func TestReissueInvalidatesOldToken(t *testing.T) {
	db := testDB(t)
	m := &fakeMailer{}
	rec := seedRecipient(t, db, "jane@example.com")

	require.NoError(t, IssueRecipientVerification(db, m, "owner1", rec.ID))
	firstToken := m.lastToken

	require.NoError(t, db.Model(model.Recipient{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"verification_attempts":        3,
			"last_verification_attempt_at": time.Now(),
		}).Error)

	require.NoError(t, IssueRecipientVerification(db, m, "owner1", rec.ID))
	require.NotEqual(t, firstToken, m.lastToken)

	// Reissuing wipes the attempt counter
	var stored model.Recipient
	require.NoError(t, db.First(&stored, "id = ?", rec.ID).Error)
	assert.Equal(t, 0, stored.VerificationAttempts)
	assert.Nil(t, stored.LastVerificationAttemptAt)

	res, err := VerifyRecipientCode(db, rec.ID, firstToken)
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, res.Status)

	res, err = VerifyRecipientCode(db, rec.ID, m.lastToken)
	require.NoError(t, err)
	assert.Equal(t, VerifySuccess, res.Status)
}

func TestIssueUnknownRecipient(t *testing.T) {
	db := testDB(t)

	err := IssueRecipientVerification(db, &fakeMailer{}, "owner1", "nope")
	assert.ErrorIs(t, err, ErrRecipientNotFound)
}

func TestIssueWrongOwner(t *testing.T) {
	db := testDB(t)
	rec := seedRecipient(t, db, "jane@example.com")

	err := IssueRecipientVerification(db, &fakeMailer{}, "someone-else", rec.ID)
	assert.ErrorIs(t, err, ErrRecipientNotFound)
}

func TestIssueWithoutEmail(t *testing.T) {
	db := testDB(t)
	rec := seedRecipient(t, db, "")

	err := IssueRecipientVerification(db, &fakeMailer{}, "owner1", rec.ID)
	assert.ErrorIs(t, err, ErrRecipientNoEmail)
}

func TestIssueDeliveryFailure(t *testing.T) {
	db := testDB(t)
	rec := seedRecipient(t, db, "jane@example.com")

	err := IssueRecipientVerification(db, &fakeMailer{fail: true}, "owner1", rec.ID)
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	// The hash stays so a later resend can reuse the issued state
	var stored model.Recipient
	require.NoError(t, db.First(&stored, "id = ?", rec.ID).Error)
	assert.NotEmpty(t, stored.VerificationCodeHash)
	assert.False(t, stored.IsVerified)
}

func TestStoredHashIsSHA256OfToken(t *testing.T) {
	db := testDB(t)
	m := &fakeMailer{}
	rec := seedRecipient(t, db, "jane@example.com")

	require.NoError(t, IssueRecipientVerification(db, m, "owner1", rec.ID))

	var stored model.Recipient
	require.NoError(t, db.First(&stored, "id = ?", rec.ID).Error)
	assert.Equal(t, security.HashToken(m.lastToken), stored.VerificationCodeHash)
}
