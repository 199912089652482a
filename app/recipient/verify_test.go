package recipient

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"bitwise74/will-api/internal/service"
	"bitwise74/will-api/pkg/middleware"
	"bitwise74/will-api/pkg/security"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupVerifyRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	db, err := gorm.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.Recipient{}))

	d := &internal.Deps{DB: db}

	router := gin.New()
	router.Use(middleware.NewRequestIDMiddleware())
	router.POST("/api/recipients/verify", func(c *gin.Context) { RecipientVerify(c, d) })

	return router, db
}

func postVerify(t *testing.T, router *gin.Engine, id, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	body, _ := json.Marshal(gin.H{"id": id, "token": token})

	req := httptest.NewRequest(http.MethodPost, "/api/recipients/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))

	return w, parsed
}

func TestRecipientVerifyEndpoint(t *testing.T) {
	router, db := setupVerifyRouter(t)

	token, err := security.GenerateVerificationToken()
	require.NoError(t, err)

	expires := time.Now().Add(time.Hour)
	rec := model.Recipient{
		ID:                    "rec1",
		UserID:                "owner1",
		Name:                  "Jane",
		Email:                 "jane@example.com",
		VerificationCodeHash:  security.HashToken(token),
		VerificationExpiresAt: &expires,
		CreatedAt:             time.Now().UnixMilli(),
	}
	require.NoError(t, db.Create(&rec).Error)

	w, parsed := postVerify(t, router, "rec1", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", parsed["status"])
	assert.Equal(t, "Jane", parsed["name"])

	// Replay must not verify twice
	w, parsed = postVerify(t, router, "rec1", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_code", parsed["error_code"])
}

func TestRecipientVerifyEndpointMissingParams(t *testing.T) {
	router, _ := setupVerifyRouter(t)

	w, parsed := postVerify(t, router, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", parsed["error_code"])
}

func TestRecipientVerifyEndpointWrongCode(t *testing.T) {
	router, db := setupVerifyRouter(t)

	token, err := security.GenerateVerificationToken()
	require.NoError(t, err)

	expires := time.Now().Add(time.Hour)
	rec := model.Recipient{
		ID:                    "rec1",
		UserID:                "owner1",
		Name:                  "Jane",
		VerificationCodeHash:  security.HashToken(token),
		VerificationExpiresAt: &expires,
		CreatedAt:             time.Now().UnixMilli(),
	}
	require.NoError(t, db.Create(&rec).Error)

	w, parsed := postVerify(t, router, "rec1", "not-the-token")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_code", parsed["error_code"])
	assert.Equal(t, float64(service.MaxVerifyAttempts-1), parsed["attempts_remaining"])
}

func TestRecipientVerifyEndpointRateLimited(t *testing.T) {
	router, db := setupVerifyRouter(t)

	token, err := security.GenerateVerificationToken()
	require.NoError(t, err)

	now := time.Now()
	expires := now.Add(time.Hour)
	rec := model.Recipient{
		ID:                        "rec1",
		UserID:                    "owner1",
		Name:                      "Jane",
		VerificationCodeHash:      security.HashToken(token),
		VerificationExpiresAt:     &expires,
		VerificationAttempts:      service.MaxVerifyAttempts,
		LastVerificationAttemptAt: &now,
		CreatedAt:                 now.UnixMilli(),
	}
	require.NoError(t, db.Create(&rec).Error)

	w, parsed := postVerify(t, router, "rec1", token)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", parsed["error_code"])
	assert.Greater(t, parsed["retry_after"], float64(0))
}

func TestRecipientVerifyEndpointExpired(t *testing.T) {
	router, db := setupVerifyRouter(t)

	token, err := security.GenerateVerificationToken()
	require.NoError(t, err)

	expires := time.Now().Add(-time.Hour)
	rec := model.Recipient{
		ID:                    "rec1",
		UserID:                "owner1",
		Name:                  "Jane",
		VerificationCodeHash:  security.HashToken(token),
		VerificationExpiresAt: &expires,
		CreatedAt:             time.Now().UnixMilli(),
	}
	require.NoError(t, db.Create(&rec).Error)

	w, parsed := postVerify(t, router, "rec1", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "expired", parsed["error_code"])
}
