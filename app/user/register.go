package user

import (
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/model"
	"bitwise74/will-api/internal/service"
	"bitwise74/will-api/pkg/security"
	"bitwise74/will-api/validators"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

type registerBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		zap.L().Debug("Invalid email", zap.Error(err), zap.String("requestID", requestID))

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	// The breach check is advisory infrastructure, it must never block
	// registration when the range API is down
	var lc validators.LeakChecker
	if viper.GetBool("security.breach_check.enabled") && d.Pwned != nil {
		lc = d.Pwned
	}

	report := validators.ValidatePasswordSecurity(c.Request.Context(), data.Password, lc)
	if !report.Valid {
		zap.L().Debug("Password rejected", zap.String("requestID", requestID), zap.Bool("leaked", report.Leaked))

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     report.Message,
			"leaked":    report.Leaked,
			"requestID": requestID,
		})
		return
	}

	var found bool

	r := d.DB.Model(model.User{}).
		Select("count(*) > 0").
		Where("email = ?", data.Email).
		First(&found)
	if r.Error != nil && r.Error != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if user is registered", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if found {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "This email is already registered. Please login or use a different email",
			"requestID": requestID,
		})
		return
	}

	hash, err := d.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	userID, err := gonanoid.Generate(charset, 16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate user ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	verifToken, err := security.GenerateVerificationToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate verification token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Try to send mail now so we don't create accounts nobody can verify
	err = d.Mailer.SendAccountVerification(data.Email, userID, verifToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to send verification email", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Unverified accounts get a week before cleanup claims them
	expiry := time.Now().Add(time.Hour * 24 * 7)
	verifExpiry := time.Now().Add(service.VerificationTTL)

	if err := d.DB.Create(&model.User{
		ID:                    userID,
		Email:                 data.Email,
		ExpiresAt:             &expiry,
		PasswordHash:          hash,
		VerificationCodeHash:  security.HashToken(verifToken),
		VerificationExpiresAt: &verifExpiry,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.SetCookie("user_id", userID, 9999999, "/", "", viper.GetBool("host.ssl.enabled"), false)

	c.JSON(http.StatusOK, gin.H{
		"userID": userID,
	})
}
