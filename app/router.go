// Package app wires the HTTP surface together
package app

import (
	"bitwise74/will-api/app/asset"
	"bitwise74/will-api/app/recipient"
	"bitwise74/will-api/app/root"
	"bitwise74/will-api/app/user"
	"bitwise74/will-api/app/will"
	"bitwise74/will-api/aws"
	"bitwise74/will-api/db"
	"bitwise74/will-api/internal"
	"bitwise74/will-api/internal/service"
	"bitwise74/will-api/pkg/middleware"
	"bitwise74/will-api/pkg/security"
	"fmt"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

// TODO: use redis
var store = persist.NewMemoryStore(time.Minute)

func NewRouter() (*gin.Engine, error) {
	d := &internal.Deps{}

	makeLogger()

	router := gin.New()

	database, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = database

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	rateLimit := viper.GetInt("security.rate_limit")
	maxUploadSize := viper.GetInt64("upload.max_size")

	jwt := middleware.NewJWTMiddleware(database)
	turnstile := middleware.NewTurnstileMiddleware()
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
		CleanupInterval:   time.Second,
	})

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate		-> Validates a JWT token
		m.GET("/validate", jwt, root.Validate)
	}

	u := m.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/users		-> Returns the basic info of a user
		u.GET("", jwt, func(c *gin.Context) { user.UserFetch(c, d) })

		// POST /api/users 		-> Registers a new user
		u.POST("", func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/users/login 	-> Logs in a user and returns a JWT token
		u.POST("/login", func(c *gin.Context) { user.UserLogin(c, d) })

		// POST /api/users/verify	-> Verifies a new user
		u.POST("/verify", func(c *gin.Context) { user.UserVerify(c, d) })
	}

	r := m.Group("/recipients", middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/recipients				-> Lists the caller's recipients
		r.GET("", jwt, func(c *gin.Context) { recipient.RecipientFetch(c, d) })

		// POST /api/recipients				-> Adds a new recipient
		r.POST("", jwt, func(c *gin.Context) { recipient.RecipientCreate(c, d) })

		// PATCH /api/recipients/:id			-> Updates a recipient
		r.PATCH("/:id", jwt, func(c *gin.Context) { recipient.RecipientEdit(c, d) })

		// DELETE /api/recipients/:id			-> Removes a recipient
		r.DELETE("/:id", jwt, func(c *gin.Context) { recipient.RecipientDelete(c, d) })

		// POST /api/recipients/:id/verification	-> Emails a verification link to a recipient
		r.POST("/:id/verification", jwt, func(c *gin.Context) { recipient.RecipientSendVerification(c, d) })

		// POST /api/recipients/verify			-> Confirms a recipient's email, no account needed
		r.POST("/verify", turnstile, func(c *gin.Context) { recipient.RecipientVerify(c, d) })
	}

	as := m.Group("/assets", jwt)
	{
		// GET /api/assets		-> Lists the caller's documents
		as.GET("", cacheFor(15), func(c *gin.Context) { asset.AssetFetch(c, d) })

		// POST /api/assets         	-> Uploads a new document to the vault
		as.POST("", middleware.BodySizeLimiter(maxUploadSize), func(c *gin.Context) { asset.AssetUpload(c, d) })

		// DELETE /api/assets/:id	-> Deletes a document owned by a user
		as.DELETE("/:id", func(c *gin.Context) { asset.AssetDelete(c, d) })
	}

	w := m.Group("/wills", jwt, middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/wills		-> Returns a user's wills in bulk
		w.GET("", func(c *gin.Context) { will.WillFetchBulk(c, d) })

		// GET /api/wills/:id		-> Returns a will by its ID if the user owns it
		w.GET("/:id", func(c *gin.Context) { will.WillFetch(c, d) })

		// POST /api/wills         	-> Creates a new will draft
		w.POST("", func(c *gin.Context) { will.WillCreate(c, d) })

		// PATCH /api/wills/:id		-> Updates a will
		w.PATCH("/:id", func(c *gin.Context) { will.WillEdit(c, d) })
	}

	d.Argon = security.NewArgon()
	d.Mailer = service.NewSMTPMailer()

	if viper.GetBool("security.breach_check.enabled") {
		d.Pwned = security.NewPwnedClient()
	}

	s3, err := aws.NewS3()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}

	d.S3 = s3
	d.Uploader = service.NewUploader(s3)

	// Expired hashes get rejected anyway so a daily sweep is plenty
	service.VerificationCleanup(time.Hour*24, database)

	// Check for expired accounts rarely because they have a week to verify
	service.AccountCleanup(time.Hour*24*7, database, s3.C)

	return router, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
