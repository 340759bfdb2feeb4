package server

import (
	"context"
	"net/http"
	"time"

	"timebank/internal/admin"
	"timebank/internal/auth"
	"timebank/internal/booking"
	"timebank/internal/config"
	"timebank/internal/db"
	"timebank/internal/email"
	"timebank/internal/offer"
	"timebank/internal/transaction"
	"timebank/internal/user"
	"timebank/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router  *gin.Engine
	http    *http.Server
	limiter *RateLimiter
}

// New wires repositories, services and handlers onto one router. emailService may be
// nil, in which case booking notifications are skipped.
func New(database *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute)
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
		limiter.Middleware(),
	)

	txManager := db.NewTxManager(database)
	userRepo := user.NewRepository(database)
	walletRepo := wallet.NewRepository(database)
	offerRepo := offer.NewRepository(database)
	bookingRepo := booking.NewRepository(database)
	transactionRepo := transaction.NewRepository(database)

	var notifier booking.Notifier
	if emailService != nil {
		notifier = emailService
	}

	userService := user.NewService(userRepo, walletRepo, txManager, user.Config{
		AccessSecret:   cfg.JWTSecret,
		RefreshSecret:  cfg.JWTRefreshSecret,
		InitialBalance: cfg.InitialWalletBalance,
	})
	transactionService := transaction.NewService(transactionRepo)

	userHandler := user.NewHandler(userService)
	walletHandler := wallet.NewHandler(wallet.NewService(walletRepo))
	transactionHandler := transaction.NewHandler(transactionService)
	offerHandler := offer.NewHandler(offer.NewService(offerRepo, userRepo))
	bookingHandler := booking.NewHandler(booking.NewService(
		bookingRepo, offerRepo, userRepo, walletRepo, transactionRepo, txManager, notifier,
	))
	adminHandler := admin.NewHandler(admin.NewService(userRepo, userService, transactionService, txManager))

	accounts := user.NewIdentityResolver(userRepo)
	requireAuth := auth.AuthMiddleware(cfg.JWTSecret, accounts)
	apiGroup := router.Group("/api")

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/register", userHandler.Register)
		authGroup.POST("/login", userHandler.Login)
		authGroup.POST("/refresh", userHandler.RefreshToken)
	}

	apiGroup.GET("/users/me", requireAuth, userHandler.GetMe)
	apiGroup.GET("/wallet/me", requireAuth, walletHandler.GetMyWallet)
	apiGroup.GET("/transactions/my", requireAuth, transactionHandler.ListMine)

	offers := apiGroup.Group("/offers")
	{
		offers.GET("", offerHandler.List)
		offers.GET("/active/list", offerHandler.ListActive)
		offers.GET("/owner/:ownerId", offerHandler.ListByOwner)
		offers.GET("/my-offers", requireAuth, offerHandler.ListMine)
		offers.GET("/:offerId", offerHandler.Get)
		offers.POST("", requireAuth, offerHandler.Create)
		offers.PUT("/:offerId", requireAuth, offerHandler.Update)
		offers.PUT("/:offerId/activate", requireAuth, offerHandler.Activate)
		offers.PUT("/:offerId/deactivate", requireAuth, offerHandler.Deactivate)
	}

	bookings := apiGroup.Group("/bookings")
	{
		bookings.GET("/offer/:offerId", bookingHandler.ListByOffer)
		bookings.GET("/status/:status", bookingHandler.ListByStatus)
		bookings.GET("/my/as-requester", requireAuth, bookingHandler.ListMineAsRequester)
		bookings.GET("/my/as-owner", requireAuth, bookingHandler.ListMineAsOwner)
		bookings.GET("/:bookingId", bookingHandler.Get)
		bookings.POST("", requireAuth, bookingHandler.Create)
		bookings.PUT("/:bookingId/confirm", requireAuth, bookingHandler.Confirm)
		bookings.PUT("/:bookingId/complete", requireAuth, bookingHandler.Complete)
		bookings.PUT("/:bookingId/cancel", requireAuth, bookingHandler.Cancel)
	}

	apiGroup.POST("/admin/create-admin", auth.OptionalAuthMiddleware(cfg.JWTSecret, accounts), adminHandler.CreateAdmin)
	adminGroup := apiGroup.Group("/admin")
	adminGroup.Use(requireAuth, auth.RequireRole(auth.RoleAdmin))
	{
		adminGroup.GET("/users", adminHandler.ListUsers)
		adminGroup.GET("/users/:userId", adminHandler.GetUser)
		adminGroup.PUT("/users/:userId/activate", adminHandler.ActivateUser)
		adminGroup.PUT("/users/:userId/deactivate", adminHandler.DeactivateUser)
		adminGroup.PUT("/users/:userId/role", adminHandler.UpdateRole)

		adminGroup.GET("/transactions", adminHandler.ListTransactions)
		adminGroup.GET("/transactions/date-range", adminHandler.ListTransactionsByDateRange)
		adminGroup.GET("/transactions/user/:userId", adminHandler.ListUserTransactions)
		adminGroup.GET("/transactions/type/:type", adminHandler.ListTransactionsByType)
		adminGroup.GET("/transactions/:transactionId", adminHandler.GetTransaction)
	}

	router.GET("/health", Health(database))
	router.GET("/metrics", Metrics())
	setupSwagger(router)

	return &Server{
		router:  router,
		limiter: limiter,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. After Shutdown it returns http.ErrServerClosed.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.http.Shutdown(ctx)
}
