// Package routes defines the API routing configuration.
// It wires repositories, services, and handlers, and applies the
// authentication middleware to the protected surface.
package routes

import (
	"cardvault/internal/handlers"
	"cardvault/internal/middleware"
	"cardvault/internal/models"
	"cardvault/internal/repositories"
	"cardvault/internal/services/auth"
	"cardvault/internal/services/deposit"
	"cardvault/internal/services/virtualcard"
	"cardvault/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, logger *zap.Logger) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	currencyRepo := repositories.NewCurrencyRepository(db)
	cardRepo := repositories.NewVirtualCardRepository(db)
	chargeRepo := repositories.NewCardChargeRepository(db)
	txnRepo := repositories.NewTransactionRepository(db)
	cacheSvc := repositories.CacheService

	// Services
	authService := auth.NewService(userRepo, logger)
	walletService := wallet.NewService(
		db,
		walletRepo,
		currencyRepo,
		txnRepo,
		cacheSvc,
		wallet.NewStripeProcessor(),
		wallet.Config{},
		logger,
	)
	cardService := virtualcard.NewService(cardRepo, currencyRepo, txnRepo, logger)

	rates := deposit.NewRateSource(walletRepo, cacheSvc, logger)
	fees := deposit.NewFeeScheduleSource(chargeRepo, cacheSvc, logger)
	ledger := deposit.NewLimitLedger(chargeRepo, txnRepo)
	depositService := deposit.NewService(
		db,
		walletRepo,
		cardRepo,
		chargeRepo,
		txnRepo,
		ledger,
		cacheSvc,
		logger,
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(walletService)
	cardHandler := handlers.NewVirtualCardHandler(cardService)
	sessions := deposit.NewManager(deposit.SessionDeps{
		Rates:   rates,
		Fees:    fees,
		Ledger:  ledger,
		Gateway: depositService,
		Logger:  logger,
	}, 0)

	depositHandler := handlers.NewDepositHandler(depositService, cardService, fees, ledger, sessions)
	healthHandler := handlers.NewHealthHandler(db)

	app.Get("/api/health", healthHandler.Check)

	api := app.Group("/api")
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)

	authed := api.Use(middleware.Auth())
	authed.Post("/logout", authHandler.Logout)

	authed.Get("/wallets",
		middleware.RequirePermission(models.PermissionWalletRead), walletHandler.GetWallets)
	authed.Post("/wallets",
		middleware.RequirePermission(models.PermissionWalletWrite), walletHandler.CreateWallet)
	authed.Post("/wallets/topup",
		middleware.RequirePermission(models.PermissionWalletWrite), walletHandler.TopUpWallet)

	authed.Get("/card-charges/reload", depositHandler.GetReloadCharge)

	authed.Get("/virtual-cards",
		middleware.RequirePermission(models.PermissionCardRead), cardHandler.ListCards)
	authed.Post("/virtual-cards",
		middleware.RequirePermission(models.PermissionCardWrite), cardHandler.IssueCard)
	authed.Get("/virtual-cards/:id",
		middleware.RequirePermission(models.PermissionCardRead), cardHandler.GetCard)
	authed.Get("/virtual-cards/:id/transactions",
		middleware.RequirePermission(models.PermissionCardRead), cardHandler.GetCardTransactions)
	authed.Get("/virtual-cards/:id/limits",
		middleware.RequirePermission(models.PermissionCardRead), depositHandler.GetRemainingLimits)
	authed.Post("/virtual-cards/:id/quote",
		middleware.RequirePermission(models.PermissionCardRead), depositHandler.Quote)
	authed.Post("/virtual-cards/:id/deposit",
		middleware.RequirePermission(models.PermissionCardWrite), depositHandler.SubmitDeposit)

	authed.Post("/virtual-cards/:id/session",
		middleware.RequirePermission(models.PermissionCardWrite), depositHandler.OpenSession)
	authed.Get("/deposit-sessions/:sid",
		middleware.RequirePermission(models.PermissionCardRead), depositHandler.GetSession)
	authed.Patch("/deposit-sessions/:sid",
		middleware.RequirePermission(models.PermissionCardWrite), depositHandler.UpdateSession)
	authed.Post("/deposit-sessions/:sid/submit",
		middleware.RequirePermission(models.PermissionCardWrite), depositHandler.SubmitSession)
	authed.Delete("/deposit-sessions/:sid",
		middleware.RequirePermission(models.PermissionCardWrite), depositHandler.CloseSession)
}
