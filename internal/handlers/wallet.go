package handlers

import (
	"cardvault/internal/services/wallet"
	"cardvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// GetWallets returns the caller's wallets with nested currency rates.
func (h *WalletHandler) GetWallets(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallets, err := h.walletService.ListWallets(c.Context(), claims.UserID)
	if err != nil {
		return utils.InternalError(c, "Failed to get wallets")
	}

	return utils.Success(c, fiber.Map{"wallets": wallets})
}

func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		CurrencyCode string `json:"currency_code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	created, err := h.walletService.CreateWallet(c.Context(), claims.UserID, input.CurrencyCode)
	if err != nil {
		if err == wallet.ErrInvalidCurrency {
			return utils.BadRequest(c, "Unsupported currency")
		}
		return utils.InternalError(c, "Failed to create wallet")
	}

	return utils.Created(c, fiber.Map{"wallet": created})
}

func (h *WalletHandler) TopUpWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input wallet.TopUpInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.Amount <= 0 {
		return utils.BadRequest(c, "Amount must be greater than 0")
	}

	txn, err := h.walletService.TopUp(c.Context(), claims.UserID, input)
	if err != nil {
		switch err {
		case wallet.ErrInvalidAmount:
			return utils.BadRequest(c, "Amount is outside the allowed range")
		case wallet.ErrWalletNotFound:
			return utils.NotFound(c, "Wallet not found")
		case wallet.ErrWalletLocked:
			return utils.Forbidden(c, "Wallet is locked")
		case wallet.ErrPaymentDeclined:
			return utils.BadRequest(c, "Payment was declined")
		default:
			return utils.InternalError(c, "Top up failed")
		}
	}

	return utils.Success(c, fiber.Map{
		"message":     "Top up successful",
		"transaction": txn,
	})
}
