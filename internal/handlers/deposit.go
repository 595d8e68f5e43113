package handlers

import (
	"errors"

	"cardvault/internal/models"
	"cardvault/internal/services/deposit"
	"cardvault/internal/services/limits"
	"cardvault/internal/services/virtualcard"
	"cardvault/internal/utils"
	"cardvault/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// DepositHandler exposes the card funding flow: the fee schedule, the
// remaining limits, conversion quotes, and the submission itself.
type DepositHandler struct {
	depositService *deposit.Service
	cardService    virtualcard.Service
	fees           deposit.FeeScheduleSource
	ledger         deposit.LimitLedger
	sessions       *deposit.Manager
}

func NewDepositHandler(
	depositService *deposit.Service,
	cardService virtualcard.Service,
	fees deposit.FeeScheduleSource,
	ledger deposit.LimitLedger,
	sessions *deposit.Manager,
) *DepositHandler {
	return &DepositHandler{
		depositService: depositService,
		cardService:    cardService,
		fees:           fees,
		ledger:         ledger,
		sessions:       sessions,
	}
}

// GetReloadCharge returns the active card reload fee schedule.
func (h *DepositHandler) GetReloadCharge(c *fiber.Ctx) error {
	charge, err := h.fees.FetchCardReloadCharge(c.Context())
	if err != nil {
		return utils.InternalError(c, "Failed to get fee schedule")
	}
	return utils.Success(c, fiber.Map{"card_reload_charge": charge})
}

// GetRemainingLimits returns how much of the daily/monthly allowance
// remains for a card. Amount is optional; some limit policies are
// amount-aware on the server side.
func (h *DepositHandler) GetRemainingLimits(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	cardID, err := parseCardID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid card id")
	}

	card, err := h.cardService.Get(c.Context(), claims.UserID, cardID)
	if err != nil {
		if errors.Is(err, virtualcard.ErrCardNotOwned) {
			return utils.Forbidden(c, "Card does not belong to you")
		}
		return utils.NotFound(c, "Card not found")
	}

	charge, err := h.fees.FetchCardReloadCharge(c.Context())
	if err != nil {
		return utils.InternalError(c, "Failed to get fee schedule")
	}

	amount := c.QueryFloat("amount", 0)
	usage, err := h.ledger.FetchRemainingLimits(c.Context(), deposit.LimitQuery{
		TransactionType: models.TransactionTypeCardFund,
		Attribute:       deposit.LimitAttribute,
		Amount:          amount,
		CurrencyCode:    card.CurrencyCode,
		ChargeID:        charge.ID,
		CardID:          card.ID,
	})
	if err != nil {
		return utils.InternalError(c, "Failed to get remaining limits")
	}

	return utils.Success(c, fiber.Map{
		"usage":     usage,
		"remaining": limits.Remaining(usage, card.CurrencyCode),
		"limits":    limits.Static(charge, card.CurrencyCode),
	})
}

// Quote runs the conversion calculator for a prospective deposit.
func (h *DepositHandler) Quote(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	cardID, err := parseCardID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid card id")
	}

	var req deposit.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	req.CardID = cardID

	resp, err := h.depositService.Quote(c.Context(), claims.UserID, req)
	if err != nil {
		if errors.Is(err, deposit.ErrCardNotOwned) {
			return utils.Forbidden(c, "Card does not belong to you")
		}
		return utils.InternalError(c, "Failed to build quote")
	}
	return utils.Success(c, resp)
}

// SubmitDeposit accepts the multipart deposit form and funds the card.
// Validation failures are surfaced inline per field; submission errors
// keep the form retryable.
func (h *DepositHandler) SubmitDeposit(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	cardID, err := parseCardID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid card id")
	}

	amount, err := validation.ParseAmount(c.FormValue("fund_amount"))
	if err != nil {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{
			"errors": fiber.Map{"fund_amount": err.Error()},
		})
	}

	fromCurrency := c.FormValue("from_currency")
	if err := validation.ValidateCurrencyCode(fromCurrency); err != nil {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{
			"errors": fiber.Map{"from_currency": err.Error()},
		})
	}

	txn, err := h.depositService.SubmitDeposit(c.Context(), claims.UserID, deposit.Payload{
		FundAmount:   amount,
		CardID:       cardID,
		Currency:     c.FormValue("currency"),
		FromCurrency: fromCurrency,
	})
	if err != nil {
		switch {
		case errors.Is(err, deposit.ErrCardNotOwned):
			return utils.Forbidden(c, "Card does not belong to you")
		case errors.Is(err, deposit.ErrCardNotActive),
			errors.Is(err, deposit.ErrWalletNotActive):
			return utils.Forbidden(c, err.Error())
		case errors.Is(err, deposit.ErrInvalidAmount),
			errors.Is(err, deposit.ErrCurrencyRequired),
			errors.Is(err, deposit.ErrCurrencyMismatch),
			errors.Is(err, deposit.ErrBelowMinimum),
			errors.Is(err, deposit.ErrAboveMaximum),
			errors.Is(err, deposit.ErrInsufficientFunds),
			errors.Is(err, deposit.ErrDailyLimitExceeded),
			errors.Is(err, deposit.ErrMonthlyLimitExceeded):
			return utils.BadRequest(c, err.Error())
		default:
			return utils.InternalError(c, "Deposit failed")
		}
	}

	return utils.Success(c, fiber.Map{
		"success":     true,
		"message":     "Card funded successfully",
		"transaction": txn,
	})
}
