package handlers

import (
	"errors"

	"cardvault/internal/services/deposit"
	"cardvault/internal/services/virtualcard"
	"cardvault/internal/utils"
	"cardvault/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// OpenSession opens a deposit dialog for a card. The wallets and fee
// schedule start loading immediately; the returned snapshot reflects
// whatever has arrived by the time the response is written.
func (h *DepositHandler) OpenSession(c *fiber.Ctx) error {
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

	id, session := h.sessions.Open(claims.UserID, card)

	return utils.Created(c, fiber.Map{
		"session_id": id,
		"state":      session.Snapshot(),
	})
}

// GetSession returns the current display state of an open dialog.
func (h *DepositHandler) GetSession(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	session, err := h.sessions.Get(c.Params("sid"), claims.UserID)
	if err != nil {
		return utils.NotFound(c, "Session not found")
	}
	return utils.Success(c, fiber.Map{"state": session.Snapshot()})
}

// UpdateSession applies form edits to an open dialog. Both fields are
// optional; an empty fund_amount clears the amount.
func (h *DepositHandler) UpdateSession(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	session, err := h.sessions.Get(c.Params("sid"), claims.UserID)
	if err != nil {
		return utils.NotFound(c, "Session not found")
	}

	if v := c.FormValue("fund_amount"); v != "" {
		amount, err := validation.ParseAmount(v)
		if err != nil {
			return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{
				"errors": fiber.Map{"fund_amount": err.Error()},
			})
		}
		session.SetAmount(amount)
	} else if c.Request().PostArgs().Has("fund_amount") {
		session.SetAmount(0)
	}

	if code := c.FormValue("from_currency"); code != "" {
		if err := validation.ValidateCurrencyCode(code); err != nil {
			return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{
				"errors": fiber.Map{"from_currency": err.Error()},
			})
		}
		session.SetFromCurrency(code)
	}

	return utils.Success(c, fiber.Map{"state": session.Snapshot()})
}

// SubmitSession funds the card from the session's current form. On
// success the session is gone; on failure it stays open for a retry.
func (h *DepositHandler) SubmitSession(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	id := c.Params("sid")
	session, err := h.sessions.Get(id, claims.UserID)
	if err != nil {
		return utils.NotFound(c, "Session not found")
	}

	txn, err := session.Submit(c.Context())
	if err != nil {
		switch {
		case errors.Is(err, deposit.ErrAmountRequired),
			errors.Is(err, deposit.ErrCurrencyRequired):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, deposit.ErrSessionClosed):
			return utils.NotFound(c, "Session is closed")
		case errors.Is(err, deposit.ErrCardNotOwned):
			return utils.Forbidden(c, "Card does not belong to you")
		case errors.Is(err, deposit.ErrBelowMinimum),
			errors.Is(err, deposit.ErrAboveMaximum),
			errors.Is(err, deposit.ErrInsufficientFunds),
			errors.Is(err, deposit.ErrDailyLimitExceeded),
			errors.Is(err, deposit.ErrMonthlyLimitExceeded):
			return utils.BadRequest(c, err.Error())
		default:
			return utils.InternalError(c, "Deposit failed")
		}
	}

	h.sessions.Forget(id)

	return utils.Success(c, fiber.Map{
		"success":     true,
		"message":     "Card funded successfully",
		"transaction": txn,
	})
}

// CloseSession discards an open dialog.
func (h *DepositHandler) CloseSession(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	h.sessions.Close(c.Params("sid"), claims.UserID)
	return utils.Success(c, fiber.Map{"closed": true})
}
