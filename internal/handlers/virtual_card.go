package handlers

import (
	"strconv"

	"cardvault/internal/models"
	"cardvault/internal/services/virtualcard"
	"cardvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type VirtualCardHandler struct {
	cardService virtualcard.Service
}

func NewVirtualCardHandler(cardService virtualcard.Service) *VirtualCardHandler {
	return &VirtualCardHandler{cardService: cardService}
}

func parseCardID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}

func (h *VirtualCardHandler) ListCards(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	cards, err := h.cardService.List(c.Context(), claims.UserID)
	if err != nil {
		return utils.InternalError(c, "Failed to list cards")
	}
	return utils.Success(c, fiber.Map{"cards": cards})
}

func (h *VirtualCardHandler) IssueCard(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input models.IssueCardInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	card, err := h.cardService.Issue(c.Context(), claims.UserID, input)
	if err != nil {
		switch err {
		case virtualcard.ErrInvalidInput:
			return utils.BadRequest(c, "Card holder and currency are required")
		case virtualcard.ErrBadCurrency:
			return utils.BadRequest(c, "Unsupported card currency")
		default:
			return utils.InternalError(c, "Failed to issue card")
		}
	}
	return utils.Created(c, fiber.Map{"card": card})
}

func (h *VirtualCardHandler) GetCard(c *fiber.Ctx) error {
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
		switch err {
		case virtualcard.ErrCardNotFound:
			return utils.NotFound(c, "Card not found")
		case virtualcard.ErrCardNotOwned:
			return utils.Forbidden(c, "Card does not belong to you")
		default:
			return utils.InternalError(c, "Failed to get card")
		}
	}
	return utils.Success(c, fiber.Map{"card": card})
}

func (h *VirtualCardHandler) GetCardTransactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	cardID, err := parseCardID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid card id")
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	txns, err := h.cardService.Transactions(c.Context(), claims.UserID, cardID, limit, offset)
	if err != nil {
		switch err {
		case virtualcard.ErrCardNotFound:
			return utils.NotFound(c, "Card not found")
		case virtualcard.ErrCardNotOwned:
			return utils.Forbidden(c, "Card does not belong to you")
		default:
			return utils.InternalError(c, "Failed to list transactions")
		}
	}
	return utils.Success(c, fiber.Map{"transactions": txns})
}
