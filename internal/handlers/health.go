package handlers

import (
	"cardvault/internal/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return utils.InternalError(c, "database unavailable")
	}
	if err := sqlDB.Ping(); err != nil {
		return utils.InternalError(c, "database unavailable")
	}
	return utils.Success(c, fiber.Map{"status": "ok"})
}
