package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/dto"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/pricing"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AccountHandler struct {
	ledgerService *services.LedgerService
}

func NewAccountHandler(ledgerService *services.LedgerService) *AccountHandler {
	return &AccountHandler{ledgerService: ledgerService}
}

// Session is called by the UI after sign-in to create or refresh the account.
func (h *AccountHandler) Session(c *fiber.Ctx) error {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	account, err := h.ledgerService.EnsureAccount(c.UserContext(), id)
	if err != nil {
		slog.Error("ensure account failed", "user_id", id.UID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load account",
		})
	}
	return c.JSON(account)
}

func (h *AccountHandler) Get(c *fiber.Ctx) error {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	account, ok := h.ledgerService.GetAccount(c.UserContext(), id.UID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Account not found",
		})
	}
	return c.JSON(account)
}

func (h *AccountHandler) Credits(c *fiber.Ctx) error {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	return c.JSON(dto.CreditsResponse{Credits: h.ledgerService.GetCredits(c.UserContext(), id.UID)})
}

func (h *AccountHandler) CreditPackages(c *fiber.Ctx) error {
	return c.JSON(dto.NewCreditPackageList(pricing.Packages))
}
