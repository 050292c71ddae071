package handlers

import (
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/dto"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	postService   *services.PostService
	ledgerService *services.LedgerService
}

func NewAdminHandler(postService *services.PostService, ledgerService *services.LedgerService) *AdminHandler {
	return &AdminHandler{postService: postService, ledgerService: ledgerService}
}

// ListPosts returns every post, moderated ones and author ids included.
func (h *AdminHandler) ListPosts(c *fiber.Ctx) error {
	return c.JSON(h.postService.ListAdmin(c.UserContext()))
}

func (h *AdminHandler) Moderate(c *fiber.Ctx) error {
	var req dto.ModerationRequest
	if err := c.BodyParser(&req); err != nil || req.Hidden == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "hidden (boolean) is required",
		})
	}

	if !h.postService.Moderate(c.UserContext(), c.Params("id"), *req.Hidden) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to moderate post",
		})
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(h.postService.Stats(c.UserContext()))
}

func (h *AdminHandler) SetCredits(c *fiber.Ctx) error {
	var req dto.SetCreditsRequest
	if err := c.BodyParser(&req); err != nil || req.Credits == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "credits (integer) is required",
		})
	}

	if !h.ledgerService.SetCredits(c.UserContext(), c.Params("uid"), *req.Credits) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update credits",
		})
	}
	return c.JSON(dto.CreditsResponse{Credits: *req.Credits})
}
