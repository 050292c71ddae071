package handlers

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/dto"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

func (h *PostHandler) List(c *fiber.Ctx) error {
	posts := h.postService.ListPublic(c.UserContext())
	return c.JSON(dto.NewPostList(posts))
}

// Get hides moderated posts the same way the feed does.
func (h *PostHandler) Get(c *fiber.Ctx) error {
	post, ok := h.postService.GetByID(c.UserContext(), c.Params("id"))
	if !ok || post.IsModerated {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Post not found",
		})
	}
	return c.JSON(dto.NewPostResponse(post))
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: services.ErrEmptyContent.Error(),
		})
	}

	var userID *string
	if id, ok := middleware.GetIdentity(c); ok {
		userID = &id.UID
	}

	post, err := h.postService.Create(c.UserContext(), req.Content, models.PostType(req.Type), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPostType), errors.Is(err, services.ErrEmptyContent):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrCreditSpend):
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
				Error: true, Message: "Could not spend a credit for this post",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create post",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewPostResponse(post))
}

func (h *PostHandler) Like(c *fiber.Ctx) error {
	if !h.postService.Like(c.UserContext(), c.Params("id")) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to like post",
		})
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *PostHandler) Report(c *fiber.Ctx) error {
	if !h.postService.Report(c.UserContext(), c.Params("id")) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to report post",
		})
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *PostHandler) RandomHug(c *fiber.Ctx) error {
	return c.JSON(services.RandomHugMessage())
}
