package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/config"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/dto"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/payments"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	cfg            *config.Config
}

func NewPaymentHandler(paymentService *services.PaymentService, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, cfg: cfg}
}

// CreateCheckout redirects back to the calling site, falling back to
// PUBLIC_BASE_URL when the request carries no Origin.
func (h *PaymentHandler) CreateCheckout(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	origin := c.Get(fiber.HeaderOrigin)
	if origin == "" {
		origin = h.cfg.PublicBaseURL
	}

	url, err := h.paymentService.StartCheckout(c.UserContext(), req.PackageID, req.UserID, origin)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPackage):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid package",
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		slog.Error("error creating checkout session", "user_id", req.UserID, "package_id", req.PackageID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(dto.CheckoutResponse{URL: url})
}

// HandleStripe verifies the raw body against the Stripe-Signature header.
func (h *PaymentHandler) HandleStripe(c *fiber.Ctx) error {
	err := h.paymentService.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInvalidSignature):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid signature",
			})
		case errors.Is(err, services.ErrInvalidEvent):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid event",
			})
		}
		slog.Error("webhook processing failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}

	return c.JSON(dto.WebhookAck{Received: true})
}
