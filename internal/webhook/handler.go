package webhook

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler receives provider confirmations.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a webhook handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Receive handles POST /webhooks/payment. It acknowledges success regardless
// of whether the notification could be correlated: providers retry on non-2xx,
// and a payload that can never resolve would otherwise be resent indefinitely.
func (h *Handler) Receive(c *fiber.Ctx) error {
	fields := Normalize(c.Body(), c.Get(fiber.HeaderContentType))

	outcome, err := h.service.Process(c.UserContext(), fields)
	if err != nil {
		h.logger.Error("webhook processing failed", "error", err)
		return fiber.NewError(http.StatusInternalServerError, "processing failed")
	}

	h.logger.Info("webhook processed",
		"result", outcome.Result,
		"transaction_id", outcome.TransactionID,
		"amount", outcome.Amount,
	)

	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}
