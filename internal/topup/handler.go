package topup

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const userIDHeader = "X-User-ID"

// Handler exposes the deposit intent endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a top-up handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /topups.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: ErrInvalidAmount.Code, Message: "malformed request body"})
	}

	ownerID := c.Get(userIDHeader)
	if ownerID == "" {
		ownerID = req.UserID
	}

	intent, err := h.service.CreateIntent(c.UserContext(), CreateInput{
		OwnerID:  ownerID,
		Amount:   req.Amount,
		Currency: req.Currency,
	})
	if err != nil {
		var coded *Error
		if errors.As(err, &coded) {
			return c.Status(coded.Status).JSON(ErrorResponse{Error: coded.Code, Message: coded.Message})
		}
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: "INTERNAL_ERROR", Message: "unexpected error"})
	}

	return c.Status(http.StatusOK).JSON(CreateResponse{
		OK:          true,
		QRImage:     intent.QRImage,
		AccountName: intent.AccountName,
	})
}
