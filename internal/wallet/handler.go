package wallet

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the read-only wallet surface consumed by the storefront.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Balance returns the wallet for an (owner, currency) pair.
func (h *Handler) Balance(c *fiber.Ctx) error {
	ownerID := c.Params("userId")
	currency := c.Params("currency")

	w, err := h.service.Find(c.UserContext(), ownerID, currency)
	if err != nil {
		return fiber.NewError(http.StatusNotFound, "wallet not found")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"wallet_id": w.ID,
		"owner_id":  w.OwnerID,
		"currency":  w.Currency,
		"available": w.Available,
		"held":      w.Held,
		"as_of":     time.Now().UTC().Format(time.RFC3339Nano),
	})
}
