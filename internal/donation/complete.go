package donation

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donatehub/backend/internal/alerts"
	"github.com/donatehub/backend/internal/settlement"
)

// Complete handles POST /donation/complete/:method — the payment
// provider callback. Providers retry on non-2xx, so the settlement
// layer must stay idempotent behind this endpoint.
func (h *Handler) Complete(c echo.Context) error {
	method, err := ParseMethod(c.Param("method"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown payment method"})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable body"})
	}

	cb, err := ParseCallback(method, body)
	if err != nil {
		h.Log.Printf("donation: bad %s callback: %v", method, err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "malformed callback"})
	}

	ctx := c.Request().Context()

	if cb.Failed {
		if err := h.Settle.FailDonation(ctx, cb.ExternalRef, method); err != nil {
			return h.settlementError(c, cb.ExternalRef, err)
		}
		h.Log.Printf("donation: %s marked failed by provider", cb.ExternalRef)
		return c.NoContent(http.StatusOK)
	}

	settled, err := h.Settle.SettleDonation(ctx, cb.ExternalRef, method, cb.Amount)
	if err != nil {
		return h.settlementError(c, cb.ExternalRef, err)
	}

	h.Log.Printf("donation: %s settled, streamer %d credited %.2f",
		cb.ExternalRef, settled.StreamerID, settled.Amount)

	h.Notify.DonationCompleted(ctx, alerts.DonationCompletedPayload{
		DonationID: settled.ID,
		StreamerID: settled.StreamerID,
		DonorName:  settled.DonorName,
		Message:    settled.Message,
		Amount:     settled.Amount,
	})

	return c.NoContent(http.StatusOK)
}

func (h *Handler) settlementError(c echo.Context, ref string, err error) error {
	switch {
	case errors.Is(err, settlement.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "unknown payment reference"})
	case errors.Is(err, settlement.ErrAlreadySettled):
		return c.JSON(http.StatusConflict, echo.Map{"message": "payment already settled"})
	case errors.Is(err, settlement.ErrAmountMismatch):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "callback amount mismatch"})
	default:
		h.Log.Printf("donation: settle %s: %v", ref, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "settlement failed"})
	}
}
