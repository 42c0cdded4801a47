package donation

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/donatehub/backend/internal/alerts"
	"github.com/donatehub/backend/internal/user"
)

// CreateTest handles POST /donation/test/:streamerId — a development
// helper that pushes a donation alert straight to the streamer's
// overlay so the OBS widget can be verified without a real payment.
// Nothing is written to the ledger and no balance moves.
func (h *Handler) CreateTest(c echo.Context) error {
	streamerID, err := strconv.ParseInt(c.Param("streamerId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid streamer id"})
	}

	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(string)
	if uid != streamerID && role != user.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not your account"})
	}

	req := new(createRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if req.Amount <= 0 {
		req.Amount = 10
	}
	donorName := req.DonorName
	if donorName == "" {
		donorName = "Anonymous"
	}

	ctx := c.Request().Context()

	var exists bool
	if err := h.DB.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND enabled)`, streamerID,
	).Scan(&exists); err != nil {
		h.Log.Printf("donation: test alert lookup %d: %v", streamerID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not send test alert"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "streamer not found"})
	}

	h.Notify.DonationCompleted(ctx, alerts.DonationCompletedPayload{
		StreamerID: streamerID,
		DonorName:  donorName,
		Message:    req.Message,
		Amount:     req.Amount,
	})
	h.Log.Printf("donation: test alert sent to streamer %d", streamerID)

	return c.NoContent(http.StatusOK)
}
