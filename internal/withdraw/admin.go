package withdraw

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/donatehub/backend/internal/alerts"
	"github.com/donatehub/backend/internal/settlement"
)

// Complete handles PUT /withdraw/complete/:withdrawId. Debits the
// streamer balance atomically with the status transition.
func (h *Handler) Complete(c echo.Context) error {
	withdrawID, err := strconv.ParseInt(c.Param("withdrawId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid withdraw id"})
	}

	ctx := c.Request().Context()
	settled, err := h.Settle.CompleteWithdraw(ctx, withdrawID)
	if err != nil {
		return h.settlementError(c, withdrawID, err)
	}

	h.Log.Printf("withdraw: %d completed, streamer %d debited %.2f",
		settled.ID, settled.StreamerID, settled.Amount)

	h.Notify.WithdrawSettled(ctx, alerts.WithdrawEventPayload{
		WithdrawID: settled.ID,
		StreamerID: settled.StreamerID,
		Amount:     settled.Amount,
		Status:     StatusCompleted,
	})
	return c.NoContent(http.StatusOK)
}

// Cancel handles PUT /withdraw/cancel/:withdrawId. No balance effect;
// funds were never reserved.
func (h *Handler) Cancel(c echo.Context) error {
	withdrawID, err := strconv.ParseInt(c.Param("withdrawId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid withdraw id"})
	}

	ctx := c.Request().Context()
	settled, err := h.Settle.CancelWithdraw(ctx, withdrawID)
	if err != nil {
		return h.settlementError(c, withdrawID, err)
	}

	h.Log.Printf("withdraw: %d canceled", settled.ID)

	h.Notify.WithdrawSettled(ctx, alerts.WithdrawEventPayload{
		WithdrawID: settled.ID,
		StreamerID: settled.StreamerID,
		Amount:     settled.Amount,
		Status:     StatusCanceled,
	})
	return c.NoContent(http.StatusOK)
}

func (h *Handler) settlementError(c echo.Context, id int64, err error) error {
	switch {
	case errors.Is(err, settlement.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "withdraw not found"})
	case errors.Is(err, settlement.ErrAlreadySettled):
		return c.JSON(http.StatusConflict, echo.Map{"message": "withdraw already settled"})
	case errors.Is(err, settlement.ErrInsufficientBalance):
		return c.JSON(http.StatusConflict, echo.Map{"message": "insufficient balance"})
	default:
		h.Log.Printf("withdraw: settle %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "settlement failed"})
	}
}
