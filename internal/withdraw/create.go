package withdraw

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/donatehub/backend/internal/alerts"
	"github.com/donatehub/backend/internal/user"
)

type createResponse struct {
	WithdrawID int64   `json:"withdraw_id"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
}

// Create handles POST /withdraw/:streamerId?amount&cardNumber. The
// request must not exceed the current balance, though funds stay on
// the balance until an admin completes the payout.
func (h *Handler) Create(c echo.Context) error {
	streamerID, err := strconv.ParseInt(c.Param("streamerId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid streamer id"})
	}
	if err := ownerOrAdmin(c, streamerID); err != nil {
		return err
	}

	amount, err := strconv.ParseFloat(c.QueryParam("amount"), 64)
	if err != nil || amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be positive"})
	}
	card := c.QueryParam("cardNumber")
	if !ValidCard(card) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid card number"})
	}

	ctx := c.Request().Context()

	var role string
	var balance float64
	err = h.DB.QueryRow(ctx,
		`SELECT role, balance::float8 FROM users WHERE id = $1`, streamerID,
	).Scan(&role, &balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "streamer not found"})
	}
	if err != nil {
		h.Log.Printf("withdraw: streamer lookup %d: %v", streamerID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create withdraw"})
	}
	if !user.Can(role, user.CapWithdraw) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "account cannot withdraw"})
	}
	if amount > balance {
		return c.JSON(http.StatusConflict, echo.Map{"message": "amount exceeds balance"})
	}

	var withdrawID int64
	err = h.DB.QueryRow(ctx, `
        INSERT INTO withdrawals (streamer_id, amount, card_number)
        VALUES ($1, $2, $3)
        RETURNING id`,
		streamerID, amount, card,
	).Scan(&withdrawID)
	if err != nil {
		h.Log.Printf("withdraw: insert for streamer %d: %v", streamerID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create withdraw"})
	}

	h.Notify.WithdrawRequested(ctx, alerts.WithdrawEventPayload{
		WithdrawID: withdrawID,
		StreamerID: streamerID,
		Amount:     amount,
		Status:     StatusPending,
	})

	return c.JSON(http.StatusCreated, createResponse{
		WithdrawID: withdrawID,
		Amount:     amount,
		Status:     StatusPending,
	})
}
