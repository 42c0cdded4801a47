package donation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

type createRequest struct {
	DonorName string  `json:"donor_name"`
	Message   string  `json:"message"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
}

type createResponse struct {
	DonationID  int64   `json:"donation_id"`
	ExternalRef string  `json:"external_ref"`
	Amount      float64 `json:"amount"`
	PaymentURL  string  `json:"payment_url"`
}

// Create handles POST /donation/:streamerId. The donation starts
// PENDING; the provider callback settles it later.
func (h *Handler) Create(c echo.Context) error {
	streamerID, err := strconv.ParseInt(c.Param("streamerId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid streamer id"})
	}

	req := new(createRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be positive"})
	}
	method, err := ParseMethod(req.Method)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown payment method"})
	}

	ctx := c.Request().Context()

	var minAmount float64
	err = h.DB.QueryRow(ctx,
		`SELECT min_donation_amount::float8 FROM users
         WHERE id = $1 AND enabled AND role = 'STREAMER'`, streamerID,
	).Scan(&minAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "streamer not found"})
	}
	if err != nil {
		h.Log.Printf("donation: streamer lookup %d: %v", streamerID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create donation"})
	}
	if req.Amount < minAmount {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount below streamer minimum"})
	}

	externalRef := uuid.NewString()
	donorName := req.DonorName
	if donorName == "" {
		donorName = "Anonymous"
	}

	var donationID int64
	err = h.DB.QueryRow(ctx, `
        INSERT INTO donations (streamer_id, donor_name, message, amount, method, external_ref)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`,
		streamerID, donorName, req.Message, req.Amount, method, externalRef,
	).Scan(&donationID)
	if err != nil {
		h.Log.Printf("donation: insert for streamer %d: %v", streamerID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create donation"})
	}

	return c.JSON(http.StatusCreated, createResponse{
		DonationID:  donationID,
		ExternalRef: externalRef,
		Amount:      req.Amount,
		PaymentURL:  h.Links.For(method, externalRef, req.Amount),
	})
}
