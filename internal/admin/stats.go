package admin

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// Handler serves the admin dashboard endpoints.
type Handler struct {
	DB  *pgxpool.Pool
	Log *log.Logger
}

func NewHandler(pool *pgxpool.Pool, logger *log.Logger) *Handler {
	return &Handler{DB: pool, Log: logger}
}

type platformStats struct {
	TotalUsers        int64   `json:"total_users"`
	VerifiedStreamers int64   `json:"verified_streamers"`
	PendingStreamers  int64   `json:"pending_streamers"`
	OnlineStreamers   int64   `json:"online_streamers"`
	TotalDonated      float64 `json:"total_donated"`
	DonationCount     int64   `json:"donation_count"`
	TotalWithdrawn    float64 `json:"total_withdrawn"`
	PendingWithdraws  int64   `json:"pending_withdraws"`
	HeldBalance       float64 `json:"held_balance"`
}

// Stats handles GET /admin/stats — platform-wide totals.
func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	var s platformStats
	err := h.DB.QueryRow(ctx, `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE enabled AND role = 'STREAMER'),
               COUNT(*) FILTER (WHERE NOT enabled AND role = 'STREAMER'),
               COUNT(*) FILTER (WHERE online),
               COALESCE(SUM(balance), 0)::float8
        FROM users`,
	).Scan(&s.TotalUsers, &s.VerifiedStreamers, &s.PendingStreamers, &s.OnlineStreamers, &s.HeldBalance)
	if err != nil {
		h.Log.Printf("admin: user stats: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not compute stats"})
	}

	err = h.DB.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount) FILTER (WHERE status = 'COMPLETED'), 0)::float8,
               COUNT(*) FILTER (WHERE status = 'COMPLETED')
        FROM donations`,
	).Scan(&s.TotalDonated, &s.DonationCount)
	if err != nil {
		h.Log.Printf("admin: donation stats: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not compute stats"})
	}

	err = h.DB.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount) FILTER (WHERE status = 'COMPLETED'), 0)::float8,
               COUNT(*) FILTER (WHERE status = 'PENDING')
        FROM withdrawals`,
	).Scan(&s.TotalWithdrawn, &s.PendingWithdraws)
	if err != nil {
		h.Log.Printf("admin: withdraw stats: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not compute stats"})
	}

	return c.JSON(http.StatusOK, s)
}
