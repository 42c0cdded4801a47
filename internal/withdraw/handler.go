package withdraw

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/donatehub/backend/internal/alerts"
	"github.com/donatehub/backend/internal/settlement"
	"github.com/donatehub/backend/internal/user"
)

// Handler serves the withdraw ledger endpoints.
type Handler struct {
	DB     *pgxpool.Pool
	Settle *settlement.Coordinator
	Notify *alerts.Notifier
	Log    *log.Logger
}

func NewHandler(pool *pgxpool.Pool, coord *settlement.Coordinator, notify *alerts.Notifier, logger *log.Logger) *Handler {
	return &Handler{DB: pool, Settle: coord, Notify: notify, Log: logger}
}

// ownerOrAdmin allows the streamer themselves or an admin through.
func ownerOrAdmin(c echo.Context, streamerID int64) error {
	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(string)
	if uid == streamerID || role == user.RoleAdmin {
		return nil
	}
	return c.JSON(http.StatusForbidden, echo.Map{"message": "not your account"})
}
