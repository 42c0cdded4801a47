package user

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	defaultWindowDays = 7
	maxWindowDays     = 365
)

func windowDays(raw string) int {
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return defaultWindowDays
	}
	if days > maxWindowDays {
		return maxWindowDays
	}
	return days
}

// StatisticPoint is one day bucket of account counts.
type StatisticPoint struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// RegisterStatistics handles GET /user/statistic/register?days — sign-ups
// per day over the trailing window.
func (h *Handler) RegisterStatistics(c echo.Context) error {
	return h.statistics(c, "created_at")
}

// LastOnlineStatistics handles GET /user/statistic/last-online?days —
// streamers last seen per day over the trailing window.
func (h *Handler) LastOnlineStatistics(c echo.Context) error {
	return h.statistics(c, "last_online_at")
}

func (h *Handler) statistics(c echo.Context, column string) error {
	days := windowDays(c.QueryParam("days"))

	// column is one of the two fixed names above, never user input.
	rows, err := h.DB.Query(c.Request().Context(), `
        SELECT date_trunc('day', `+column+`) AS day, COUNT(*)
        FROM users
        WHERE `+column+` IS NOT NULL
          AND `+column+` >= NOW() - make_interval(days => $1)
        GROUP BY day ORDER BY day`, days)
	if err != nil {
		h.Log.Printf("user: %s statistics: %v", column, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not compute statistics"})
	}
	defer rows.Close()

	points := make([]StatisticPoint, 0, days)
	for rows.Next() {
		var p StatisticPoint
		if err := rows.Scan(&p.Day, &p.Count); err != nil {
			h.Log.Printf("user: %s statistics scan: %v", column, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not compute statistics"})
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		h.Log.Printf("user: %s statistics rows: %v", column, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not compute statistics"})
	}

	return c.JSON(http.StatusOK, points)
}
