package donation

import (
	"context"
	"net/http"
	"strconv"

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

// Statistics handles GET /donation/statistics?days — global day-bucketed
// totals of completed donations over the trailing window.
func (h *Handler) Statistics(c echo.Context) error {
	points, err := h.statistics(c.Request().Context(), windowDays(c.QueryParam("days")), 0)
	if err != nil {
		h.Log.Printf("donation: statistics: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not compute statistics"})
	}
	return c.JSON(http.StatusOK, points)
}

// StatisticsForStreamer handles GET /donation/statistics/:streamerId?days.
func (h *Handler) StatisticsForStreamer(c echo.Context) error {
	streamerID, err := strconv.ParseInt(c.Param("streamerId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid streamer id"})
	}

	points, err := h.statistics(c.Request().Context(), windowDays(c.QueryParam("days")), streamerID)
	if err != nil {
		h.Log.Printf("donation: statistics for streamer %d: %v", streamerID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not compute statistics"})
	}
	return c.JSON(http.StatusOK, points)
}

func (h *Handler) statistics(ctx context.Context, days int, streamerID int64) ([]StatisticPoint, error) {
	query := `
        SELECT date_trunc('day', created_at) AS day, SUM(amount)::float8, COUNT(*)
        FROM donations
        WHERE status = 'COMPLETED'
          AND created_at >= NOW() - make_interval(days => $1)`
	args := []any{days}
	if streamerID != 0 {
		query += ` AND streamer_id = $2`
		args = append(args, streamerID)
	}
	query += ` GROUP BY day ORDER BY day`

	rows, err := h.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]StatisticPoint, 0, days)
	for rows.Next() {
		var p StatisticPoint
		if err := rows.Scan(&p.Day, &p.Total, &p.Count); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
