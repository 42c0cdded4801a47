package donation

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/donatehub/backend/internal/pagination"
)

const infoColumns = `id, streamer_id, donor_name, COALESCE(message, ''), amount::float8, method, status, created_at`

// ListForStreamer handles GET /donation/:streamerId?page&size.
func (h *Handler) ListForStreamer(c echo.Context) error {
	streamerID, err := strconv.ParseInt(c.Param("streamerId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid streamer id"})
	}

	ctx := c.Request().Context()

	var exists bool
	if err := h.DB.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, streamerID,
	).Scan(&exists); err != nil {
		h.Log.Printf("donation: streamer check %d: %v", streamerID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not list donations"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "streamer not found"})
	}

	params := pagination.Parse(c.QueryParam("page"), c.QueryParam("size"))
	page, err := h.list(ctx, params,
		`WHERE streamer_id = $1`, streamerID)
	if err != nil {
		h.Log.Printf("donation: list for streamer %d: %v", streamerID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not list donations"})
	}
	return c.JSON(http.StatusOK, page)
}

// ListAll handles GET /donation?page&size (admin view).
func (h *Handler) ListAll(c echo.Context) error {
	params := pagination.Parse(c.QueryParam("page"), c.QueryParam("size"))
	page, err := h.list(c.Request().Context(), params, "")
	if err != nil {
		h.Log.Printf("donation: list all: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not list donations"})
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) list(ctx context.Context, params pagination.Params, where string, args ...any) (pagination.Page, error) {
	var total int64
	if err := h.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM donations `+where, args...,
	).Scan(&total); err != nil {
		return pagination.Page{}, err
	}

	query := `SELECT ` + infoColumns + ` FROM donations ` + where +
		` ORDER BY created_at DESC, id DESC` +
		` LIMIT ` + strconv.Itoa(params.Limit()) +
		` OFFSET ` + strconv.Itoa(params.Offset())

	rows, err := h.DB.Query(ctx, query, args...)
	if err != nil {
		return pagination.Page{}, err
	}
	defer rows.Close()

	infos := make([]Info, 0, params.Limit())
	for rows.Next() {
		var d Info
		if err := rows.Scan(&d.ID, &d.StreamerID, &d.DonorName, &d.Message,
			&d.Amount, &d.Method, &d.Status, &d.CreatedAt); err != nil {
			return pagination.Page{}, err
		}
		infos = append(infos, d)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page{}, err
	}

	return pagination.NewPage(infos, params, total), nil
}
