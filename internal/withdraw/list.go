package withdraw

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/donatehub/backend/internal/pagination"
)

// ByStatus handles GET /withdraw?page&size&status (admin view).
func (h *Handler) ByStatus(c echo.Context) error {
	status, err := ParseStatus(c.QueryParam("status"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown status"})
	}

	params := pagination.Parse(c.QueryParam("page"), c.QueryParam("size"))
	page, err := h.list(c.Request().Context(), params,
		`WHERE status = $1`, status)
	if err != nil {
		h.Log.Printf("withdraw: list by status %s: %v", status, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not list withdrawals"})
	}
	return c.JSON(http.StatusOK, page)
}

// ForStreamerByStatus handles GET /withdraw/:streamerId?page&size&status.
func (h *Handler) ForStreamerByStatus(c echo.Context) error {
	streamerID, err := strconv.ParseInt(c.Param("streamerId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid streamer id"})
	}
	if err := ownerOrAdmin(c, streamerID); err != nil {
		return err
	}

	status, err := ParseStatus(c.QueryParam("status"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown status"})
	}

	params := pagination.Parse(c.QueryParam("page"), c.QueryParam("size"))
	page, err := h.list(c.Request().Context(), params,
		`WHERE streamer_id = $1 AND status = $2`, streamerID, status)
	if err != nil {
		h.Log.Printf("withdraw: list for streamer %d: %v", streamerID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not list withdrawals"})
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) list(ctx context.Context, params pagination.Params, where string, args ...any) (pagination.Page, error) {
	var total int64
	if err := h.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM withdrawals `+where, args...,
	).Scan(&total); err != nil {
		return pagination.Page{}, err
	}

	query := `SELECT id, streamer_id, amount::float8, card_number, status, created_at
        FROM withdrawals ` + where +
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
		var w Info
		if err := rows.Scan(&w.ID, &w.StreamerID, &w.Amount, &w.CardNumber, &w.Status, &w.CreatedAt); err != nil {
			return pagination.Page{}, err
		}
		w.CardNumber = MaskCard(w.CardNumber)
		infos = append(infos, w)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page{}, err
	}

	return pagination.NewPage(infos, params, total), nil
}
