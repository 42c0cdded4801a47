package user

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/donatehub/backend/internal/pagination"
)

// GET /user/verified
func (h *Handler) Verified(c echo.Context) error {
	return h.listByEnabled(c, true)
}

// GET /user/not-verified
func (h *Handler) NotVerified(c echo.Context) error {
	return h.listByEnabled(c, false)
}

func (h *Handler) listByEnabled(c echo.Context, enabled bool) error {
	params := pagination.Parse(c.QueryParam("page"), c.QueryParam("size"))
	ctx := c.Request().Context()

	var total int64
	err := h.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE enabled = $1 AND role = $2`,
		enabled, RoleStreamer).Scan(&total)
	if err != nil {
		h.Log.Printf("user: count by enabled: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not fetch users"})
	}

	rows, err := h.DB.Query(ctx, `
        SELECT id, first_name, username, channel_name, profile_img_url,
               online, enabled, last_online_at, created_at
        FROM users
        WHERE enabled = $1 AND role = $2
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4`,
		enabled, RoleStreamer, params.Limit(), params.Offset())
	if err != nil {
		h.Log.Printf("user: list by enabled: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not fetch users"})
	}
	defer rows.Close()

	users, err := scanInfos(rows)
	if err != nil {
		h.Log.Printf("user: scan: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not read users"})
	}

	return c.JSON(http.StatusOK, pagination.NewPage(users, params, total))
}

// GET /user/search?text&page&size - case-insensitive substring match
// over first name and username.
func (h *Handler) Search(c echo.Context) error {
	text := c.QueryParam("text")
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "search text required"})
	}
	params := pagination.Parse(c.QueryParam("page"), c.QueryParam("size"))
	ctx := c.Request().Context()
	pattern := "%" + text + "%"

	var total int64
	err := h.DB.QueryRow(ctx, `
        SELECT COUNT(*) FROM users
        WHERE first_name ILIKE $1 OR username ILIKE $1`, pattern).Scan(&total)
	if err != nil {
		h.Log.Printf("user: search count: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "search failed"})
	}

	rows, err := h.DB.Query(ctx, `
        SELECT id, first_name, username, channel_name, profile_img_url,
               online, enabled, last_online_at, created_at
        FROM users
        WHERE first_name ILIKE $1 OR username ILIKE $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`, pattern, params.Limit(), params.Offset())
	if err != nil {
		h.Log.Printf("user: search: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "search failed"})
	}
	defer rows.Close()

	users, err := scanInfos(rows)
	if err != nil {
		h.Log.Printf("user: search scan: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not read users"})
	}

	return c.JSON(http.StatusOK, pagination.NewPage(users, params, total))
}

// PUT /user/enable/:id
func (h *Handler) Enable(c echo.Context) error {
	return h.setEnabled(c, true)
}

// PUT /user/disable/:id
func (h *Handler) Disable(c echo.Context) error {
	return h.setEnabled(c, false)
}

func (h *Handler) setEnabled(c echo.Context, enabled bool) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}

	tag, err := h.DB.Exec(c.Request().Context(),
		`UPDATE users SET enabled = $1, updated_at = NOW() WHERE id = $2`, enabled, id)
	if err != nil {
		h.Log.Printf("user: set enabled %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not update user"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}

	h.Log.Printf("user: %d enabled=%v", id, enabled)
	return c.JSON(http.StatusOK, echo.Map{"user_id": id, "enabled": enabled})
}

type infoRows interface {
	Next() bool
	Scan(dest ...any) error
}

func scanInfos(rows infoRows) ([]Info, error) {
	users := make([]Info, 0)
	for rows.Next() {
		var u Info
		if err := rows.Scan(&u.ID, &u.FirstName, &u.Username, &u.ChannelName,
			&u.ProfileImgURL, &u.Online, &u.Enabled, &u.LastOnlineAt, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}
