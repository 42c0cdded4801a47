package user

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// PUT /user/online/:id
func (h *Handler) Online(c echo.Context) error {
	return h.setOnline(c, true)
}

// PUT /user/offline/:id
func (h *Handler) Offline(c echo.Context) error {
	return h.setOnline(c, false)
}

func (h *Handler) setOnline(c echo.Context, online bool) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	if !h.ownerOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "access denied"})
	}

	// Going online refreshes last_online_at; going offline keeps the
	// last seen timestamp.
	query := `UPDATE users SET online = $1, updated_at = NOW() WHERE id = $2`
	if online {
		query = `UPDATE users SET online = $1, last_online_at = NOW(), updated_at = NOW() WHERE id = $2`
	}

	tag, err := h.DB.Exec(c.Request().Context(), query, online, id)
	if err != nil {
		h.Log.Printf("user: set online %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not update user"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"user_id": id, "online": online})
}

func (h *Handler) ownerOrAdmin(c echo.Context, id int64) bool {
	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(string)
	return uid == id || role == RoleAdmin
}
