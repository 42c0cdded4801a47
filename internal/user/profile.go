package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// GET /user/user-info/:userId
func (h *Handler) GetUserInfo(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}

	var info Info
	err = h.DB.QueryRow(c.Request().Context(), `
        SELECT id, first_name, username, channel_name, profile_img_url,
               online, enabled, last_online_at, created_at
        FROM users WHERE id = $1`, id,
	).Scan(&info.ID, &info.FirstName, &info.Username, &info.ChannelName,
		&info.ProfileImgURL, &info.Online, &info.Enabled, &info.LastOnlineAt, &info.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		h.Log.Printf("user: get by id %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not fetch user"})
	}

	return c.JSON(http.StatusOK, info)
}

// GET /user/:channelName - streamer lookup for the donation page.
// Channel names are matched case-insensitively.
func (h *Handler) GetByChannelName(c echo.Context) error {
	channelName := c.Param("channelName")

	var page DonatePage
	err := h.DB.QueryRow(c.Request().Context(), `
        SELECT id, first_name, channel_name, channel_url, description,
               profile_img_url, banner_img_url, online, min_donation_amount::float8
        FROM users
        WHERE LOWER(channel_name) = LOWER($1)`, channelName,
	).Scan(&page.ID, &page.FirstName, &page.ChannelName, &page.ChannelURL,
		&page.Description, &page.ProfileImgURL, &page.BannerImgURL,
		&page.Online, &page.MinDonationAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "channel not found"})
		}
		h.Log.Printf("user: get by channel %q: %v", channelName, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not fetch channel"})
	}

	return c.JSON(http.StatusOK, page)
}

// GET /user/me - the authenticated account, including the overlay API key.
func (h *Handler) Me(c echo.Context) error {
	uid, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var p Profile
	err := h.DB.QueryRow(c.Request().Context(),
		`SELECT `+profileColumns+` FROM users WHERE id = $1`, uid,
	).Scan(&p.ID, &p.FirstName, &p.Username, &p.Description, &p.ChannelURL,
		&p.ChannelName, &p.ProfileImgURL, &p.BannerImgURL, &p.Role, &p.APIKey,
		&p.Online, &p.Enabled, &p.Balance, &p.MinDonationAmount,
		&p.LastOnlineAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		h.Log.Printf("user: me %d: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not fetch profile"})
	}

	return c.JSON(http.StatusOK, p)
}
