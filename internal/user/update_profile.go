package user

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// PUT /user/:userId - multipart profile update. Text fields are form
// values; profile_img and banner_img are optional file parts.
func (h *Handler) Update(c echo.Context) error {
	return h.update(c, c.Param("userId"), false)
}

// PUT /user/register/:userId - full registration: same payload as a
// profile update, but promotes UNREGISTERED to STREAMER and stamps
// full_registered_at. The account still needs an admin to enable it.
func (h *Handler) FullRegister(c echo.Context) error {
	return h.update(c, c.Param("userId"), true)
}

func (h *Handler) update(c echo.Context, idParam string, register bool) error {
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	if !h.ownerOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "access denied"})
	}

	ctx := c.Request().Context()

	var exists bool
	if err := h.DB.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		h.Log.Printf("user: update lookup %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not update user"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}

	description := c.FormValue("description")
	channelURL := c.FormValue("channel_url")
	channelName := c.FormValue("channel_name")

	var minDonation *float64
	if v := c.FormValue("min_donation_amount"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid min donation amount"})
		}
		minDonation = &parsed
	}

	profileImgURL, err := h.saveImage(c, "profile_img")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not store profile image"})
	}
	bannerImgURL, err := h.saveImage(c, "banner_img")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not store banner image"})
	}

	// Omitted form fields arrive as "", which must not wipe what the
	// user already saved. Only submitted values land in the row.
	_, err = h.DB.Exec(ctx, `
        UPDATE users SET
            description = COALESCE(NULLIF($1, ''), description),
            channel_url = COALESCE(NULLIF($2, ''), channel_url),
            channel_name = COALESCE(NULLIF($3, ''), channel_name),
            min_donation_amount = COALESCE($4, min_donation_amount),
            profile_img_url = COALESCE(NULLIF($5, ''), profile_img_url),
            banner_img_url = COALESCE(NULLIF($6, ''), banner_img_url),
            updated_at = NOW()
        WHERE id = $7`,
		description, channelURL, channelName, minDonation, profileImgURL, bannerImgURL, id)
	if err != nil {
		h.Log.Printf("user: update %d: %v", id, err)
		return c.JSON(http.StatusConflict, echo.Map{"message": "could not update user, channel name may be taken"})
	}

	if register {
		_, err = h.DB.Exec(ctx, `
            UPDATE users SET role = $1, full_registered_at = NOW(), updated_at = NOW()
            WHERE id = $2 AND role = $3`, RoleStreamer, id, RoleUnregistered)
		if err != nil {
			h.Log.Printf("user: register %d: %v", id, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not register user"})
		}
		h.Log.Printf("user: %d fully registered", id)
	}

	return c.NoContent(http.StatusNoContent)
}

// saveImage stores an optional multipart file part and returns its URL,
// or "" when the part is absent.
func (h *Handler) saveImage(c echo.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	return h.storeFile(fh)
}

func (h *Handler) storeFile(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return h.Files.Save(fh.Filename, src)
}
