package auth

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves sign-in and token refresh.
type Handler struct {
	DB     *pgxpool.Pool
	Tokens *TokenIssuer
	Log    *log.Logger

	BotToken          string
	AdminUsername     string
	AdminPasswordHash string
}

type LoginResponse struct {
	Role         string `json:"role"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// POST /auth/login - Telegram login widget callback. First sign-in
// creates a disabled, unregistered account with a fresh overlay API key.
func (h *Handler) Login(c echo.Context) error {
	login := new(TelegramLogin)
	if err := c.Bind(login); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	if err := VerifyTelegramLogin(*login, h.BotToken, time.Now()); err != nil {
		h.Log.Printf("auth: rejected telegram login for %d: %v", login.ID, err)
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "telegram signature rejected"})
	}

	ctx := c.Request().Context()

	_, err := h.DB.Exec(ctx, `
        INSERT INTO users (id, first_name, username, api_key, last_online_at)
        VALUES ($1, $2, NULLIF($3, ''), $4, NOW())
        ON CONFLICT (id) DO UPDATE
        SET first_name = EXCLUDED.first_name, last_online_at = NOW(), updated_at = NOW()`,
		login.ID, login.FirstName, login.Username, uuid.New())
	if err != nil {
		h.Log.Printf("auth: upsert user %d: %v", login.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not sign in"})
	}

	var role string
	if err := h.DB.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, login.ID).Scan(&role); err != nil {
		h.Log.Printf("auth: fetch role %d: %v", login.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not sign in"})
	}

	pair, err := h.Tokens.Issue(login.ID, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token generation failed"})
	}

	return c.JSON(http.StatusOK, LoginResponse{Role: role, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// POST /auth/refresh - exchange a refresh token for a fresh pair. The
// role is re-read so promotions take effect without a new sign-in.
func (h *Handler) Refresh(c echo.Context) error {
	req := new(RefreshRequest)
	if err := c.Bind(req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "refresh token required"})
	}

	uid, role, err := h.Tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid refresh token"})
	}

	// Admin tokens are config-backed, not user rows.
	if role != "ADMIN" || uid != 0 {
		if err := h.DB.QueryRow(c.Request().Context(),
			`SELECT role FROM users WHERE id = $1`, uid).Scan(&role); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "account no longer exists"})
		}
	}

	pair, err := h.Tokens.Issue(uid, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token generation failed"})
	}

	return c.JSON(http.StatusOK, LoginResponse{Role: role, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /auth/admin/login - username + bcrypt hash from config.
func (h *Handler) AdminLogin(c echo.Context) error {
	req := new(AdminLoginRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	if h.AdminPasswordHash == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "admin login disabled"})
	}
	if req.Username != h.AdminUsername {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.AdminPasswordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	pair, err := h.Tokens.Issue(0, "ADMIN")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token generation failed"})
	}

	h.Log.Printf("auth: admin %q signed in", req.Username)
	return c.JSON(http.StatusOK, LoginResponse{Role: "ADMIN", AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}
