package user

import (
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/donatehub/backend/internal/storage"
)

const profileColumns = `id, first_name, username, description, channel_url, channel_name,
        profile_img_url, banner_img_url, role, api_key, online, enabled,
        balance::float8, min_donation_amount::float8, last_online_at, created_at`

// Handler serves the account directory routes.
type Handler struct {
	DB    *pgxpool.Pool
	Files storage.FileStore
	Log   *log.Logger
}

func NewHandler(db *pgxpool.Pool, files storage.FileStore, logger *log.Logger) *Handler {
	return &Handler{DB: db, Files: files, Log: logger}
}
