package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

// Config holds every runtime setting. Values come from the environment;
// cmd/api loads a local .env first so development works out of the box.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	JWTSecret       string        `env:"JWT_SECRET,required"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`

	// Telegram login widget secret. Sign-ins are verified against it.
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`

	AdminUsername     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	UploadDir     string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// Optional. When empty the alert queue is disabled and completed
	// donations are only logged.
	RedisAddr string `env:"REDIS_ADDR"`

	ClickServiceID   string `env:"CLICK_SERVICE_ID"`
	ClickMerchantID  string `env:"CLICK_MERCHANT_ID"`
	MirpayMerchantID string `env:"MIRPAY_MERCHANT_ID"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
