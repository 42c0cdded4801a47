package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TelegramLogin is the payload the Telegram login widget posts after a
// viewer or streamer authenticates with the bot.
type TelegramLogin struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
	AuthDate  int64  `json:"auth_date"`
	Hash      string `json:"hash"`
}

const maxLoginAge = 24 * time.Hour

var (
	errBadHash   = errors.New("telegram hash mismatch")
	errStaleAuth = errors.New("telegram auth expired")
)

// VerifyTelegramLogin checks the widget signature: HMAC-SHA256 of the
// sorted key=value data-check string, keyed with SHA256(bot token).
func VerifyTelegramLogin(login TelegramLogin, botToken string, now time.Time) error {
	if now.Sub(time.Unix(login.AuthDate, 0)) > maxLoginAge {
		return errStaleAuth
	}

	expected := telegramHash(dataCheckString(login), botToken)
	if !hmac.Equal([]byte(expected), []byte(login.Hash)) {
		return errBadHash
	}
	return nil
}

func dataCheckString(login TelegramLogin) string {
	pairs := []string{
		fmt.Sprintf("auth_date=%d", login.AuthDate),
		fmt.Sprintf("id=%d", login.ID),
	}
	if login.FirstName != "" {
		pairs = append(pairs, "first_name="+login.FirstName)
	}
	if login.Username != "" {
		pairs = append(pairs, "username="+login.Username)
	}
	if login.PhotoURL != "" {
		pairs = append(pairs, "photo_url="+login.PhotoURL)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\n")
}

func telegramHash(data, botToken string) string {
	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
