package auth

import (
	"testing"
	"time"
)

func signedLogin(botToken string, authDate time.Time) TelegramLogin {
	login := TelegramLogin{
		ID:        777000123,
		FirstName: "Aziz",
		Username:  "azizstream",
		AuthDate:  authDate.Unix(),
	}
	login.Hash = telegramHash(dataCheckString(login), botToken)
	return login
}

func TestVerifyTelegramLogin(t *testing.T) {
	const botToken = "12345:test-bot-token"
	now := time.Now()

	login := signedLogin(botToken, now)
	if err := VerifyTelegramLogin(login, botToken, now); err != nil {
		t.Fatalf("valid login rejected: %v", err)
	}
}

func TestVerifyTelegramLoginTampered(t *testing.T) {
	const botToken = "12345:test-bot-token"
	now := time.Now()

	login := signedLogin(botToken, now)
	login.Username = "someone-else"
	if err := VerifyTelegramLogin(login, botToken, now); err == nil {
		t.Fatalf("tampered login accepted")
	}
}

func TestVerifyTelegramLoginWrongToken(t *testing.T) {
	now := time.Now()
	login := signedLogin("12345:test-bot-token", now)
	if err := VerifyTelegramLogin(login, "another-token", now); err == nil {
		t.Fatalf("login signed with a different bot token accepted")
	}
}

func TestVerifyTelegramLoginStale(t *testing.T) {
	const botToken = "12345:test-bot-token"
	now := time.Now()

	login := signedLogin(botToken, now.Add(-25*time.Hour))
	if err := VerifyTelegramLogin(login, botToken, now); err == nil {
		t.Fatalf("stale login accepted")
	}
}
