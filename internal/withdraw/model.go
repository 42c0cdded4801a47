package withdraw

import (
	"errors"
	"strings"
	"time"
)

// Withdraw request statuses.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusCanceled  = "CANCELED"
)

var ErrUnknownStatus = errors.New("unknown withdraw status")

// ParseStatus normalizes a status query value for listings.
func ParseStatus(raw string) (string, error) {
	switch strings.ToUpper(raw) {
	case StatusPending:
		return StatusPending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCanceled:
		return StatusCanceled, nil
	default:
		return "", ErrUnknownStatus
	}
}

// Info is the listing view of a withdraw request. The card number is
// masked down to its last four digits.
type Info struct {
	ID         int64     `json:"id"`
	StreamerID int64     `json:"streamer_id"`
	Amount     float64   `json:"amount"`
	CardNumber string    `json:"card_number"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// MaskCard keeps the last four digits of a card number.
func MaskCard(card string) string {
	if len(card) <= 4 {
		return card
	}
	return strings.Repeat("*", len(card)-4) + card[len(card)-4:]
}
