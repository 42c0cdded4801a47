package donation

import (
	"errors"
	"strings"
	"time"
)

// Payment methods accepted from donors.
const (
	MethodClick  = "CLICK"
	MethodMirpay = "MIRPAY"
)

// Donation statuses.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

var ErrUnknownMethod = errors.New("unknown payment method")

// ParseMethod normalizes a path/body method value.
func ParseMethod(raw string) (string, error) {
	switch strings.ToUpper(raw) {
	case MethodClick:
		return MethodClick, nil
	case MethodMirpay:
		return MethodMirpay, nil
	default:
		return "", ErrUnknownMethod
	}
}

// Info is the listing view of a donation.
type Info struct {
	ID         int64     `json:"id"`
	StreamerID int64     `json:"streamer_id"`
	DonorName  string    `json:"donor_name"`
	Message    string    `json:"message"`
	Amount     float64   `json:"amount"`
	Method     string    `json:"method"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatisticPoint is one day bucket of completed donation totals.
type StatisticPoint struct {
	Day   time.Time `json:"day"`
	Total float64   `json:"total"`
	Count int64     `json:"count"`
}
