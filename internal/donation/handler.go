package donation

import (
	"fmt"
	"log"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/donatehub/backend/internal/alerts"
	"github.com/donatehub/backend/internal/settlement"
)

// PaymentLinks builds the provider checkout URLs handed back to donors.
type PaymentLinks struct {
	ClickServiceID   string
	ClickMerchantID  string
	MirpayMerchantID string
}

func (p PaymentLinks) For(method, externalRef string, amount float64) string {
	switch method {
	case MethodClick:
		q := url.Values{}
		q.Set("service_id", p.ClickServiceID)
		q.Set("merchant_id", p.ClickMerchantID)
		q.Set("amount", fmt.Sprintf("%.2f", amount))
		q.Set("transaction_param", externalRef)
		return "https://my.click.uz/services/pay?" + q.Encode()
	case MethodMirpay:
		q := url.Values{}
		q.Set("merchant", p.MirpayMerchantID)
		q.Set("invoice", externalRef)
		q.Set("amount", fmt.Sprintf("%.2f", amount))
		return "https://mirpay.uz/pay?" + q.Encode()
	default:
		return ""
	}
}

// Handler serves the donation ledger endpoints.
type Handler struct {
	DB     *pgxpool.Pool
	Settle *settlement.Coordinator
	Notify *alerts.Notifier
	Links  PaymentLinks
	Log    *log.Logger
}

func NewHandler(pool *pgxpool.Pool, coord *settlement.Coordinator, notify *alerts.Notifier, links PaymentLinks, logger *log.Logger) *Handler {
	return &Handler{DB: pool, Settle: coord, Notify: notify, Links: links, Log: logger}
}
