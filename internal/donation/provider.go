package donation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
)

// Callback is the normalized form of a provider payment notification.
type Callback struct {
	ExternalRef string
	Amount      decimal.Decimal
	Failed      bool
}

var errBadCallback = errors.New("malformed provider callback")

// ParseCallback decodes a raw provider body. CLICK posts form-encoded
// fields, MIRPAY posts JSON; both carry our external reference back.
func ParseCallback(method string, body []byte) (Callback, error) {
	switch method {
	case MethodClick:
		return parseClick(body)
	case MethodMirpay:
		return parseMirpay(body)
	default:
		return Callback{}, ErrUnknownMethod
	}
}

func parseClick(body []byte) (Callback, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return Callback{}, errBadCallback
	}

	ref := values.Get("merchant_trans_id")
	if ref == "" {
		return Callback{}, errBadCallback
	}
	amount, err := decimal.NewFromString(values.Get("amount"))
	if err != nil {
		return Callback{}, fmt.Errorf("click amount: %w", errBadCallback)
	}

	// error=0 means the payment went through; anything else is a decline.
	return Callback{
		ExternalRef: ref,
		Amount:      amount,
		Failed:      values.Get("error") != "" && values.Get("error") != "0",
	}, nil
}

type mirpayCallback struct {
	InvoiceID string `json:"invoice_id"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
}

func parseMirpay(body []byte) (Callback, error) {
	var cb mirpayCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		return Callback{}, errBadCallback
	}
	if cb.InvoiceID == "" {
		return Callback{}, errBadCallback
	}
	amount, err := decimal.NewFromString(cb.Amount)
	if err != nil {
		return Callback{}, fmt.Errorf("mirpay amount: %w", errBadCallback)
	}

	return Callback{
		ExternalRef: cb.InvoiceID,
		Amount:      amount,
		Failed:      cb.Status != "paid",
	}, nil
}
