package donation

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/donatehub/backend/internal/db"
	"github.com/donatehub/backend/internal/settlement"
)

func setupHandler(t *testing.T) *Handler {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("db connection: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.CreateTables(ctx, pool); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE donations, withdrawals, users RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("reset db: %v", err)
	}

	logger := log.New(io.Discard, "", 0)
	return NewHandler(pool, settlement.New(pool, logger), nil, PaymentLinks{
		ClickServiceID:  "svc",
		ClickMerchantID: "mrc",
	}, logger)
}

func seedStreamer(t *testing.T, pool *pgxpool.Pool, id int64, minDonation float64) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
        INSERT INTO users (id, first_name, role, enabled, min_donation_amount, api_key)
        VALUES ($1, 'Test', 'STREAMER', true, $2, gen_random_uuid())`, id, minDonation)
	if err != nil {
		t.Fatalf("seed streamer: %v", err)
	}
}

func seedDonationAt(t *testing.T, pool *pgxpool.Pool, streamerID int64, amount float64, status, age string) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
        INSERT INTO donations (streamer_id, amount, method, external_ref, status, created_at)
        VALUES ($1, $2, 'CLICK', gen_random_uuid()::text, $3, NOW() - $4::interval)`,
		streamerID, amount, status, age)
	if err != nil {
		t.Fatalf("seed donation: %v", err)
	}
}

func jsonContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func createDonation(t *testing.T, h *Handler, streamerID string, body string) createResponse {
	t.Helper()
	c, rec := jsonContext(http.MethodPost, "/donation/"+streamerID, body)
	c.SetParamNames("streamerId")
	c.SetParamValues(streamerID)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp createResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func completeClick(t *testing.T, h *Handler, form string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/donation/complete/click", strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("method")
	c.SetParamValues("click")
	if err := h.Complete(c); err != nil {
		t.Fatalf("complete: %v", err)
	}
	return rec
}

func TestCreateDonationUnknownStreamer(t *testing.T) {
	h := setupHandler(t)

	c, rec := jsonContext(http.MethodPost, "/donation/99", `{"amount":10,"method":"CLICK"}`)
	c.SetParamNames("streamerId")
	c.SetParamValues("99")
	if err := h.Create(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateDonationInvalidAmount(t *testing.T) {
	h := setupHandler(t)
	seedStreamer(t, h.DB, 1, 0)

	c, rec := jsonContext(http.MethodPost, "/donation/1", `{"amount":0,"method":"CLICK"}`)
	c.SetParamNames("streamerId")
	c.SetParamValues("1")
	if err := h.Create(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateDonationBelowMinimum(t *testing.T) {
	h := setupHandler(t)
	seedStreamer(t, h.DB, 1, 5)

	c, rec := jsonContext(http.MethodPost, "/donation/1", `{"amount":2,"method":"CLICK"}`)
	c.SetParamNames("streamerId")
	c.SetParamValues("1")
	if err := h.Create(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateDonationStartsPending(t *testing.T) {
	h := setupHandler(t)
	seedStreamer(t, h.DB, 1, 0)

	resp := createDonation(t, h, "1", `{"donor_name":"Ali","message":"gg","amount":10,"method":"CLICK"}`)
	if resp.ExternalRef == "" || resp.PaymentURL == "" {
		t.Fatalf("incomplete response: %+v", resp)
	}

	var status string
	if err := h.DB.QueryRow(context.Background(),
		`SELECT status FROM donations WHERE id = $1`, resp.DonationID).Scan(&status); err != nil {
		t.Fatalf("query: %v", err)
	}
	if status != StatusPending {
		t.Fatalf("status = %s, want PENDING", status)
	}
}

func TestCompleteDonationCreditsBalanceOnce(t *testing.T) {
	h := setupHandler(t)
	seedStreamer(t, h.DB, 1, 0)

	resp := createDonation(t, h, "1", `{"amount":10,"method":"CLICK"}`)
	form := "merchant_trans_id=" + resp.ExternalRef + "&amount=10.00&error=0"

	rec := completeClick(t, h, form)
	if rec.Code != http.StatusOK {
		t.Fatalf("first callback status = %d: %s", rec.Code, rec.Body.String())
	}

	var balance float64
	if err := h.DB.QueryRow(context.Background(),
		`SELECT balance::float8 FROM users WHERE id = 1`).Scan(&balance); err != nil {
		t.Fatalf("query: %v", err)
	}
	if balance != 10 {
		t.Fatalf("balance = %v, want 10", balance)
	}

	// Provider retries the callback; the credit must not repeat.
	rec = completeClick(t, h, form)
	if rec.Code != http.StatusConflict {
		t.Fatalf("retry status = %d, want 409", rec.Code)
	}
	if err := h.DB.QueryRow(context.Background(),
		`SELECT balance::float8 FROM users WHERE id = 1`).Scan(&balance); err != nil {
		t.Fatalf("query: %v", err)
	}
	if balance != 10 {
		t.Fatalf("balance after retry = %v, want 10", balance)
	}
}

func TestCompleteDonationDeclined(t *testing.T) {
	h := setupHandler(t)
	seedStreamer(t, h.DB, 1, 0)

	resp := createDonation(t, h, "1", `{"amount":10,"method":"CLICK"}`)
	rec := completeClick(t, h, "merchant_trans_id="+resp.ExternalRef+"&amount=10.00&error=-5017")
	if rec.Code != http.StatusOK {
		t.Fatalf("decline status = %d", rec.Code)
	}

	var status string
	var balance float64
	err := h.DB.QueryRow(context.Background(), `
        SELECT d.status, u.balance::float8
        FROM donations d JOIN users u ON u.id = d.streamer_id
        WHERE d.id = $1`, resp.DonationID).Scan(&status, &balance)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if status != StatusFailed || balance != 0 {
		t.Fatalf("status=%s balance=%v", status, balance)
	}
}

func TestCompleteDonationUnknownRef(t *testing.T) {
	h := setupHandler(t)

	rec := completeClick(t, h, "merchant_trans_id=missing&amount=10.00&error=0")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListForStreamerUnknown(t *testing.T) {
	h := setupHandler(t)

	c, rec := jsonContext(http.MethodGet, "/donation/99", "")
	c.SetParamNames("streamerId")
	c.SetParamValues("99")
	if err := h.ListForStreamer(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListForStreamerPagination(t *testing.T) {
	h := setupHandler(t)
	seedStreamer(t, h.DB, 1, 0)

	for i := 0; i < 4; i++ {
		createDonation(t, h, "1", `{"amount":10,"method":"CLICK"}`)
	}

	listPage := func(page, size string) []Info {
		c, rec := jsonContext(http.MethodGet, "/donation/1?page="+page+"&size="+size, "")
		c.SetParamNames("streamerId")
		c.SetParamValues("1")
		if err := h.ListForStreamer(c); err != nil {
			t.Fatalf("list: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("list status = %d", rec.Code)
		}
		var envelope struct {
			Content       []Info `json:"content"`
			TotalElements int64  `json:"total_elements"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return envelope.Content
	}

	first := listPage("0", "2")
	second := listPage("1", "2")
	all := listPage("0", "4")

	if len(first) != 2 || len(second) != 2 || len(all) != 4 {
		t.Fatalf("page sizes: %d %d %d", len(first), len(second), len(all))
	}

	// Two pages of two must tile the size-four page exactly.
	combined := append(first, second...)
	for i, d := range combined {
		if d.ID != all[i].ID {
			t.Fatalf("page tiling mismatch at %d: %d vs %d", i, d.ID, all[i].ID)
		}
	}
	for i := 1; i < len(all); i++ {
		if all[i].ID > all[i-1].ID {
			t.Fatalf("not newest-first at %d", i)
		}
	}
}

func seedStatisticsFixture(t *testing.T, h *Handler) {
	t.Helper()
	seedStreamer(t, h.DB, 1, 0)
	seedStreamer(t, h.DB, 2, 0)

	seedDonationAt(t, h.DB, 1, 10, StatusCompleted, "0 hours")
	seedDonationAt(t, h.DB, 1, 5, StatusCompleted, "0 hours")
	seedDonationAt(t, h.DB, 1, 7, StatusCompleted, "2 days")
	seedDonationAt(t, h.DB, 1, 100, StatusPending, "0 hours")
	seedDonationAt(t, h.DB, 1, 50, StatusFailed, "0 hours")
	seedDonationAt(t, h.DB, 1, 99, StatusCompleted, "30 days")
	seedDonationAt(t, h.DB, 2, 3, StatusCompleted, "0 hours")
}

func decodeStatistics(t *testing.T, rec *httptest.ResponseRecorder) []StatisticPoint {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var points []StatisticPoint
	if err := json.Unmarshal(rec.Body.Bytes(), &points); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return points
}

func TestStatisticsBucketsCompletedOnly(t *testing.T) {
	h := setupHandler(t)
	seedStatisticsFixture(t, h)

	c, rec := jsonContext(http.MethodGet, "/donation/statistics?days=7", "")
	if err := h.Statistics(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	points := decodeStatistics(t, rec)

	// Two day buckets inside the window; pending, failed and the
	// 30-day-old donation stay out.
	if len(points) != 2 {
		t.Fatalf("buckets = %d, want 2", len(points))
	}
	var total float64
	var count int64
	for i, p := range points {
		total += p.Total
		count += p.Count
		if i > 0 && p.Day.Before(points[i-1].Day) {
			t.Fatalf("buckets not in day order")
		}
	}
	if total != 25 || count != 4 {
		t.Fatalf("total = %v count = %d, want 25 and 4", total, count)
	}
}

func TestStatisticsForStreamerFilters(t *testing.T) {
	h := setupHandler(t)
	seedStatisticsFixture(t, h)

	c, rec := jsonContext(http.MethodGet, "/donation/statistics/1?days=7", "")
	c.SetParamNames("streamerId")
	c.SetParamValues("1")
	if err := h.StatisticsForStreamer(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	points := decodeStatistics(t, rec)

	var total float64
	var count int64
	for _, p := range points {
		total += p.Total
		count += p.Count
	}
	if total != 22 || count != 3 {
		t.Fatalf("total = %v count = %d, want 22 and 3", total, count)
	}
}

func TestTestAlertForbiddenForOtherUser(t *testing.T) {
	h := setupHandler(t)
	seedStreamer(t, h.DB, 1, 0)

	c, rec := jsonContext(http.MethodPost, "/donation/test/1", `{"amount":5}`)
	c.SetParamNames("streamerId")
	c.SetParamValues("1")
	c.Set("user_id", int64(2))
	c.Set("role", "STREAMER")

	if err := h.CreateTest(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestTestAlertUnknownStreamer(t *testing.T) {
	h := setupHandler(t)

	c, rec := jsonContext(http.MethodPost, "/donation/test/99", `{"amount":5}`)
	c.SetParamNames("streamerId")
	c.SetParamValues("99")
	c.Set("user_id", int64(99))
	c.Set("role", "STREAMER")

	if err := h.CreateTest(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestTestAlertWritesNothing(t *testing.T) {
	h := setupHandler(t)
	seedStreamer(t, h.DB, 1, 0)

	c, rec := jsonContext(http.MethodPost, "/donation/test/1", `{"donor_name":"Ali","message":"check"}`)
	c.SetParamNames("streamerId")
	c.SetParamValues("1")
	c.Set("user_id", int64(1))
	c.Set("role", "STREAMER")

	if err := h.CreateTest(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// The alert is fire-and-forget: no ledger row, no balance change.
	var donations int64
	var balance float64
	err := h.DB.QueryRow(context.Background(), `
        SELECT (SELECT COUNT(*) FROM donations), balance::float8
        FROM users WHERE id = 1`).Scan(&donations, &balance)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if donations != 0 || balance != 0 {
		t.Fatalf("donations=%d balance=%v, want 0 and 0", donations, balance)
	}
}
