package settlement

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Coordinator owns every balance mutation. A ledger entry's terminal
// transition and its balance effect commit in one transaction; the row
// lock plus the conditional status update make provider retries and
// concurrent admin clicks settle at most once.
type Coordinator struct {
	pool *pgxpool.Pool
	log  *log.Logger
}

func New(pool *pgxpool.Pool, logger *log.Logger) *Coordinator {
	return &Coordinator{pool: pool, log: logger}
}

// SettledDonation describes a donation that was just credited, for
// alert delivery to the streamer overlay.
type SettledDonation struct {
	ID         int64
	StreamerID int64
	DonorName  string
	Message    string
	Amount     float64
}

// SettledWithdraw describes a withdraw request that was just debited.
type SettledWithdraw struct {
	ID         int64
	StreamerID int64
	Amount     float64
}

// SettleDonation transitions a PENDING donation with the given external
// reference to COMPLETED and credits the streamer balance. The callback
// amount must match the ledger entry exactly.
func (co *Coordinator) SettleDonation(ctx context.Context, externalRef, method string, amount decimal.Decimal) (SettledDonation, error) {
	tx, err := co.pool.Begin(ctx)
	if err != nil {
		return SettledDonation{}, err
	}
	defer tx.Rollback(ctx)

	var (
		d          SettledDonation
		amountText string
		status     string
	)
	err = tx.QueryRow(ctx, `
        SELECT id, streamer_id, donor_name, message, amount::text, amount::float8, status
        FROM donations
        WHERE external_ref = $1 AND method = $2
        FOR UPDATE`,
		externalRef, method,
	).Scan(&d.ID, &d.StreamerID, &d.DonorName, &d.Message, &amountText, &d.Amount, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SettledDonation{}, ErrNotFound
		}
		return SettledDonation{}, err
	}

	if status != "PENDING" {
		return SettledDonation{}, ErrAlreadySettled
	}

	stored, err := decimal.NewFromString(amountText)
	if err != nil {
		return SettledDonation{}, fmt.Errorf("parse stored amount: %w", err)
	}
	if !stored.Equal(amount) {
		co.log.Printf("settlement: amount mismatch for ref=%s: ledger=%s callback=%s", externalRef, stored, amount)
		return SettledDonation{}, ErrAmountMismatch
	}

	tag, err := tx.Exec(ctx, `
        UPDATE donations SET status = 'COMPLETED'
        WHERE id = $1 AND status = 'PENDING'`, d.ID)
	if err != nil {
		return SettledDonation{}, err
	}
	if tag.RowsAffected() != 1 {
		return SettledDonation{}, ErrAlreadySettled
	}

	_, err = tx.Exec(ctx, `
        UPDATE users SET balance = balance + $1::numeric, updated_at = NOW()
        WHERE id = $2`, amountText, d.StreamerID)
	if err != nil {
		return SettledDonation{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return SettledDonation{}, err
	}

	co.log.Printf("settlement: donation %d credited %.2f to streamer %d", d.ID, d.Amount, d.StreamerID)
	return d, nil
}

// FailDonation transitions a PENDING donation to FAILED. No balance effect.
func (co *Coordinator) FailDonation(ctx context.Context, externalRef, method string) error {
	tag, err := co.pool.Exec(ctx, `
        UPDATE donations SET status = 'FAILED'
        WHERE external_ref = $1 AND method = $2 AND status = 'PENDING'`,
		externalRef, method)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	err = co.pool.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM donations WHERE external_ref = $1 AND method = $2)`,
		externalRef, method).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrAlreadySettled
}

// CompleteWithdraw transitions a PENDING withdraw request to COMPLETED
// and debits the streamer balance. The debit is rejected, not clamped,
// when it would take the balance below zero.
func (co *Coordinator) CompleteWithdraw(ctx context.Context, withdrawID int64) (SettledWithdraw, error) {
	tx, err := co.pool.Begin(ctx)
	if err != nil {
		return SettledWithdraw{}, err
	}
	defer tx.Rollback(ctx)

	var (
		w          SettledWithdraw
		amountText string
		status     string
	)
	err = tx.QueryRow(ctx, `
        SELECT id, streamer_id, amount::text, amount::float8, status
        FROM withdrawals
        WHERE id = $1
        FOR UPDATE`, withdrawID,
	).Scan(&w.ID, &w.StreamerID, &amountText, &w.Amount, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SettledWithdraw{}, ErrNotFound
		}
		return SettledWithdraw{}, err
	}

	if status != "PENDING" {
		return SettledWithdraw{}, ErrAlreadySettled
	}

	tag, err := tx.Exec(ctx, `
        UPDATE withdrawals SET status = 'COMPLETED'
        WHERE id = $1 AND status = 'PENDING'`, w.ID)
	if err != nil {
		return SettledWithdraw{}, err
	}
	if tag.RowsAffected() != 1 {
		return SettledWithdraw{}, ErrAlreadySettled
	}

	tag, err = tx.Exec(ctx, `
        UPDATE users SET balance = balance - $1::numeric, updated_at = NOW()
        WHERE id = $2 AND balance >= $1::numeric`, amountText, w.StreamerID)
	if err != nil {
		return SettledWithdraw{}, err
	}
	if tag.RowsAffected() != 1 {
		return SettledWithdraw{}, ErrInsufficientBalance
	}

	if err := tx.Commit(ctx); err != nil {
		return SettledWithdraw{}, err
	}

	co.log.Printf("settlement: withdraw %d debited %.2f from streamer %d", w.ID, w.Amount, w.StreamerID)
	return w, nil
}

// CancelWithdraw transitions a PENDING withdraw request to CANCELED.
// Funds were never reserved, so the balance is untouched.
func (co *Coordinator) CancelWithdraw(ctx context.Context, withdrawID int64) (SettledWithdraw, error) {
	var w SettledWithdraw
	err := co.pool.QueryRow(ctx, `
        UPDATE withdrawals SET status = 'CANCELED'
        WHERE id = $1 AND status = 'PENDING'
        RETURNING id, streamer_id, amount::float8`, withdrawID,
	).Scan(&w.ID, &w.StreamerID, &w.Amount)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return SettledWithdraw{}, err
	}

	var exists bool
	err = co.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM withdrawals WHERE id = $1)`, withdrawID).Scan(&exists)
	if err != nil {
		return SettledWithdraw{}, err
	}
	if !exists {
		return SettledWithdraw{}, ErrNotFound
	}
	return SettledWithdraw{}, ErrAlreadySettled
}
