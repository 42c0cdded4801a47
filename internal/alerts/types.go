package alerts

// Task type names routed through the asynq mux.
const (
	TaskDonationCompleted = "donation:completed"
	TaskWithdrawRequested = "withdraw:requested"
	TaskWithdrawSettled   = "withdraw:settled"
)

// DonationCompletedPayload is delivered to the streamer's overlay widget.
type DonationCompletedPayload struct {
	DonationID int64   `json:"donation_id"`
	StreamerID int64   `json:"streamer_id"`
	DonorName  string  `json:"donor_name"`
	Message    string  `json:"message"`
	Amount     float64 `json:"amount"`
}

// WithdrawEventPayload covers both the request and settlement events.
type WithdrawEventPayload struct {
	WithdrawID int64   `json:"withdraw_id"`
	StreamerID int64   `json:"streamer_id"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
}
