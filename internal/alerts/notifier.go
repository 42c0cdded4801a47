package alerts

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// Notifier enqueues overlay alert tasks. A nil Notifier is a no-op so
// the API keeps working when Redis is not configured.
type Notifier struct {
	client *asynq.Client
	log    *log.Logger
}

func NewNotifier(redisAddr string, logger *log.Logger) *Notifier {
	return &Notifier{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
		log:    logger,
	}
}

func (n *Notifier) Close() error {
	if n == nil {
		return nil
	}
	return n.client.Close()
}

func (n *Notifier) DonationCompleted(ctx context.Context, p DonationCompletedPayload) {
	n.enqueue(ctx, TaskDonationCompleted, p)
}

func (n *Notifier) WithdrawRequested(ctx context.Context, p WithdrawEventPayload) {
	n.enqueue(ctx, TaskWithdrawRequested, p)
}

func (n *Notifier) WithdrawSettled(ctx context.Context, p WithdrawEventPayload) {
	n.enqueue(ctx, TaskWithdrawSettled, p)
}

func (n *Notifier) enqueue(ctx context.Context, taskType string, payload any) {
	if n == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		n.log.Printf("alerts: marshal %s: %v", taskType, err)
		return
	}
	task := asynq.NewTask(taskType, body)
	if _, err := n.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(5), asynq.Timeout(30*time.Second)); err != nil {
		n.log.Printf("alerts: enqueue %s: %v", taskType, err)
	}
}
