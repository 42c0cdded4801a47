package alerts

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"

	"github.com/donatehub/backend/internal/overlay"
)

// Processor consumes alert tasks and pushes them onto overlay sockets.
type Processor struct {
	server *asynq.Server
	hub    *overlay.Hub
	log    *log.Logger
}

func NewProcessor(redisAddr string, hub *overlay.Hub, logger *log.Logger) *Processor {
	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"default": 10,
		},
	})
	return &Processor{server: server, hub: hub, log: logger}
}

// Start runs the consumer in the background.
func (p *Processor) Start() {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskDonationCompleted, p.handleDonationCompleted)
	mux.HandleFunc(TaskWithdrawRequested, p.handleWithdrawEvent)
	mux.HandleFunc(TaskWithdrawSettled, p.handleWithdrawEvent)

	go func() {
		if err := p.server.Run(mux); err != nil {
			p.log.Printf("alerts: consumer stopped: %v", err)
		}
	}()
}

func (p *Processor) Shutdown() {
	p.server.Shutdown()
}

func (p *Processor) handleDonationCompleted(_ context.Context, t *asynq.Task) error {
	var payload DonationCompletedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	p.hub.Broadcast(payload.StreamerID, overlay.Event{Type: "donation", Data: payload})
	p.log.Printf("alerts: donation %d pushed to streamer %d", payload.DonationID, payload.StreamerID)
	return nil
}

func (p *Processor) handleWithdrawEvent(_ context.Context, t *asynq.Task) error {
	var payload WithdrawEventPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	p.hub.Broadcast(payload.StreamerID, overlay.Event{Type: "withdraw", Data: payload})
	p.log.Printf("alerts: withdraw %d (%s) pushed to streamer %d", payload.WithdrawID, payload.Status, payload.StreamerID)
	return nil
}
