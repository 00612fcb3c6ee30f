// Package jobs runs background work through an asynq queue backed by
// Redis. Today the only task type is outbound email; digest delivery and
// needs-attention alerts are queued here so a slow SMTP server never
// blocks a request or a scheduler tick.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/helix-ai/backend/internal/email"
)

const TypeSendEmail = "email:send"

// Queue priorities. Alerts about struggling students jump the line ahead
// of routine digests.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Kind    string `json:"kind"` // "digest", "alert"
}

// Manager owns the asynq client and server pair.
type Manager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

func NewManager(redisAddr string, sender email.Sender, logger *slog.Logger) *Manager {
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("job failed", "type", task.Type(), "error", err)
		}),
		Logger: &slogAdapter{logger: logger},
	})

	m := &Manager{
		client: asynq.NewClient(redisOpt),
		server: server,
		mux:    asynq.NewServeMux(),
		logger: logger,
	}
	m.mux.HandleFunc(TypeSendEmail, m.handleSendEmail(sender))
	return m
}

// Start runs the worker loop until Stop is called. It blocks, so callers
// run it in its own goroutine.
func (m *Manager) Start() error {
	m.logger.Info("starting job queue worker")
	return m.server.Run(m.mux)
}

func (m *Manager) Stop() {
	m.logger.Info("stopping job queue")
	m.server.Stop()
	m.server.Shutdown()
	m.client.Close()
}

// EnqueueEmail queues one outbound message on the given priority queue.
func (m *Manager) EnqueueEmail(p EmailPayload, queue string) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	maxRetry := 3
	timeout := 60 * time.Second
	switch queue {
	case QueueCritical:
		maxRetry = 5
		timeout = 120 * time.Second
	case QueueLow:
		maxRetry = 2
		timeout = 30 * time.Second
	}

	info, err := m.client.Enqueue(asynq.NewTask(TypeSendEmail, payload),
		asynq.Queue(queue),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(timeout),
	)
	if err != nil {
		return fmt.Errorf("enqueue email task: %w", err)
	}

	m.logger.Info("queued email job", "id", info.ID, "kind", p.Kind, "to", p.To, "queue", queue)
	return nil
}

func (m *Manager) handleSendEmail(sender email.Sender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p EmailPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("unmarshal email payload: %w", err)
		}
		if err := sender.Send(p.To, p.Subject, p.Body); err != nil {
			return fmt.Errorf("send %s email to %s: %w", p.Kind, p.To, err)
		}
		return nil
	}
}

// slogAdapter bridges asynq's logger interface onto slog.
type slogAdapter struct {
	logger *slog.Logger
}

func (l *slogAdapter) Debug(args ...any) { l.logger.Debug(fmt.Sprint(args...)) }
func (l *slogAdapter) Info(args ...any)  { l.logger.Info(fmt.Sprint(args...)) }
func (l *slogAdapter) Warn(args ...any)  { l.logger.Warn(fmt.Sprint(args...)) }
func (l *slogAdapter) Error(args ...any) { l.logger.Error(fmt.Sprint(args...)) }
func (l *slogAdapter) Fatal(args ...any) { l.logger.Error(fmt.Sprint(args...)) }
