package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendConfirmation is the task type for confirmation emails.
	TaskTypeSendConfirmation = "mail:send_confirmation"
)

// SendConfirmationPayload describes a queued confirmation email.
type SendConfirmationPayload struct {
	To       string `json:"to"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// NewSendConfirmationTask constructs an Asynq task.
func NewSendConfirmationTask(payload SendConfirmationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendConfirmation, data), nil
}

// ConfirmationSender delivers a rendered confirmation email.
type ConfirmationSender interface {
	SendConfirmation(to, username, token string) error
}

// NewSendConfirmationHandler builds the Asynq handler for confirmation
// emails. Delivery errors are logged and swallowed: a broken mail relay must
// never bubble up to the caller, and retrying delivers nothing the next
// signup attempt would not.
func NewSendConfirmationHandler(sender ConfirmationSender, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendConfirmationPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := sender.SendConfirmation(payload.To, payload.Username, payload.Token); err != nil {
			if logger != nil {
				logger.Warn("send confirmation email", slog.String("to", payload.To), slog.Any("error", err))
			}
		}
		return nil
	}
}
