package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Envelope is the broker payload for a single recipient. An external
// delivery worker consumes envelopes and performs the actual email or
// SMS send.
type Envelope struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Message is a bulk notification request: one subject/body pair
// addressed to many recipients.
type Message struct {
	Subject    string
	Body       string
	Recipients []string
}

// Result reports per-recipient delivery outcome of a bulk send.
type Result struct {
	Sent   int
	Failed []string
}

// Backend defines the broker-agnostic publish operation used by the
// notifier.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Notifier fans a bulk message out to the broker, one envelope per
// recipient, and reports which recipients could not be enqueued.
type Notifier struct {
	backend Backend
	channel string
	logger  *zap.Logger
}

// New constructs a Notifier publishing to the named channel.
func New(backend Backend, channel string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		backend: backend,
		channel: channel,
		logger:  logger,
	}
}

// SendBulk publishes one envelope per recipient. A failed publish does
// not abort the rest of the batch.
func (n *Notifier) SendBulk(ctx context.Context, msg Message) (Result, error) {
	result := Result{Failed: make([]string, 0)}

	for _, recipient := range msg.Recipients {
		data, err := json.Marshal(Envelope{
			Recipient: recipient,
			Subject:   msg.Subject,
			Body:      msg.Body,
		})
		if err != nil {
			return result, err
		}

		if _, err := n.backend.Publish(ctx, n.channel, data, map[string]string{
			"recipient": recipient,
		}); err != nil {
			n.logger.Warn("failed to enqueue notification",
				zap.String("recipient", recipient),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, recipient)
			continue
		}
		result.Sent++
	}

	return result, nil
}

// Close closes the underlying backend.
func (n *Notifier) Close() error {
	return n.backend.Close()
}
