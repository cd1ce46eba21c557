package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/resend/resend-go/v2"
)

// EmailMessage is one outgoing email
type EmailMessage struct {
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// EmailSenderInterface delivers emails
type EmailSenderInterface interface {
	Send(ctx context.Context, msgs []EmailMessage) error
}

// ResendSender sends emails via the Resend API
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a new ResendSender with the given API key and from address
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send queues msgs in one batch call. Resend accepts up to 100 emails per batch.
func (s *ResendSender) Send(ctx context.Context, msgs []EmailMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	const batchSize = 100

	for i := 0; i < len(msgs); i += batchSize {
		end := i + batchSize
		if end > len(msgs) {
			end = len(msgs)
		}

		params := make([]*resend.SendEmailRequest, 0, end-i)
		for _, msg := range msgs[i:end] {
			p := &resend.SendEmailRequest{
				From:    s.from,
				To:      msg.To,
				Subject: msg.Subject,
				Html:    msg.HTML,
			}
			if msg.ReplyTo != "" {
				p.ReplyTo = msg.ReplyTo
			}
			params = append(params, p)
		}

		resp, err := s.client.Batch.SendWithContext(ctx, params)
		if err != nil {
			return fmt.Errorf("resend batch send failed: %w", err)
		}
		log.Printf("📧 ResendSender.Send: queued %d email(s)", len(resp.Data))
	}
	return nil
}

// NoopSender records emails instead of sending them. Used when no API key is configured and in tests.
type NoopSender struct {
	mu   sync.Mutex
	Sent []EmailMessage
}

func (n *NoopSender) Send(ctx context.Context, msgs []EmailMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, msg := range msgs {
		log.Printf("📧 NoopSender: to=%v subject=%q", msg.To, msg.Subject)
	}
	n.Sent = append(n.Sent, msgs...)
	return nil
}

// Messages returns a copy of the recorded emails
func (n *NoopSender) Messages() []EmailMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]EmailMessage(nil), n.Sent...)
}
