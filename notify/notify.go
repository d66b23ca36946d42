// Package notify defines the outbound notification contract. Dispatch is
// fire-and-forget from the engine's perspective: failures are logged by the
// caller and never abort committed work.
package notify

import "context"

// Message is one outbound notification.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers notifications. Implementations live outside the engine
// (SMTP relay, transactional email API, chat webhook).
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc is an adapter to use a plain function as a Sender.
type SenderFunc func(ctx context.Context, msg Message) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Discard is a Sender that silently drops every message. Used as the
// default when no sender is configured.
var Discard Sender = SenderFunc(func(context.Context, Message) error { return nil })
