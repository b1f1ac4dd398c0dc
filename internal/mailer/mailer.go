package mailer

import "context"

// Message is one outbound email.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer abstracts the outbound email transport. Send reports success or
// failure synchronously; a failed send is not retried by the caller — the
// user requests a new code instead.
// Mocking this interface in tests avoids real deliveries.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
