package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPMailer delivers mail through a transactional-email HTTP API.
// The base URL is injected from config so tests can point to a local mock.
type HTTPMailer struct {
	apiURL     string
	httpClient *http.Client
}

func NewHTTPMailer(apiURL string, timeout time.Duration) *HTTPMailer {
	return &HTTPMailer{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts the message as JSON and accepts any 2xx response.
func (m *HTTPMailer) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected mail API status: %d", resp.StatusCode)
	}
	return nil
}

var _ Mailer = (*HTTPMailer)(nil)
