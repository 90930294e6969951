package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hylla/taskcollab/internal/app"
)

// RelayClient posts notifications to a remote taskcollab mail endpoint.
// It implements app.Notifier.
type RelayClient struct {
	baseURL string
	client  *http.Client
}

// NewRelayClient constructs a client for baseURL. A nil client uses a 10s timeout.
func NewRelayClient(baseURL string, client *http.Client) *RelayClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RelayClient{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"), client: client}
}

// SendEmail implements app.Notifier.
func (c *RelayClient) SendEmail(ctx context.Context, req app.EmailRequest) app.EmailResult {
	if err := c.post(ctx, req); err != nil {
		return app.EmailResult{Success: false, Message: err.Error()}
	}
	return app.EmailResult{Success: true, Message: sentMessage}
}

func (c *RelayClient) post(ctx context.Context, req app.EmailRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode mail request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/mail", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send mail request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Request failed: %d", resp.StatusCode)
	}
	return nil
}
