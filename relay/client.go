// Package relay submits fully-assembled execution packages to an off-chain
// relay service. The relay is an opaque collaborator: this client does no
// retrying, no backoff, and no idempotency bookkeeping — duplicate
// submissions of the same intent are the relay's problem to dedupe, not ours.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	intents "github.com/mark3labs/intents-go"
)

// Client is a client for a relay submission service.
type Client struct {
	// BaseURL is the relay service root, without a trailing slash.
	BaseURL string

	// HTTPClient is the underlying HTTP client.
	HTTPClient *http.Client

	// SubmitTimeout bounds one submission round trip when the caller's
	// context carries no deadline of its own.
	SubmitTimeout time.Duration
}

// NewClient creates a relay client with default transport settings.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:       baseURL,
		HTTPClient:    &http.Client{},
		SubmitTimeout: 30 * time.Second,
	}
}

// Error is a non-2xx relay response, carrying the body for diagnosis.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("intents: relay returned status %d: %s", e.StatusCode, e.Body)
}

func (e *Error) Unwrap() error {
	return intents.ErrRelayRejected
}

// SubmitTransaction hands one chain's execution package to the relay:
// POST {BaseURL}/transaction/submit. The response carries the broadcast
// transaction hash and the relay's intent id.
func (c *Client) SubmitTransaction(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("intents: marshaling submit request: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok && c.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.SubmitTimeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/transaction/submit", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("intents: creating submit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", intents.ErrRelayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var submitResp SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitResp); err != nil {
		return nil, fmt.Errorf("intents: decoding submit response: %w", err)
	}
	return &submitResp, nil
}
