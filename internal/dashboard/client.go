package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/zulandar/switchboard/internal/router"
)

// ErrUnavailable reports that no daemon is listening at the client's
// address. Callers fall back to a standalone pipeline.
var ErrUnavailable = errors.New("dashboard: daemon unavailable")

// Client submits messages to a running daemon over its HTTP API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client // defaults to http.DefaultClient
}

// NewClient creates a Client for a daemon on the local host.
func NewClient(port int) *Client {
	return &Client{BaseURL: fmt.Sprintf("http://127.0.0.1:%d", port)}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Submit posts one submission to the daemon and returns the per-recipient
// terminal outcomes. A transport-level failure maps to ErrUnavailable.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) ([]router.Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("dashboard: encode submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("dashboard: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("dashboard: submit: %w", ctx.Err())
		}
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, uerr.Err)
		}
		return nil, fmt.Errorf("dashboard: submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		if body.Error != "" {
			return nil, fmt.Errorf("dashboard: submit: %s", body.Error)
		}
		return nil, fmt.Errorf("dashboard: submit: status %d", resp.StatusCode)
	}

	var out SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("dashboard: decode response: %w", err)
	}
	results := make([]router.Result, len(out.Results))
	for i, r := range out.Results {
		results[i] = fromResultJSON(r)
	}
	return results, nil
}
