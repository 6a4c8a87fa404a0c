// Package httpsse is the shared net/http+SSE transport leg for provider
// adapters that have no vendor SDK in the example pack (Cohere, Mistral).
// Every other adapter speaks to its provider through a generated or
// hand-written SDK instead; this package exists only where no such SDK was
// available to ground on (see DESIGN.md).
package httpsse

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
)

// Client performs JSON-in, JSON-or-SSE-out HTTP calls against one
// provider's base URL with a bearer API key.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	APIKey  string
}

// PostJSON issues a JSON POST and decodes a single JSON response body into
// out. Non-2xx responses are surfaced as apierror.Provider.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.doPost(ctx, path, body, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apierror.Invariant("httpsse: could not decode response body", err)
	}
	return nil
}

// PostSSE issues a JSON POST expecting an SSE response and returns an
// EventReader over its body. The caller must Close the returned reader.
func (c *Client) PostSSE(ctx context.Context, path string, body any) (*EventReader, error) {
	resp, err := c.doPost(ctx, path, body, true)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &EventReader{body: resp.Body, scanner: scanner}, nil
}

func (c *Client) doPost(ctx context.Context, path string, body any, stream bool) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, apierror.Invariant("httpsse: could not encode request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, apierror.Transport(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apierror.Cancelled()
		}
		return nil, apierror.Transport(err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return apierror.Provider(resp.StatusCode, string(body), nil)
}

// EventReader scans an SSE response body line by line, per spec.md §6.2:
// "data:"-prefixed lines carry one JSON payload each, "[DONE]" terminates
// the stream, and blank or unrecognized lines (heartbeats/comments) are
// skipped.
type EventReader struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// Next returns the next event's raw JSON payload, false+nil when the stream
// is done cleanly, or false+err on a read/parse failure.
func (r *EventReader) Next() (data []byte, ok bool, err error) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return nil, false, nil
		}
		if payload == "" {
			continue
		}
		return []byte(payload), true, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, false, apierror.Transport(err)
	}
	return nil, false, nil
}

// Close releases the underlying connection.
func (r *EventReader) Close() error { return r.body.Close() }
