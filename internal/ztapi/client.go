package ztapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muurk/ztdash/internal/logging"
)

const (
	// BackendNode names the local node in errors and logs
	BackendNode = "node"
	// BackendCentral names ZeroTier Central in errors and logs
	BackendCentral = "central"

	// DefaultTimeout bounds a request when the caller's context has no deadline
	DefaultTimeout = 10 * time.Second

	// maxErrorBody caps how much of an error response is kept in the message
	maxErrorBody = 256
)

// transport is the request plumbing shared by both clients.
type transport struct {
	backend    string
	baseURL    string
	httpClient *http.Client
	authorize  func(*http.Request)
	wait       func(context.Context) error
}

// do sends one request and decodes a JSON response into out (if non-nil).
// It returns the raw body so callers can keep it for the JSON view.
func (t *transport) do(ctx context.Context, method, path string, in, out any) ([]byte, error) {
	if t.wait != nil {
		if err := t.wait(ctx); err != nil {
			return nil, classifyTransportError(t.backend, err)
		}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(t.baseURL, "/")+path, body)
	if err != nil {
		return nil, classifyTransportError(t.backend, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if t.authorize != nil {
		t.authorize(req)
	}

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		apiErr := classifyTransportError(t.backend, err)
		logging.LogRequest(t.backend, method, path, 0, time.Since(start), apiErr)
		return nil, apiErr
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := classifyTransportError(t.backend, err)
		logging.LogRequest(t.backend, method, path, resp.StatusCode, time.Since(start), apiErr)
		return nil, apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(raw))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		apiErr := statusError(t.backend, resp.StatusCode, snippet)
		logging.LogRequest(t.backend, method, path, resp.StatusCode, time.Since(start), apiErr)
		return nil, apiErr
	}

	logging.LogRequest(t.backend, method, path, resp.StatusCode, time.Since(start), nil)

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return raw, parseError(t.backend, err)
		}
	}
	return raw, nil
}
