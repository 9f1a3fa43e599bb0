package ztapi

import (
	"context"
	"encoding/json"
	"net/http"
)

// DefaultLocalURL is the node's control API on loopback.
const DefaultLocalURL = "http://127.0.0.1:9993"

// LocalClient talks to the ZeroTier One service on this machine.
type LocalClient struct {
	t transport
}

// NewLocalClient creates a client for the node at baseURL (DefaultLocalURL
// when empty) authenticated with token.
func NewLocalClient(baseURL, token string) *LocalClient {
	if baseURL == "" {
		baseURL = DefaultLocalURL
	}
	return &LocalClient{t: transport{
		backend:    BackendNode,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		authorize: func(req *http.Request) {
			req.Header.Set("X-ZT1-Auth", token)
		},
	}}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *LocalClient) SetHTTPClient(hc *http.Client) {
	c.t.httpClient = hc
}

// ListNetworks returns every network the node has joined.
func (c *LocalClient) ListNetworks(ctx context.Context) ([]Network, error) {
	var raws []json.RawMessage
	if _, err := c.t.do(ctx, http.MethodGet, "/network", nil, &raws); err != nil {
		return nil, err
	}

	networks := make([]Network, 0, len(raws))
	for _, raw := range raws {
		var n Network
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, parseError(BackendNode, err)
		}
		n.Raw = raw
		networks = append(networks, n)
	}
	return networks, nil
}

// GetNetwork returns one joined network. A network the node has not joined
// yields an error for which IsNotFound is true.
func (c *LocalClient) GetNetwork(ctx context.Context, id string) (*Network, error) {
	var n Network
	raw, err := c.t.do(ctx, http.MethodGet, "/network/"+id, nil, &n)
	if err != nil {
		return nil, err
	}
	n.Raw = raw
	return &n, nil
}

// Join asks the node to join network id.
func (c *LocalClient) Join(ctx context.Context, id string) (*Network, error) {
	var n Network
	raw, err := c.t.do(ctx, http.MethodPost, "/network/"+id, struct{}{}, &n)
	if err != nil {
		return nil, err
	}
	n.Raw = raw
	return &n, nil
}

// Leave asks the node to leave network id.
func (c *LocalClient) Leave(ctx context.Context, id string) error {
	_, err := c.t.do(ctx, http.MethodDelete, "/network/"+id, nil, nil)
	return err
}

// Status returns the node's own status.
func (c *LocalClient) Status(ctx context.Context) (*NodeStatus, error) {
	var s NodeStatus
	if _, err := c.t.do(ctx, http.MethodGet, "/status", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
