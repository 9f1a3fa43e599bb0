package ztapi

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"
)

const (
	// DefaultCentralURL is the public ZeroTier Central API
	DefaultCentralURL = "https://api.zerotier.com/api/v1"

	// DefaultCentralRate is the steady request rate towards Central
	DefaultCentralRate = 2.0

	// DefaultCentralBurst is how many requests may go out back to back
	DefaultCentralBurst = 4
)

// CentralClient talks to the ZeroTier Central REST API. Requests pass a
// token bucket so bursts of operator actions cannot trip Central's limits.
type CentralClient struct {
	t       transport
	limiter *rate.Limiter
	token   string
}

// NewCentralClient creates a client for Central at baseURL
// (DefaultCentralURL when empty). rps <= 0 selects DefaultCentralRate.
func NewCentralClient(baseURL, token string, rps float64) *CentralClient {
	if baseURL == "" {
		baseURL = DefaultCentralURL
	}
	if rps <= 0 {
		rps = DefaultCentralRate
	}

	c := &CentralClient{
		limiter: rate.NewLimiter(rate.Limit(rps), DefaultCentralBurst),
		token:   token,
	}
	c.t = transport{
		backend:    BackendCentral,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		authorize: func(req *http.Request) {
			req.Header.Set("Authorization", "token "+token)
		},
		wait: c.limiter.Wait,
	}
	return c
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *CentralClient) SetHTTPClient(hc *http.Client) {
	c.t.httpClient = hc
}

// Configured reports whether an API token is set.
func (c *CentralClient) Configured() bool {
	return c.token != ""
}

func (c *CentralClient) check() error {
	if c.token == "" {
		return configError(BackendCentral, "no Central API token (set --central-token or ZEROTIER_CENTRAL_TOKEN)")
	}
	return nil
}

// ListMembers returns every member of network nwid.
func (c *CentralClient) ListMembers(ctx context.Context, nwid string) ([]Member, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if _, err := c.t.do(ctx, http.MethodGet, "/network/"+nwid+"/member", nil, &raws); err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(raws))
	for _, raw := range raws {
		var m Member
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, parseError(BackendCentral, err)
		}
		m.Raw = raw
		members = append(members, m)
	}
	return members, nil
}

// UpdateMember applies a partial change to one member and returns the
// member as Central now reports it.
func (c *CentralClient) UpdateMember(ctx context.Context, nwid, memberID string, update MemberUpdate) (*Member, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	var m Member
	raw, err := c.t.do(ctx, http.MethodPost, "/network/"+nwid+"/member/"+memberID, update, &m)
	if err != nil {
		return nil, err
	}
	m.Raw = raw
	return &m, nil
}

// DeleteMember removes a member from network nwid.
func (c *CentralClient) DeleteMember(ctx context.Context, nwid, memberID string) error {
	if err := c.check(); err != nil {
		return err
	}
	_, err := c.t.do(ctx, http.MethodDelete, "/network/"+nwid+"/member/"+memberID, nil, nil)
	return err
}

// GetNetwork returns Central's view of nwid, including its rules.
func (c *CentralClient) GetNetwork(ctx context.Context, nwid string) (*CentralNetwork, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	var n CentralNetwork
	raw, err := c.t.do(ctx, http.MethodGet, "/network/"+nwid, nil, &n)
	if err != nil {
		return nil, err
	}
	n.Raw = raw
	return &n, nil
}

// SetRules replaces the rule set of nwid.
func (c *CentralClient) SetRules(ctx context.Context, nwid string, rules []json.RawMessage) error {
	if err := c.check(); err != nil {
		return err
	}
	if rules == nil {
		rules = []json.RawMessage{}
	}

	body := map[string]any{"config": map[string]any{"rules": rules}}
	_, err := c.t.do(ctx, http.MethodPost, "/network/"+nwid, body, nil)
	return err
}
