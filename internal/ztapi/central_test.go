package ztapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

const mockMembersResponse = `[
  {"id":"abcdef0123456789-1122334455","nodeId":"1122334455","networkId":"abcdef0123456789","name":"laptop","online":true,"config":{"authorized":true,"ipAssignments":["10.1.1.5"]}},
  {"id":"abcdef0123456789-aabbccddee","networkId":"abcdef0123456789","name":"","config":{"authorized":false,"ipAssignments":[]}}
]`

func TestCentralRequiresToken(t *testing.T) {
	client := NewCentralClient("http://127.0.0.1:1", "", 0)

	if client.Configured() {
		t.Error("Configured() should be false without a token")
	}
	_, err := client.ListMembers(context.Background(), "abcdef0123456789")
	if !IsAuthError(err) {
		t.Errorf("error = %v, want auth/config error", err)
	}
}

func TestListMembers_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token tkn" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.URL.Path != "/network/abcdef0123456789/member" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(mockMembersResponse))
	}))
	defer server.Close()

	members, err := NewCentralClient(server.URL, "tkn", 100).ListMembers(context.Background(), "abcdef0123456789")
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("len(members) = %d, want 2", len(members))
	}
	if members[0].Identity() != "1122334455" || !members[0].Config.Authorized {
		t.Errorf("members[0] = %+v", members[0])
	}
	if members[1].Identity() != "aabbccddee" {
		t.Errorf("Identity() = %s, want aabbccddee (derived from id)", members[1].Identity())
	}
}

func TestListMembers_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewCentralClient(server.URL, "bad", 100).ListMembers(context.Background(), "abcdef0123456789")
	if !IsAuthError(err) {
		t.Errorf("error = %v, want auth error", err)
	}
	if ShortMessage(err) != "ZeroTier Central rejected credentials" {
		t.Errorf("ShortMessage() = %q", ShortMessage(err))
	}
}

func TestListMembers_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewCentralClient(server.URL, "tkn", 100).ListMembers(context.Background(), "abcdef0123456789")
	apiErr, ok := asAPIError(err)
	if !ok || apiErr.Type != ErrTypeRateLimited {
		t.Errorf("error = %v, want rate limited", err)
	}
}

func TestUpdateMemberBodies(t *testing.T) {
	var bodies []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/network/abcdef0123456789/member/1122334455" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("invalid body %s", data)
		}
		bodies = append(bodies, body)
		_, _ = w.Write([]byte(`{"id":"abcdef0123456789-1122334455","nodeId":"1122334455","name":"laptop","config":{"authorized":true}}`))
	}))
	defer server.Close()

	client := NewCentralClient(server.URL, "tkn", 100)
	if _, err := client.UpdateMember(context.Background(), "abcdef0123456789", "1122334455", Rename("laptop")); err != nil {
		t.Fatalf("rename error = %v", err)
	}
	m, err := client.UpdateMember(context.Background(), "abcdef0123456789", "1122334455", Authorize(true))
	if err != nil {
		t.Fatalf("authorize error = %v", err)
	}
	if !m.Config.Authorized {
		t.Error("returned member should be authorized")
	}

	if bodies[0]["name"] != "laptop" {
		t.Errorf("rename body = %v", bodies[0])
	}
	if _, ok := bodies[0]["config"]; ok {
		t.Errorf("rename must not touch config: %v", bodies[0])
	}
	cfg, ok := bodies[1]["config"].(map[string]any)
	if !ok || cfg["authorized"] != true {
		t.Errorf("authorize body = %v", bodies[1])
	}
	if _, ok := bodies[1]["name"]; ok {
		t.Errorf("authorize must not touch name: %v", bodies[1])
	}
}

func TestDeleteMember(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = r.Method == http.MethodDelete && r.URL.Path == "/network/abcdef0123456789/member/1122334455"
	}))
	defer server.Close()

	if err := NewCentralClient(server.URL, "tkn", 100).DeleteMember(context.Background(), "abcdef0123456789", "1122334455"); err != nil {
		t.Fatalf("DeleteMember() error = %v", err)
	}
	if !called {
		t.Error("DELETE was not sent")
	}
}

func TestRulesRoundTrip(t *testing.T) {
	var pushed map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"id":"abcdef0123456789","config":{"name":"home","rules":[{"type":"ACTION_ACCEPT"}]}}`))
		case http.MethodPost:
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &pushed)
			_, _ = w.Write(data)
		}
	}))
	defer server.Close()

	client := NewCentralClient(server.URL, "tkn", 100)
	n, err := client.GetNetwork(context.Background(), "abcdef0123456789")
	if err != nil {
		t.Fatalf("GetNetwork() error = %v", err)
	}
	if len(n.Config.Rules) != 1 || string(n.Config.Rules[0]) != `{"type":"ACTION_ACCEPT"}` {
		t.Errorf("Rules = %s", n.Config.Rules)
	}

	rules := []json.RawMessage{json.RawMessage(`{"type":"ACTION_DROP"}`)}
	if err := client.SetRules(context.Background(), "abcdef0123456789", rules); err != nil {
		t.Fatalf("SetRules() error = %v", err)
	}
	cfg := pushed["config"].(map[string]any)
	got := cfg["rules"].([]any)
	if len(got) != 1 || got[0].(map[string]any)["type"] != "ACTION_DROP" {
		t.Errorf("pushed = %v", pushed)
	}
}
