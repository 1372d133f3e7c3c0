//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
)

func TestRequestID_Generated(t *testing.T) {
	resp := doGet(t, "/livez")
	defer resp.Body.Close()

	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header not present")
	}
}

func TestRequestID_Echoed(t *testing.T) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, baseURL+"/orders", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("X-Request-ID", "order-request-42")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "order-request-42" {
		t.Errorf("X-Request-ID: got %q, want %q", got, "order-request-42")
	}
}

func TestCORS_Preflight(t *testing.T) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodOptions, baseURL+"/orders", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Error("Access-Control-Allow-Origin header not present")
	}
	if resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Error("Access-Control-Allow-Methods header not present")
	}
}

func TestRateLimit_Headers(t *testing.T) {
	resp := doGet(t, "/orders")
	defer resp.Body.Close()

	if resp.Header.Get("X-RateLimit-Limit") == "" {
		t.Error("X-RateLimit-Limit header not present")
	}
	if resp.Header.Get("X-RateLimit-Remaining") == "" {
		t.Error("X-RateLimit-Remaining header not present")
	}
}
