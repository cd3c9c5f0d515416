package customHttpClient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
)

func TestDoRequest_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if r.Header.Get("X-API-KEY") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"q": r.URL.Query().Get("q")})
	}))
	defer srv.Close()

	c := NewConnector(ConnectorConfig{Name: "test", BaseURL: srv.URL, Headers: map[string]string{"X-API-KEY": "k"}})

	var out map[string]string
	err := c.DoRequest(context.Background(), http.MethodGet, "/search", url.Values{"q": {"golang"}}, nil, &out)
	if err != nil {
		t.Fatalf("DoRequest failed: %v", err)
	}
	if out["q"] != "golang" {
		t.Errorf("response = %v", out)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestDoRequest_ClientErrorIsFinal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewConnector(ConnectorConfig{Name: "test", BaseURL: srv.URL})
	err := c.DoRequest(context.Background(), http.MethodPost, "/x", nil, map[string]string{"a": "b"}, nil)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want HTTPError 401", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestDoRequest_SendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["prompt"]})
	}))
	defer srv.Close()

	c := NewConnector(ConnectorConfig{Name: "test", BaseURL: srv.URL})
	var out map[string]string
	if err := c.DoRequest(context.Background(), http.MethodPost, "/", nil, map[string]string{"prompt": "hi"}, &out); err != nil {
		t.Fatal(err)
	}
	if out["echo"] != "hi" {
		t.Errorf("echo = %q", out["echo"])
	}
}
