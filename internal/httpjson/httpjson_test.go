package httpjson

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDo_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		if got := r.Header.Get("apikey"); got != "secret" {
			t.Errorf("apikey = %q, want secret", got)
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"echo": in["name"]})
	}))
	defer srv.Close()

	header := http.Header{}
	header.Set("apikey", "secret")

	var out struct {
		Echo string `json:"echo"`
	}
	err := Do(context.Background(), NewClient(time.Second), http.MethodPut, srv.URL, header, map[string]string{"name": "Paris"}, &out)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out.Echo != "Paris" {
		t.Errorf("Echo = %q, want Paris", out.Echo)
	}
}

func TestDo_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := Do(context.Background(), srv.Client(), http.MethodGet, srv.URL+"/search?term=Paris", nil, nil, nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Do() error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", statusErr.StatusCode)
	}
	if statusErr.Body != "quota exceeded" {
		t.Errorf("Body = %q, want quota exceeded", statusErr.Body)
	}
	if strings.Contains(statusErr.Error(), "term=Paris") {
		t.Errorf("Error() leaks query string: %s", statusErr.Error())
	}
}

func TestDo_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	var out map[string]any
	err := Do(context.Background(), srv.Client(), http.MethodGet, srv.URL, nil, nil, &out)
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("Do() error = %v, want decode error", err)
	}
}
