package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"flightdeals/internal/config"
	"flightdeals/internal/models"
)

// fakeSheet serves the prices and users sheets and records row updates.
type fakeSheet struct {
	mu      sync.Mutex
	prices  []models.Destination
	users   []models.Recipient
	updates map[string]string // path -> iataCode
	auth    []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/prices":
		json.NewEncoder(w).Encode(map[string]any{"prices": f.prices})
	case r.Method == http.MethodGet && r.URL.Path == "/users":
		json.NewEncoder(w).Encode(map[string]any{"users": f.users})
	case r.Method == http.MethodPut:
		var body struct {
			Price struct {
				IATACode string `json:"iataCode"`
			} `json:"price"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if f.updates == nil {
			f.updates = map[string]string{}
		}
		f.updates[r.URL.Path] = body.Price.IATACode
		json.NewEncoder(w).Encode(map[string]any{"price": body.Price})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, sheet *fakeSheet, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(sheet)
	t.Cleanup(srv.Close)

	return NewClient(context.Background(), &config.Config{
		SheetyPricesURL:   srv.URL + "/prices",
		SheetyUsersURL:    srv.URL + "/users",
		SheetyToken:       token,
		HTTPClientTimeout: 5 * time.Second,
	})
}

type stubResolver struct {
	code  string
	err   error
	calls []string
}

func (s *stubResolver) Resolve(_ context.Context, city string) (string, error) {
	s.calls = append(s.calls, city)
	return s.code, s.err
}

func TestFetchAll(t *testing.T) {
	sheet := &fakeSheet{prices: []models.Destination{
		{ID: 2, City: "Paris", IATACode: "PAR", LowestPrice: 54000},
		{ID: 3, City: "Berlin", LowestPrice: 42000},
	}}
	client := newTestClient(t, sheet, "")

	got, err := client.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FetchAll() returned %d rows, want 2", len(got))
	}
	if got[0].City != "Paris" || got[0].IATACode != "PAR" || got[0].LowestPrice != 54000 {
		t.Errorf("row 0 = %+v", got[0])
	}
	if got[1].HasCode() {
		t.Errorf("row 1 has code %q, want blank", got[1].IATACode)
	}
}

func TestBackfillCode(t *testing.T) {
	sheet := &fakeSheet{}
	client := newTestClient(t, sheet, "")
	resolver := &stubResolver{code: "BER"}

	dest := &models.Destination{ID: 3, City: "Berlin"}
	if err := client.BackfillCode(context.Background(), dest, resolver); err != nil {
		t.Fatalf("BackfillCode() error = %v", err)
	}

	if dest.IATACode != "BER" {
		t.Errorf("IATACode = %q, want BER", dest.IATACode)
	}
	if len(resolver.calls) != 1 || resolver.calls[0] != "Berlin" {
		t.Errorf("resolver calls = %v, want [Berlin]", resolver.calls)
	}
	if len(sheet.updates) != 1 || sheet.updates["/prices/3"] != "BER" {
		t.Errorf("updates = %v, want exactly /prices/3 -> BER", sheet.updates)
	}
}

func TestBackfillCode_AlreadyCoded(t *testing.T) {
	sheet := &fakeSheet{}
	client := newTestClient(t, sheet, "")
	resolver := &stubResolver{code: "XXX"}

	dest := &models.Destination{ID: 2, City: "Paris", IATACode: "PAR"}
	if err := client.BackfillCode(context.Background(), dest, resolver); err != nil {
		t.Fatalf("BackfillCode() error = %v", err)
	}
	if dest.IATACode != "PAR" || len(resolver.calls) != 0 || len(sheet.updates) != 0 {
		t.Errorf("coded destination was touched: dest=%+v resolver=%v updates=%v", dest, resolver.calls, sheet.updates)
	}
}

func TestBackfillCode_ResolveError(t *testing.T) {
	sheet := &fakeSheet{}
	client := newTestClient(t, sheet, "")
	notFound := errors.New("no location")
	resolver := &stubResolver{err: notFound}

	dest := &models.Destination{ID: 4, City: "Atlantis"}
	err := client.BackfillCode(context.Background(), dest, resolver)
	if !errors.Is(err, notFound) {
		t.Fatalf("BackfillCode() error = %v, want %v", err, notFound)
	}
	if dest.IATACode != "" || len(sheet.updates) != 0 {
		t.Errorf("failed resolve still wrote: dest=%+v updates=%v", dest, sheet.updates)
	}
}

func TestFetchRecipients(t *testing.T) {
	sheet := &fakeSheet{users: []models.Recipient{{Email: "a@example.com"}, {Email: "b@example.com"}}}
	client := newTestClient(t, sheet, "")

	got, err := client.FetchRecipients(context.Background())
	if err != nil {
		t.Fatalf("FetchRecipients() error = %v", err)
	}
	if len(got) != 2 || got[1].Email != "b@example.com" {
		t.Errorf("FetchRecipients() = %+v", got)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"with token", "sheety-secret", "Bearer sheety-secret"},
		{"without token", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := &fakeSheet{}
			client := newTestClient(t, sheet, tt.token)

			if _, err := client.FetchAll(context.Background()); err != nil {
				t.Fatalf("FetchAll() error = %v", err)
			}
			if len(sheet.auth) != 1 || sheet.auth[0] != tt.want {
				t.Errorf("Authorization = %v, want %q", sheet.auth, tt.want)
			}
		})
	}
}
