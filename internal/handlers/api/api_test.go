package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"flightdeals/internal/db"
	"flightdeals/internal/jobs"
	"flightdeals/internal/models"
)

type fakeHistory struct {
	runs     []models.Run
	alerts   []models.DealAlert
	gotLimit int
	gotCity  string
	err      error
}

func (f *fakeHistory) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	f.gotLimit = limit
	return f.runs, f.err
}

func (f *fakeHistory) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, db.ErrRunNotFound
}

func (f *fakeHistory) ListDealAlerts(ctx context.Context, city string, limit int) ([]models.DealAlert, error) {
	f.gotCity = city
	f.gotLimit = limit
	return f.alerts, f.err
}

type fakeTrigger struct {
	err error
}

func (f fakeTrigger) Trigger(ctx context.Context) (*models.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	return models.NewRun(time.Now()), nil
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func doRequest(t *testing.T, app *fiber.App, method, target string) (int, envelope) {
	t.Helper()
	req, _ := http.NewRequest(method, target, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, env
}

func newRunApp(history RunHistory, trigger RunTrigger) *fiber.App {
	h := NewRunHandler(context.Background(), history, trigger)
	app := fiber.New()
	app.Get("/api/runs", h.List)
	app.Get("/api/runs/:id", h.Get)
	app.Post("/api/runs", h.Trigger)
	return app
}

func TestRunHandler_List(t *testing.T) {
	history := &fakeHistory{runs: []models.Run{*models.NewRun(time.Now()), *models.NewRun(time.Now())}}
	app := newRunApp(history, fakeTrigger{})

	status, env := doRequest(t, app, http.MethodGet, "/api/runs?limit=5")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	var runs []models.Run
	if err := json.Unmarshal(env.Data, &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("len(runs) = %d, want 2", len(runs))
	}
	if history.gotLimit != 5 {
		t.Errorf("limit = %d, want 5", history.gotLimit)
	}
}

func TestRunHandler_HistoryDisabled(t *testing.T) {
	app := newRunApp(nil, fakeTrigger{})

	status, env := doRequest(t, app, http.MethodGet, "/api/runs")
	if status != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if env.Status != "error" {
		t.Errorf("envelope status = %q, want error", env.Status)
	}
}

func TestRunHandler_Get(t *testing.T) {
	run := models.NewRun(time.Now())
	app := newRunApp(&fakeHistory{runs: []models.Run{*run}}, fakeTrigger{})

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "found", path: "/api/runs/" + run.ID.String(), wantStatus: fiber.StatusOK},
		{name: "unknown", path: "/api/runs/" + uuid.NewString(), wantStatus: fiber.StatusNotFound},
		{name: "bad id", path: "/api/runs/nope", wantStatus: fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doRequest(t, app, http.MethodGet, tt.path)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}

func TestRunHandler_Trigger(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "started", wantStatus: fiber.StatusAccepted},
		{name: "already running", err: jobs.ErrRunInProgress, wantStatus: fiber.StatusConflict},
		{name: "other failure", err: errors.New("boom"), wantStatus: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newRunApp(nil, fakeTrigger{err: tt.err})
			status, _ := doRequest(t, app, http.MethodPost, "/api/runs")
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}

func TestDealHandler_List(t *testing.T) {
	history := &fakeHistory{alerts: []models.DealAlert{{City: "Paris", IATACode: "PAR"}}}
	h := NewDealHandler(history)
	app := fiber.New()
	app.Get("/api/deals", h.List)

	status, env := doRequest(t, app, http.MethodGet, "/api/deals?city=Paris&limit=500")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if history.gotCity != "Paris" {
		t.Errorf("city = %q, want Paris", history.gotCity)
	}
	if history.gotLimit != maxLimit {
		t.Errorf("limit = %d, want %d", history.gotLimit, maxLimit)
	}
	var alerts []models.DealAlert
	if err := json.Unmarshal(env.Data, &alerts); err != nil {
		t.Fatalf("decode alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Errorf("len(alerts) = %d, want 1", len(alerts))
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", defaultLimit},
		{"abc", defaultLimit},
		{"0", defaultLimit},
		{"-3", defaultLimit},
		{"7", 7},
		{"1000", maxLimit},
	}

	for _, tt := range tests {
		if got := parseLimit(tt.raw); got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
