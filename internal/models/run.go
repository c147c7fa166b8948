package models

import (
	"time"

	"github.com/google/uuid"
)

// Run records one pass of the deal checker over all tracked destinations.
type Run struct {
	ID                  uuid.UUID  `json:"id"`
	StartedAt           time.Time  `json:"started_at"`
	FinishedAt          *time.Time `json:"finished_at,omitempty"`
	DestinationsChecked int        `json:"destinations_checked"`
	OffersFound         int        `json:"offers_found"`
	NotificationsSent   int        `json:"notifications_sent"`
	Error               *string    `json:"error,omitempty"`
}

// NewRun starts a run at the given time.
func NewRun(startedAt time.Time) *Run {
	return &Run{ID: uuid.New(), StartedAt: startedAt}
}

// Finish stamps the run and records err, if any.
func (r *Run) Finish(at time.Time, err error) {
	r.FinishedAt = &at
	if err != nil {
		msg := err.Error()
		r.Error = &msg
	}
}

// Succeeded returns true if the run finished without an error.
func (r *Run) Succeeded() bool {
	return r.FinishedAt != nil && r.Error == nil
}

// DealAlert is a notified offer as kept in the run history.
type DealAlert struct {
	ID          uuid.UUID   `json:"id"`
	RunID       uuid.UUID   `json:"run_id"`
	City        string      `json:"city"`
	IATACode    string      `json:"iata_code"`
	LowestPrice float64     `json:"lowest_price"`
	Offer       FlightOffer `json:"offer"`
	EmailsSent  int         `json:"emails_sent"`
	SMSSent     bool        `json:"sms_sent"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CityDealCount is the number of notified deals for one tracked city.
type CityDealCount struct {
	City  string
	Count int64
}
