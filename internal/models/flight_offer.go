package models

import (
	"errors"
	"fmt"
	"strconv"
)

// MaxStopovers is the most permissive step of the search ladder.
const MaxStopovers = 2

var (
	ErrInvalidStopovers = errors.New("stopovers out of range")
	ErrViaCityMismatch  = errors.New("via city must be set iff the flight has stopovers")
	ErrDatesOutOfOrder  = errors.New("out date is after return date")
)

// FlightOffer is the normalized top result of a flight search.
type FlightOffer struct {
	Price              float64 `json:"price"`
	OriginCity         string  `json:"origin_city"`
	OriginAirport      string  `json:"origin_airport"`
	DestinationCity    string  `json:"destination_city"`
	DestinationAirport string  `json:"destination_airport"`
	OutDate            string  `json:"out_date"`    // YYYY-MM-DD
	ReturnDate         string  `json:"return_date"` // YYYY-MM-DD
	Stopovers          int     `json:"stopovers"`
	ViaCity            string  `json:"via_city,omitempty"`
	DeepLink           string  `json:"deep_link"`
}

// HasStopovers returns true if the offer is not a direct flight.
func (o *FlightOffer) HasStopovers() bool {
	return o.Stopovers > 0
}

// IsDeal returns true if the offer meets or beats the threshold.
func (o *FlightOffer) IsDeal(threshold float64) bool {
	return o.Price <= threshold
}

// Validate checks the offer invariants.
// Dates are ISO-8601 so lexical order is chronological order.
func (o *FlightOffer) Validate() error {
	if o.Stopovers < 0 || o.Stopovers > MaxStopovers {
		return fmt.Errorf("%w: %d", ErrInvalidStopovers, o.Stopovers)
	}
	if (o.ViaCity != "") != o.HasStopovers() {
		return ErrViaCityMismatch
	}
	if o.OutDate > o.ReturnDate {
		return fmt.Errorf("%w: %s > %s", ErrDatesOutOfOrder, o.OutDate, o.ReturnDate)
	}
	return nil
}

// FormatPrice renders a price with the fewest digits that represent it exactly,
// so 450 prints as "450" and 450.99 as "450.99".
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
