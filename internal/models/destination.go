package models

import "strings"

// Destination is a tracked city row from the prices sheet.
type Destination struct {
	ID          int     `json:"id"`
	City        string  `json:"city"`
	IATACode    string  `json:"iataCode"`    // Blank until back-filled
	LowestPrice float64 `json:"lowestPrice"` // Deal threshold
}

// HasCode returns true if the destination already carries an IATA code.
func (d *Destination) HasCode() bool {
	return strings.TrimSpace(d.IATACode) != ""
}

// Recipient is a subscriber row from the users sheet.
type Recipient struct {
	Email string `json:"email"`
}
