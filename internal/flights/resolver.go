package flights

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flightdeals/internal/validation"
)

var (
	ErrLocationNotFound   = errors.New("no location matches city")
	ErrNoFlightFound      = errors.New("no flight found")
	ErrMalformedItinerary = errors.New("malformed itinerary")
)

// LocationSearcher looks up locations by free-text term.
type LocationSearcher interface {
	Locations(ctx context.Context, term string) ([]Location, error)
}

// Resolver maps city names to IATA codes.
type Resolver struct {
	locations LocationSearcher
}

// NewResolver creates a new resolver.
func NewResolver(locations LocationSearcher) *Resolver {
	return &Resolver{locations: locations}
}

// Resolve returns the code of the first location matching city.
func (r *Resolver) Resolve(ctx context.Context, city string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", fmt.Errorf("%w: empty city name", ErrLocationNotFound)
	}

	locations, err := r.locations.Locations(ctx, city)
	if err != nil {
		return "", fmt.Errorf("look up %q: %w", city, err)
	}
	if len(locations) == 0 {
		return "", fmt.Errorf("%w: %s", ErrLocationNotFound, city)
	}

	code := validation.NormalizeIATACode(locations[0].Code)
	if code == "" {
		return "", fmt.Errorf("%w: %s", ErrLocationNotFound, city)
	}
	return code, nil
}
