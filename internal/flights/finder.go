package flights

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"flightdeals/internal/config"
	"flightdeals/internal/metrics"
	"flightdeals/internal/models"
)

// Searcher runs a single flight search.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]Itinerary, error)
}

// ladderStep is one rung of the stopover ladder: how many stopovers to allow
// and how to read an itinerary found under that constraint.
type ladderStep struct {
	maxStopovers int
	toOffer      func(Itinerary) (*models.FlightOffer, error)
}

// stopoverLadder is walked in order; the first non-empty search wins.
var stopoverLadder = []ladderStep{
	{maxStopovers: 0, toOffer: directOffer},
	{maxStopovers: 1, toOffer: oneStopOffer},
	{maxStopovers: 2, toOffer: twoStopOffer},
}

// Finder searches a destination with progressively relaxed stopover limits.
type Finder struct {
	searcher       Searcher
	nightsFrom     int
	nightsTo       int
	currency       string
	currencySymbol string
}

// NewFinder creates a new finder.
func NewFinder(searcher Searcher, cfg *config.Config) *Finder {
	return &Finder{
		searcher:       searcher,
		nightsFrom:     cfg.NightsInDstFrom,
		nightsTo:       cfg.NightsInDstTo,
		currency:       cfg.Currency,
		currencySymbol: cfg.CurrencySymbol,
	}
}

// Find returns the cheapest round trip from origin to destination departing
// between departFrom and departTo. It returns ErrNoFlightFound when no step
// of the ladder yields a result.
func (f *Finder) Find(ctx context.Context, origin, destination string, departFrom, departTo time.Time) (*models.FlightOffer, error) {
	for _, step := range stopoverLadder {
		req := SearchRequest{
			FlyFrom:      origin,
			FlyTo:        destination,
			DateFrom:     departFrom,
			DateTo:       departTo,
			NightsFrom:   f.nightsFrom,
			NightsTo:     f.nightsTo,
			MaxStopovers: step.maxStopovers,
			Currency:     f.currency,
		}

		results, err := f.searcher.Search(ctx, req)
		if err != nil {
			metrics.RecordSearch(step.maxStopovers, metrics.OutcomeError)
			return nil, fmt.Errorf("search %s-%s with %d stopovers: %w", origin, destination, step.maxStopovers, err)
		}
		if len(results) == 0 {
			metrics.RecordSearch(step.maxStopovers, metrics.OutcomeEmpty)
			continue
		}
		metrics.RecordSearch(step.maxStopovers, metrics.OutcomeFound)

		offer, err := step.toOffer(results[0])
		if err != nil {
			return nil, fmt.Errorf("%s-%s: %w", origin, destination, err)
		}

		log.Printf("%s: %s%s", offer.DestinationCity, f.currencySymbol, models.FormatPrice(offer.Price))
		return offer, nil
	}

	log.Printf("No flight with %d stop overs from %s to %s", models.MaxStopovers, origin, destination)
	return nil, ErrNoFlightFound
}

func directOffer(it Itinerary) (*models.FlightOffer, error) {
	if len(it.Route) < 2 {
		return nil, fmt.Errorf("%w: direct round trip needs 2 legs, got %d", ErrMalformedItinerary, len(it.Route))
	}
	return newOffer(it, it.Route[1], 0, "")
}

func oneStopOffer(it Itinerary) (*models.FlightOffer, error) {
	if len(it.Route) < 2 {
		return nil, fmt.Errorf("%w: one-stop round trip needs at least 2 legs, got %d", ErrMalformedItinerary, len(it.Route))
	}
	return newOffer(it, it.Route[len(it.Route)-1], 1, it.Route[0].CityTo)
}

func twoStopOffer(it Itinerary) (*models.FlightOffer, error) {
	if len(it.Route) < 3 {
		return nil, fmt.Errorf("%w: two-stop round trip needs at least 3 legs, got %d", ErrMalformedItinerary, len(it.Route))
	}
	via := it.Route[0].CityTo + " and " + it.Route[1].CityTo
	return newOffer(it, it.Route[len(it.Route)-1], 2, via)
}

func newOffer(it Itinerary, returnLeg Leg, stopovers int, via string) (*models.FlightOffer, error) {
	outDate, err := datePart(it.Route[0].LocalDeparture)
	if err != nil {
		return nil, err
	}
	returnDate, err := datePart(returnLeg.LocalDeparture)
	if err != nil {
		return nil, err
	}

	offer := &models.FlightOffer{
		Price:              it.Price,
		OriginCity:         it.CityFrom,
		OriginAirport:      it.CityCodeFrom,
		DestinationCity:    it.CityTo,
		DestinationAirport: it.CityCodeTo,
		OutDate:            outDate,
		ReturnDate:         returnDate,
		Stopovers:          stopovers,
		ViaCity:            via,
		DeepLink:           it.DeepLink,
	}
	if err := offer.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedItinerary, err)
	}
	return offer, nil
}

// datePart returns the YYYY-MM-DD prefix of an ISO-8601 timestamp.
func datePart(ts string) (string, error) {
	date, _, _ := strings.Cut(ts, "T")
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return "", fmt.Errorf("%w: bad local_departure %q", ErrMalformedItinerary, ts)
	}
	return date, nil
}
