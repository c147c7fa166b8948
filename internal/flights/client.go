// Package flights talks to the Tequila flight search API: it resolves city
// names to IATA codes and finds the cheapest round trip for a destination.
package flights

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"flightdeals/internal/config"
	"flightdeals/internal/httpjson"
)

// searchDateLayout is the DD/MM/YYYY format the search endpoint expects.
const searchDateLayout = "02/01/2006"

// Location is one entry of a locations query.
type Location struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Leg is one flight segment of an itinerary route.
type Leg struct {
	FlyFrom        string `json:"flyFrom"`
	FlyTo          string `json:"flyTo"`
	CityFrom       string `json:"cityFrom"`
	CityTo         string `json:"cityTo"`
	LocalDeparture string `json:"local_departure"`
	LocalArrival   string `json:"local_arrival"`
	Return         int    `json:"return"`
}

// Itinerary is one round-trip result of a search.
type Itinerary struct {
	Price        float64 `json:"price"`
	CityFrom     string  `json:"cityFrom"`
	CityCodeFrom string  `json:"cityCodeFrom"`
	CityTo       string  `json:"cityTo"`
	CityCodeTo   string  `json:"cityCodeTo"`
	Route        []Leg   `json:"route"`
	DeepLink     string  `json:"deep_link"`
}

// SearchRequest holds the parameters of one search call.
type SearchRequest struct {
	FlyFrom      string
	FlyTo        string
	DateFrom     time.Time
	DateTo       time.Time
	NightsFrom   int
	NightsTo     int
	MaxStopovers int
	Currency     string
}

// Query encodes the request as search endpoint parameters.
func (r SearchRequest) Query() url.Values {
	q := url.Values{}
	q.Set("fly_from", r.FlyFrom)
	q.Set("fly_to", r.FlyTo)
	q.Set("date_from", r.DateFrom.Format(searchDateLayout))
	q.Set("date_to", r.DateTo.Format(searchDateLayout))
	q.Set("nights_in_dst_from", strconv.Itoa(r.NightsFrom))
	q.Set("nights_in_dst_to", strconv.Itoa(r.NightsTo))
	q.Set("flight_type", "round")
	q.Set("max_stopovers", strconv.Itoa(r.MaxStopovers))
	q.Set("one_for_city", "1")
	q.Set("curr", r.Currency)
	return q
}

// Client is a Tequila API client.
type Client struct {
	httpClient   *http.Client
	locationsURL string
	searchURL    string
	apiKey       string
}

// NewClient creates a new Tequila client.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient:   httpjson.NewClient(cfg.HTTPClientTimeout),
		locationsURL: cfg.TequilaLocationsURL,
		searchURL:    cfg.TequilaSearchURL,
		apiKey:       cfg.TequilaAPIKey,
	}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("apikey", c.apiKey)
	return h
}

// Locations queries locations matching term.
func (c *Client) Locations(ctx context.Context, term string) ([]Location, error) {
	q := url.Values{}
	q.Set("term", term)

	var resp struct {
		Locations []Location `json:"locations"`
	}
	if err := httpjson.Do(ctx, c.httpClient, http.MethodGet, c.locationsURL+"?"+q.Encode(), c.header(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Locations, nil
}

// Search returns the itineraries matching req, cheapest first as ranked by the API.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Itinerary, error) {
	var resp struct {
		Data []Itinerary `json:"data"`
	}
	if err := httpjson.Do(ctx, c.httpClient, http.MethodGet, c.searchURL+"?"+req.Query().Encode(), c.header(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
