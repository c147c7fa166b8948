// Package sheet reads and patches the Sheety-backed spreadsheet that holds
// tracked destinations and subscribers.
package sheet

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"flightdeals/internal/config"
	"flightdeals/internal/httpjson"
	"flightdeals/internal/models"
)

// CodeResolver maps a city name to an IATA code.
type CodeResolver interface {
	Resolve(ctx context.Context, city string) (string, error)
}

// Client is a Sheety client for the prices and users sheets.
type Client struct {
	httpClient *http.Client
	pricesURL  string
	usersURL   string
}

// NewClient creates a new sheet client. When a token is configured, requests
// carry it as a bearer token.
func NewClient(ctx context.Context, cfg *config.Config) *Client {
	httpClient := httpjson.NewClient(cfg.HTTPClientTimeout)
	if cfg.SheetyToken != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.SheetyToken,
			TokenType:   "Bearer",
		}))
		httpClient.Timeout = cfg.HTTPClientTimeout
	}

	return &Client{
		httpClient: httpClient,
		pricesURL:  strings.TrimRight(cfg.SheetyPricesURL, "/"),
		usersURL:   cfg.SheetyUsersURL,
	}
}

// FetchAll returns every tracked destination in sheet order.
func (c *Client) FetchAll(ctx context.Context) ([]models.Destination, error) {
	var resp struct {
		Prices []models.Destination `json:"prices"`
	}
	if err := httpjson.Do(ctx, c.httpClient, http.MethodGet, c.pricesURL, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch destinations: %w", err)
	}
	return resp.Prices, nil
}

// UpdateCode writes code into the iataCode column of row id.
func (c *Client) UpdateCode(ctx context.Context, id int, code string) error {
	body := map[string]any{
		"price": map[string]string{"iataCode": code},
	}
	url := c.pricesURL + "/" + strconv.Itoa(id)
	if err := httpjson.Do(ctx, c.httpClient, http.MethodPut, url, nil, body, nil); err != nil {
		return fmt.Errorf("update destination %d: %w", id, err)
	}
	return nil
}

// BackfillCode resolves and stores the IATA code of a destination that has none.
// dest is updated in place. Destinations that already have a code are left alone.
func (c *Client) BackfillCode(ctx context.Context, dest *models.Destination, resolver CodeResolver) error {
	if dest.HasCode() {
		return nil
	}

	code, err := resolver.Resolve(ctx, dest.City)
	if err != nil {
		return err
	}

	if err := c.UpdateCode(ctx, dest.ID, code); err != nil {
		return err
	}

	log.Printf("Back-filled IATA code %s for %s (row %d)", code, dest.City, dest.ID)
	dest.IATACode = code
	return nil
}

// FetchRecipients returns the current subscriber list.
func (c *Client) FetchRecipients(ctx context.Context) ([]models.Recipient, error) {
	var resp struct {
		Users []models.Recipient `json:"users"`
	}
	if err := httpjson.Do(ctx, c.httpClient, http.MethodGet, c.usersURL, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch recipients: %w", err)
	}
	return resp.Users, nil
}
