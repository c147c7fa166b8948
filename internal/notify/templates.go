package notify

import (
	"fmt"

	"flightdeals/internal/config"
	"flightdeals/internal/models"
)

// Templates renders deal notification bodies.
type Templates struct {
	currencySymbol string
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{currencySymbol: cfg.CurrencySymbol}
}

// DealBody is the message shared by every channel.
func (t *Templates) DealBody(offer *models.FlightOffer) string {
	body := fmt.Sprintf("Great deal alert! You can fly from %s-%s to %s-%s for only %s%s. Travel dates: %s to %s.",
		offer.OriginCity, offer.OriginAirport,
		offer.DestinationCity, offer.DestinationAirport,
		t.currencySymbol, models.FormatPrice(offer.Price),
		offer.OutDate, offer.ReturnDate,
	)
	if offer.HasStopovers() {
		body += fmt.Sprintf(" Flight has %d stop over, via %s.", offer.Stopovers, offer.ViaCity)
	}
	return body
}

// EmailBody is the deal body followed by the booking link.
func (t *Templates) EmailBody(offer *models.FlightOffer) string {
	return t.DealBody(offer) + "\n" + offer.DeepLink
}

// Messages returns the body for each channel.
func (t *Templates) Messages(offer *models.FlightOffer) []models.NotificationMessage {
	return []models.NotificationMessage{
		{Body: t.EmailBody(offer), Channel: models.ChannelEmail},
		{Body: t.DealBody(offer), Channel: models.ChannelSMS},
	}
}
