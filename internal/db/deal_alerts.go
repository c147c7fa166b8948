package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"flightdeals/internal/models"
)

const dealAlertColumns = `id, run_id, city, iata_code, lowest_price,
	price, origin_city, origin_airport, destination_city, destination_airport,
	out_date::text, return_date::text, stopovers, via_city, deep_link,
	emails_sent, sms_sent, created_at`

// InsertDealAlert records a notified offer.
func (d *DB) InsertDealAlert(ctx context.Context, alert *models.DealAlert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	o := alert.Offer
	return d.Pool.QueryRow(ctx, `
		INSERT INTO deal_alerts (id, run_id, city, iata_code, lowest_price,
			price, origin_city, origin_airport, destination_city, destination_airport,
			out_date, return_date, stopovers, via_city, deep_link,
			emails_sent, sms_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::date, $12::date, $13, $14, $15, $16, $17)
		RETURNING created_at
	`,
		alert.ID, alert.RunID, alert.City, alert.IATACode, alert.LowestPrice,
		o.Price, o.OriginCity, o.OriginAirport, o.DestinationCity, o.DestinationAirport,
		o.OutDate, o.ReturnDate, o.Stopovers, o.ViaCity, o.DeepLink,
		alert.EmailsSent, alert.SMSSent,
	).Scan(&alert.CreatedAt)
}

// ListDealAlerts returns the most recent notified deals, newest first.
// A non-empty city restricts the result to that destination.
func (d *DB) ListDealAlerts(ctx context.Context, city string, limit int) ([]models.DealAlert, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if city == "" {
		rows, err = d.Pool.Query(ctx, `
			SELECT `+dealAlertColumns+`
			FROM deal_alerts
			ORDER BY created_at DESC
			LIMIT $1
		`, limit)
	} else {
		rows, err = d.Pool.Query(ctx, `
			SELECT `+dealAlertColumns+`
			FROM deal_alerts
			WHERE LOWER(city) = LOWER($1)
			ORDER BY created_at DESC
			LIMIT $2
		`, city, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []models.DealAlert{}
	for rows.Next() {
		var a models.DealAlert
		if err := rows.Scan(
			&a.ID,
			&a.RunID,
			&a.City,
			&a.IATACode,
			&a.LowestPrice,
			&a.Offer.Price,
			&a.Offer.OriginCity,
			&a.Offer.OriginAirport,
			&a.Offer.DestinationCity,
			&a.Offer.DestinationAirport,
			&a.Offer.OutDate,
			&a.Offer.ReturnDate,
			&a.Offer.Stopovers,
			&a.Offer.ViaCity,
			&a.Offer.DeepLink,
			&a.EmailsSent,
			&a.SMSSent,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// CountDealAlertsByCity returns the number of notified deals per city.
func (d *DB) CountDealAlertsByCity(ctx context.Context) ([]models.CityDealCount, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT city, COUNT(*)
		FROM deal_alerts
		GROUP BY city
		ORDER BY city
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.CityDealCount
	for rows.Next() {
		var c models.CityDealCount
		if err := rows.Scan(&c.City, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
