package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"flightdeals/internal/config"
	"flightdeals/internal/flights"
	"flightdeals/internal/metrics"
	"flightdeals/internal/models"
	"flightdeals/internal/notify"
	"flightdeals/internal/sheet"
)

var ErrRunInProgress = errors.New("a deal check is already running")

// DestinationStore reads tracked destinations and fills in missing codes.
type DestinationStore interface {
	FetchAll(ctx context.Context) ([]models.Destination, error)
	BackfillCode(ctx context.Context, dest *models.Destination, resolver sheet.CodeResolver) error
}

// OfferFinder finds the cheapest offer for a destination.
type OfferFinder interface {
	Find(ctx context.Context, origin, destination string, departFrom, departTo time.Time) (*models.FlightOffer, error)
}

// Notifier delivers a deal to subscribers.
type Notifier interface {
	BroadcastEmail(ctx context.Context, body string) (int, error)
	SendSMS(ctx context.Context, body string) error
	SMSEnabled() bool
}

// HistoryRecorder persists runs and notified deals.
type HistoryRecorder interface {
	CreateRun(ctx context.Context, run *models.Run) error
	FinishRun(ctx context.Context, run *models.Run) error
	InsertDealAlert(ctx context.Context, alert *models.DealAlert) error
}

// DealChecker checks every tracked destination for a cheap round trip and
// notifies subscribers about what it finds.
type DealChecker struct {
	store     DestinationStore
	resolver  sheet.CodeResolver
	finder    OfferFinder
	notifier  Notifier
	templates *notify.Templates
	history   HistoryRecorder

	origin   string
	horizon  int
	interval time.Duration
	now      func() time.Time

	mu sync.Mutex
}

// NewDealChecker creates a new deal checker.
func NewDealChecker(cfg *config.Config, store DestinationStore, resolver sheet.CodeResolver, finder OfferFinder, notifier Notifier) *DealChecker {
	return &DealChecker{
		store:     store,
		resolver:  resolver,
		finder:    finder,
		notifier:  notifier,
		templates: notify.NewTemplates(cfg),
		origin:    cfg.OriginCityCode,
		horizon:   cfg.HorizonDays,
		interval:  cfg.CheckInterval,
		now:       time.Now,
	}
}

// SetHistory enables run history recording.
func (c *DealChecker) SetHistory(h HistoryRecorder) {
	c.history = h
}

// Start begins the background check loop.
func (c *DealChecker) Start(ctx context.Context) {
	log.Printf("Deal checker started (interval: %v, origin: %s)", c.interval, c.origin)

	// Run immediately on start
	c.tick(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Deal checker stopped")
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *DealChecker) tick(ctx context.Context) {
	_, err := c.RunOnce(ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		log.Println("Deal checker: previous run still in progress, skipping")
	case err != nil:
		log.Printf("Deal checker: run failed: %v", err)
	}
}

// RunOnce performs a single pass over all destinations and blocks until it
// is done. It fails with ErrRunInProgress if another pass is running.
func (c *DealChecker) RunOnce(ctx context.Context) (*models.Run, error) {
	if !c.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer c.mu.Unlock()

	run := models.NewRun(c.now())
	err := c.execute(ctx, run)
	return run, err
}

// Trigger starts a pass in the background and returns a snapshot of the new
// run. It fails with ErrRunInProgress if another pass is running.
func (c *DealChecker) Trigger(ctx context.Context) (*models.Run, error) {
	if !c.mu.TryLock() {
		return nil, ErrRunInProgress
	}

	run := models.NewRun(c.now())
	snapshot := *run

	go func() {
		defer c.mu.Unlock()
		if err := c.execute(ctx, run); err != nil {
			log.Printf("Deal checker: triggered run %s failed: %v", run.ID, err)
		}
	}()

	return &snapshot, nil
}

// execute runs one pass and records its outcome. Caller holds c.mu.
func (c *DealChecker) execute(ctx context.Context, run *models.Run) error {
	log.Printf("Deal check %s started", run.ID)
	if c.history != nil {
		if err := c.history.CreateRun(ctx, run); err != nil {
			log.Printf("Deal checker: failed to record run start: %v", err)
		}
	}

	err := c.checkAll(ctx, run)
	run.Finish(c.now(), err)
	metrics.RecordRun(run)

	if c.history != nil {
		if herr := c.history.FinishRun(ctx, run); herr != nil {
			log.Printf("Deal checker: failed to record run finish: %v", herr)
		}
	}

	log.Printf("Deal check %s finished: %d destinations, %d offers, %d notifications",
		run.ID, run.DestinationsChecked, run.OffersFound, run.NotificationsSent)
	return err
}

// checkAll walks the destination table in order. Any error other than an
// empty search aborts the pass.
func (c *DealChecker) checkAll(ctx context.Context, run *models.Run) error {
	destinations, err := c.store.FetchAll(ctx)
	if err != nil {
		return err
	}

	tomorrow := c.now().Add(24 * time.Hour)
	horizonEnd := tomorrow.AddDate(0, 0, c.horizon)

	for i := range destinations {
		if err := ctx.Err(); err != nil {
			return err
		}

		dest := &destinations[i]
		if err := c.store.BackfillCode(ctx, dest, c.resolver); err != nil {
			return fmt.Errorf("back-fill code for %s: %w", dest.City, err)
		}
		run.DestinationsChecked++

		offer, err := c.finder.Find(ctx, c.origin, dest.IATACode, tomorrow, horizonEnd)
		if errors.Is(err, flights.ErrNoFlightFound) {
			continue
		}
		if err != nil {
			return err
		}
		run.OffersFound++

		if err := c.notify(ctx, run, dest, offer); err != nil {
			return fmt.Errorf("notify %s deal: %w", dest.City, err)
		}
	}

	return nil
}

// notify emails every found offer and texts only offers at or below the
// destination's threshold.
func (c *DealChecker) notify(ctx context.Context, run *models.Run, dest *models.Destination, offer *models.FlightOffer) error {
	emails, err := c.notifier.BroadcastEmail(ctx, c.templates.EmailBody(offer))
	run.NotificationsSent += emails
	if err != nil {
		return err
	}

	smsSent := false
	if offer.IsDeal(dest.LowestPrice) && c.notifier.SMSEnabled() {
		if err := c.notifier.SendSMS(ctx, c.templates.DealBody(offer)); err != nil {
			return err
		}
		smsSent = true
		run.NotificationsSent++
	}

	if c.history != nil && (emails > 0 || smsSent) {
		alert := &models.DealAlert{
			ID:          uuid.New(),
			RunID:       run.ID,
			City:        dest.City,
			IATACode:    dest.IATACode,
			LowestPrice: dest.LowestPrice,
			Offer:       *offer,
			EmailsSent:  emails,
			SMSSent:     smsSent,
			CreatedAt:   c.now(),
		}
		if err := c.history.InsertDealAlert(ctx, alert); err != nil {
			log.Printf("Deal checker: failed to record deal for %s: %v", dest.City, err)
		}
	}

	return nil
}
