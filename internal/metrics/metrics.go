package metrics

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"flightdeals/internal/models"
)

// Outcome label values
const (
	OutcomeFound   = "found"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSuccess = "success"
)

var (
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightdeals_searches_total",
			Help: "Flight searches by stopover ladder step and outcome",
		},
		[]string{"max_stopovers", "outcome"},
	)
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightdeals_notifications_total",
			Help: "Notifications by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightdeals_runs_total",
			Help: "Deal checker runs by outcome",
		},
		[]string{"outcome"},
	)
	lastSuccessfulRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flightdeals_last_successful_run_timestamp_seconds",
			Help: "Unix time of the last run that finished without error",
		},
	)

	dealAlertDesc = prometheus.NewDesc(
		"flightdeals_deal_alerts_total",
		"Notified deals recorded in run history by city",
		[]string{"city"},
		nil,
	)
)

// DealStatsSource provides per-city deal counts from run history.
type DealStatsSource interface {
	CountDealAlertsByCity(ctx context.Context) ([]models.CityDealCount, error)
}

// DealCollector is a custom Prometheus collector that reads deal counts
// from the history database on each scrape.
type DealCollector struct {
	source DealStatsSource
}

// NewDealCollector creates a collector over source.
func NewDealCollector(source DealStatsSource) *DealCollector {
	return &DealCollector{source: source}
}

// Describe sends the metric descriptor to the channel.
func (c *DealCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- dealAlertDesc
}

// Collect queries the history for deal counts and emits them as counters.
func (c *DealCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.source.CountDealAlertsByCity(ctx)
	if err != nil {
		slog.Error("failed to collect deal alert metrics", "error", err)
		return
	}
	for _, cc := range counts {
		ch <- prometheus.MustNewConstMetric(
			dealAlertDesc,
			prometheus.CounterValue,
			float64(cc.Count),
			cc.City,
		)
	}
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// source may be nil when run history is disabled. Must be called once at startup.
func Init(source DealStatsSource) {
	initOnce.Do(func() {
		prometheus.MustRegister(searchesTotal, notificationsTotal, runsTotal, lastSuccessfulRun)
		if source != nil {
			prometheus.MustRegister(NewDealCollector(source))
		}
	})
}

// RecordSearch counts one search call of the stopover ladder.
func RecordSearch(maxStopovers int, outcome string) {
	searchesTotal.WithLabelValues(strconv.Itoa(maxStopovers), outcome).Inc()
}

// RecordNotification counts delivery attempts on a channel.
func RecordNotification(channel, outcome string, n int) {
	if n <= 0 {
		return
	}
	notificationsTotal.WithLabelValues(channel, outcome).Add(float64(n))
}

// RecordRun counts a finished run and stamps the success gauge.
func RecordRun(run *models.Run) {
	if run.Succeeded() {
		runsTotal.WithLabelValues(OutcomeSuccess).Inc()
		lastSuccessfulRun.Set(float64(run.FinishedAt.Unix()))
		return
	}
	runsTotal.WithLabelValues(OutcomeFailed).Inc()
}
