package metrics

import (
	"context"
	"net/http"

	"yieldvault/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector tracks ledger activity. It is fed from the event bus, so it only
// ever sees committed operations.
type Collector struct {
	mintedUnits      prometheus.Counter
	burnedUnits      prometheus.Counter
	transferredUnits prometheus.Counter
	accruedUnits     prometheus.Counter
	depositedUnits   prometheus.Counter
	redeemedUnits    prometheus.Counter
	operations       *prometheus.CounterVec
	currentRate      prometheus.Gauge
}

// NewCollector registers the ledger metrics on the given registerer
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		mintedUnits: factory.NewCounter(prometheus.CounterOpts{
			Name: "yieldvault_minted_units_total",
			Help: "Ledger units created by mint operations",
		}),
		burnedUnits: factory.NewCounter(prometheus.CounterOpts{
			Name: "yieldvault_burned_units_total",
			Help: "Ledger units destroyed by burn operations",
		}),
		transferredUnits: factory.NewCounter(prometheus.CounterOpts{
			Name: "yieldvault_transferred_units_total",
			Help: "Ledger units moved between accounts",
		}),
		accruedUnits: factory.NewCounter(prometheus.CounterOpts{
			Name: "yieldvault_accrued_interest_units_total",
			Help: "Interest units folded into principals at settlement",
		}),
		depositedUnits: factory.NewCounter(prometheus.CounterOpts{
			Name: "yieldvault_deposited_units_total",
			Help: "External asset units taken into custody",
		}),
		redeemedUnits: factory.NewCounter(prometheus.CounterOpts{
			Name: "yieldvault_redeemed_units_total",
			Help: "External asset units paid back out of custody",
		}),
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "yieldvault_operations_total",
			Help: "Committed state-changing operations by type",
		}, []string{"operation"}),
		currentRate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "yieldvault_global_rate",
			Help: "Current global per-second interest rate (scaled)",
		}),
	}
}

// SetRate primes the rate gauge at startup
func (c *Collector) SetRate(rate int64) {
	c.currentRate.Set(float64(rate))
}

// Subscribe attaches the collector to the event bus
func (c *Collector) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeMinted, func(_ context.Context, event events.Event) {
		e := event.(events.MintedEvent)
		c.mintedUnits.Add(float64(e.Amount))
		c.operations.WithLabelValues("mint").Inc()
	})
	bus.Subscribe(events.EventTypeBurned, func(_ context.Context, event events.Event) {
		e := event.(events.BurnedEvent)
		c.burnedUnits.Add(float64(e.Amount))
		c.operations.WithLabelValues("burn").Inc()
	})
	bus.Subscribe(events.EventTypeTransferred, func(_ context.Context, event events.Event) {
		e := event.(events.TransferredEvent)
		c.transferredUnits.Add(float64(e.Amount))
		c.operations.WithLabelValues("transfer").Inc()
	})
	bus.Subscribe(events.EventTypeInterestAccrued, func(_ context.Context, event events.Event) {
		e := event.(events.InterestAccruedEvent)
		c.accruedUnits.Add(float64(e.Amount))
	})
	bus.Subscribe(events.EventTypeDeposited, func(_ context.Context, event events.Event) {
		e := event.(events.DepositedEvent)
		c.depositedUnits.Add(float64(e.Amount))
		c.operations.WithLabelValues("deposit").Inc()
	})
	bus.Subscribe(events.EventTypeRedeemed, func(_ context.Context, event events.Event) {
		e := event.(events.RedeemedEvent)
		c.redeemedUnits.Add(float64(e.Amount))
		c.operations.WithLabelValues("redeem").Inc()
	})
	bus.Subscribe(events.EventTypeRateLowered, func(_ context.Context, event events.Event) {
		e := event.(events.RateLoweredEvent)
		c.currentRate.Set(float64(e.NewRate))
		c.operations.WithLabelValues("set_rate").Inc()
	})
}

// Handler returns the scrape handler for the given gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
