package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"yieldvault/config"
	"yieldvault/database"
	"yieldvault/events"
	"yieldvault/metrics"
	"yieldvault/repository"
	"yieldvault/service"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the ledger process
func Run(ctx context.Context) error {
	cfg := config.Get()

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(log.DebugLevel)
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	gate := service.NewStaticAccessGate(cfg.RateAdminAddress, cfg.SupplyControllers)
	clock := service.NewClock()

	ledger := service.NewLedgerService(uowFactory, gate, clock)
	custodian := service.NewCustodianService(uowFactory, gate, clock, ledger, cfg.CustodyAddress)

	// The global rate row exists exactly once; on a fresh database this
	// seeds it, on every later start it is a no-op.
	if err := ledger.InitRate(ctx, cfg.InitialRate); err != nil {
		return fmt.Errorf("failed to initialize global rate: %w", err)
	}
	rate, err := ledger.Rate(ctx)
	if err != nil {
		return fmt.Errorf("failed to read global rate: %w", err)
	}
	log.WithFields(log.Fields{
		"rate":    rate,
		"custody": custodian.CustodyAddress(),
	}).Info("Ledger initialized")

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	collector.SetRate(rate)
	collector.Subscribe(eventBus)
	subscribeLogging(eventBus)

	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metrics.Handler(registry),
	}
	go func() {
		log.WithField("addr", cfg.MetricsAddr).Info("Serving metrics")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Metrics server stopped")
		}
	}()

	log.Infof("Ledger is running in %s mode", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Metrics server shutdown failed")
	}

	return nil
}

// subscribeLogging writes one structured log line per committed operation
func subscribeLogging(bus *events.Bus) {
	bus.Subscribe(events.EventTypeMinted, func(_ context.Context, event events.Event) {
		e := event.(events.MintedEvent)
		log.WithFields(log.Fields{
			"operation_id": e.OperationID,
			"to":           e.To,
			"amount":       e.Amount,
			"rate":         e.StampedRate,
		}).Info("Minted")
	})
	bus.Subscribe(events.EventTypeBurned, func(_ context.Context, event events.Event) {
		e := event.(events.BurnedEvent)
		log.WithFields(log.Fields{
			"operation_id": e.OperationID,
			"from":         e.From,
			"amount":       e.Amount,
		}).Info("Burned")
	})
	bus.Subscribe(events.EventTypeTransferred, func(_ context.Context, event events.Event) {
		e := event.(events.TransferredEvent)
		log.WithFields(log.Fields{
			"operation_id": e.OperationID,
			"from":         e.From,
			"to":           e.To,
			"amount":       e.Amount,
		}).Info("Transferred")
	})
	bus.Subscribe(events.EventTypeRateLowered, func(_ context.Context, event events.Event) {
		e := event.(events.RateLoweredEvent)
		log.WithFields(log.Fields{
			"old_rate":   e.OldRate,
			"new_rate":   e.NewRate,
			"updated_by": e.UpdatedBy,
		}).Info("Rate lowered")
	})
	bus.Subscribe(events.EventTypeInterestAccrued, func(_ context.Context, event events.Event) {
		e := event.(events.InterestAccruedEvent)
		log.WithFields(log.Fields{
			"operation_id": e.OperationID,
			"address":      e.Address,
			"amount":       e.Amount,
		}).Debug("Interest accrued")
	})
}
