package daemon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/syndic-app/syndic/internal/api"
	"github.com/syndic-app/syndic/internal/app/finance"
	"github.com/syndic-app/syndic/internal/app/sync"
	"github.com/syndic-app/syndic/internal/domain"
	"github.com/syndic-app/syndic/internal/infra/remote"
	"github.com/syndic-app/syndic/internal/infra/sqlite"
	"github.com/syndic-app/syndic/internal/logger"
)

// Run starts the daemon and blocks until ctx is done, then shuts the HTTP
// server down gracefully.
func Run(ctx context.Context, cfg Config, log zerolog.Logger) error {
	db, err := sqlite.Open(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	hub := finance.NewHub()
	engine := finance.New(db, hub, logger.Component(log, "finance"))

	var mirror sync.Remote
	pullInterval := cfg.Sync.PullIntervalDuration()
	if cfg.Remote.BaseURL != "" {
		mirror = remote.New(cfg.Remote.BaseURL, cfg.Remote.APIKey, logger.Component(log, "remote"))
	} else {
		// No mirror configured: run fully offline. Outbox jobs park with
		// backoff until a remote is configured and the daemon restarted.
		mirror = offlineRemote{}
		pullInterval = 0
		log.Info().Msg("no remote configured, running offline")
	}

	reconciler := sync.New(db, mirror, hub, cfg.Sync.BackoffMinDuration(), logger.Component(log, "sync"))
	generator := finance.NewGenerator(db, engine, reconciler, logger.Component(log, "charges"))

	schedCfg := sync.SchedulerConfig{
		DrainInterval: cfg.Sync.DrainIntervalDuration(),
		PullInterval:  pullInterval,
		ChargeCheck:   cfg.Charges.CheckIntervalDuration(),
		ChargeAmount:  cfg.Charges.AmountDecimal(),
		ChargeLabel:   cfg.Charges.Label,
	}
	if schedCfg.ChargeLabel == "" {
		schedCfg.ChargeLabel = "Cotisation mensuelle"
	}
	scheduler := sync.NewScheduler(schedCfg, reconciler, generator, logger.Component(log, "scheduler"))
	go scheduler.Run(ctx)

	server := api.NewServer(db, engine, generator, reconciler, logger.Component(log, "api"))
	if cfg.API.Metrics {
		server.EnableMetrics()
	}

	httpServer := &http.Server{
		Addr:    cfg.API.Addr(),
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("api listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// offlineRemote stands in when no mirror is configured: every upload fails
// as unavailable and there is nothing to pull.
type offlineRemote struct{}

func (offlineRemote) UpsertTransaction(context.Context, domain.Transaction) error {
	return domain.ErrRemoteUnavailable
}

func (offlineRemote) UpsertResident(context.Context, domain.Resident) error {
	return domain.ErrRemoteUnavailable
}

func (offlineRemote) UpsertConfig(context.Context, domain.ResidenceConfig) error {
	return domain.ErrRemoteUnavailable
}

func (offlineRemote) ListTransactions(context.Context) ([]domain.Transaction, error) {
	return nil, domain.ErrRemoteUnavailable
}

func (offlineRemote) ListResidents(context.Context) ([]domain.Resident, error) {
	return nil, domain.ErrRemoteUnavailable
}

func (offlineRemote) GetConfig(context.Context) (*domain.ResidenceConfig, error) {
	return nil, domain.ErrRemoteUnavailable
}
