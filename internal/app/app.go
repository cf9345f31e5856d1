package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ishank307/vintzaclient/internal/booking"
	"github.com/Ishank307/vintzaclient/internal/config"
	"github.com/Ishank307/vintzaclient/internal/idgen/simple"
	"github.com/Ishank307/vintzaclient/internal/logger"
	"github.com/Ishank307/vintzaclient/internal/migration"
	"github.com/Ishank307/vintzaclient/internal/planner"
	"github.com/Ishank307/vintzaclient/internal/pricing"
	"github.com/Ishank307/vintzaclient/internal/storage/memory"
	"github.com/Ishank307/vintzaclient/internal/transport/web"
)

func Run(l *logger.Logger) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	conf, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	storage := memory.New(memory.Config{L: l})
	if err := migration.Up(ctx, l, storage, time.Now(), conf.SeedDays); err != nil {
		return fmt.Errorf("up demo migration: %w", err)
	}

	l.LogInfo("Demo migration has been applied, %d days of inventory", conf.SeedDays)

	prices := pricing.New(storage, conf.PricingTaxRate)
	bookManager := booking.New(l, storage, simple.New(), prices)
	plans := planner.New(l, storage, bookManager, prices, planner.Config{
		TierLimit:     conf.AllocationTierLimit,
		DefaultGuests: conf.DefaultGuests,
		SessionTTL:    conf.SessionIdleTTL,
	})

	go plans.Run(ctx, conf.SessionSweepInterval)

	webConf := web.Conf{
		L:                 l,
		ServerLogger:      log.Default(),
		Host:              conf.HTTPHost,
		Port:              conf.HTTPPort,
		ReadHeaderTimeout: conf.HTTPReadHeaderTimeout,
		LivenessEndpoint:  conf.LivenessEndpoint,
	}

	srv, err := web.New(ctx, webConf, bookManager, plans)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	//nolint:contextcheck
	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), conf.HTTPShutdownTimeout)
		defer cancel()

		if err := srv.Srv().Shutdown(ctx); err != nil {
			l.LogErrorf("Failed to stop http server: %v", err.Error())
		}
	}()

	l.LogInfo("Application is running on %v:%v...", webConf.Host, webConf.Port)

	if err := srv.Srv().ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		l.LogErrorf("Failed to run http server: %v", err.Error())

		cancel()
	}

	l.LogInfo("Application stopped gracefully, %d sessions dropped", plans.Len())

	return nil
}
