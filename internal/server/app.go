// Package server wires configuration, storage, notification channels and the
// HTTP and gRPC endpoints together and runs them until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/logging"
	"github.com/dmitrijs2005/checkpay/internal/metrics"
	"github.com/dmitrijs2005/checkpay/internal/notify"
	"github.com/dmitrijs2005/checkpay/internal/server/auth"
	"github.com/dmitrijs2005/checkpay/internal/server/config"
	"github.com/dmitrijs2005/checkpay/internal/server/httpapi"
	"github.com/dmitrijs2005/checkpay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/checkpay/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/checkpay/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
}

func NewApp(c *config.Config, l logging.Logger) *App {
	return &App{config: c, logger: l}
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM/SIGQUIT arrives, then
// shuts down the listeners, lets in-flight notifications finish and closes
// the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	db, rm, err := repomanager.Open(ctx, app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	notifiers, closers, err := app.buildNotifiers(ctx)
	if err != nil {
		return err
	}
	defer closeAll(ctx, app.logger, closers)

	dispatcher := notify.NewDispatcher(app.logger, m, app.config.NotifyTimeout, notifiers...)
	app.logger.Info(ctx, "notification channels configured", "channels", dispatcher.Channels())

	users := auth.NewCredentialStore(app.config.Users)
	tokens := auth.NewTokenService([]byte(app.config.SecretKey), app.config.AccessTokenValidityDuration, users)

	handler := httpapi.NewRouter(
		services.NewAuthService(users, tokens, m),
		services.NewPaymentService(db, rm, dispatcher, app.config.DefaultListLimit, m),
		app.logger, m,
		httpapi.Options{
			AllowedOrigins:  app.config.AllowedOrigins,
			MaxRequestBytes: app.config.MaxRequestBytes,
			Gatherer:        reg,
		},
	)

	httpSrv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info(gctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info(gctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), app.config.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})

	if app.config.EndpointAddrGRPC != "" {
		g.Go(func() error {
			return gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, db).Run(gctx)
		})
	}

	err = g.Wait()

	app.logger.Info(ctx, "waiting for pending notifications")
	dispatcher.Close()

	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err)
		return err
	}
	app.logger.Info(ctx, "app stopped")
	return nil
}

// buildNotifiers returns the channels enabled in config and the closers for
// the clients they hold. With nothing configured the log channel is used.
func (app *App) buildNotifiers(ctx context.Context) ([]notify.Notifier, []io.Closer, error) {
	c := app.config
	var (
		ns      []notify.Notifier
		closers []io.Closer
	)

	if c.SMTPHost != "" && len(c.NotifyTo) > 0 {
		n, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUsername,
			Password: c.SMTPPassword,
			From:     c.NotifyFrom,
			To:       c.NotifyTo,
			Timeout:  c.NotifyTimeout,
		})
		if err != nil {
			return nil, closers, err
		}
		ns = append(ns, n)
	}

	if len(c.KafkaBrokers) > 0 {
		n := notify.NewKafkaNotifier(c.KafkaBrokers, c.KafkaTopic)
		ns = append(ns, n)
		closers = append(closers, n)
	}

	if c.AMQPURL != "" {
		n, err := notify.NewAMQPNotifier(c.AMQPURL, c.AMQPQueue, c.NotifyTo)
		if err != nil {
			closeAll(ctx, app.logger, closers)
			return nil, nil, err
		}
		ns = append(ns, n)
		closers = append(closers, n)
	}

	if c.S3Bucket != "" {
		n, err := notify.NewS3Archiver(ctx, notify.S3Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			closeAll(ctx, app.logger, closers)
			return nil, nil, err
		}
		ns = append(ns, n)
	}

	if len(ns) == 0 {
		ns = append(ns, notify.NewLogNotifier(app.logger))
	}
	return ns, closers, nil
}

func closeAll(ctx context.Context, l logging.Logger, closers []io.Closer) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			l.Warn(ctx, "close failed", "error", err)
		}
	}
}
