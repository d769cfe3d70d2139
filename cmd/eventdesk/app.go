package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/eventdesk"
	"github.com/xraph/eventdesk/internal/config"
	"github.com/xraph/eventdesk/notify"
	"github.com/xraph/eventdesk/observability"
	"github.com/xraph/eventdesk/store"
	"github.com/xraph/eventdesk/store/memory"
	mongostore "github.com/xraph/eventdesk/store/mongo"
	redisstore "github.com/xraph/eventdesk/store/redis"
	"github.com/xraph/eventdesk/store/sqlite"
)

// app is one wired eventdesk session.
type app struct {
	desk     *eventdesk.Desk
	journal  store.Store
	recorder *notify.Recorder
	registry *prometheus.Registry
	logger   *slog.Logger
	in       io.Reader
	out      io.Writer
	json     bool
	closers  []func() error
}

func openApp(ctx context.Context, cfg config.Config, sio stdio, jsonOut bool) (*app, error) {
	a := &app{
		logger:   cfg.Logger(sio.errOut),
		recorder: notify.NewRecorder(32),
		registry: prometheus.NewRegistry(),
		in:       sio.in,
		out:      sio.out,
		json:     jsonOut,
	}

	metrics := observability.NewMetrics(a.registry)
	if cfg.Metrics.Addr != "" {
		a.serveMetrics(cfg.Metrics.Addr)
	}

	notifiers := notify.Multi{notify.NewLog(a.logger), a.recorder}
	if cfg.Notify.Desktop {
		notifiers = append(notifiers, notify.NewDesktop("eventdesk", ""))
	}
	if cfg.Notify.RedisURL != "" {
		pub, err := a.redisPublisher(cfg.Notify)
		if err != nil {
			a.close()
			return nil, err
		}
		notifiers = append(notifiers, pub)
	}

	opts := append(cfg.ToOptions(),
		eventdesk.WithLogger(a.logger),
		eventdesk.WithNotifier(notifiers),
		eventdesk.WithMetrics(metrics),
		eventdesk.WithTracer(observability.NewTracer()),
	)

	j, err := openJournal(ctx, cfg.Journal)
	if err != nil {
		a.close()
		return nil, err
	}
	if j != nil {
		a.journal = j
		opts = append(opts, eventdesk.WithJournal(j))
	}

	d, err := eventdesk.New(opts...)
	if err != nil {
		if j != nil {
			j.Close()
		}
		a.close()
		return nil, err
	}
	a.desk = d
	a.closers = append(a.closers, d.Close)

	d.Start(ctx)
	return a, nil
}

// openJournal returns nil when journaling is off.
func openJournal(ctx context.Context, cfg config.JournalConfig) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Driver {
	case "", config.DriverNone:
		return nil, nil
	case config.DriverMemory:
		s = memory.New()
	case config.DriverSQLite:
		s, err = sqlite.Open(ctx, cfg.DSN)
	case config.DriverRedis:
		s, err = redisstore.Open(ctx, cfg.DSN)
	case config.DriverMongo:
		s, err = mongostore.Open(ctx, cfg.DSN, cfg.Database)
	default:
		return nil, fmt.Errorf("unknown journal driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s journal: %w", cfg.Driver, err)
	}

	mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.Migrate(mctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate %s journal: %w", cfg.Driver, err)
	}
	return s, nil
}

func (a *app) redisPublisher(cfg config.NotifyConfig) (*notify.RedisPublisher, error) {
	opts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("notify redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)
	a.closers = append(a.closers, rdb.Close)
	return notify.NewRedisPublisher(rdb, cfg.RedisChannel), nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics server error", "error", err)
		}
	}()

	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
