package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"visitorreg/internal/audit"
	audithandler "visitorreg/internal/audit/handler"
	auditmetrics "visitorreg/internal/audit/metrics"
	"visitorreg/internal/audit/publisher"
	auditmemory "visitorreg/internal/audit/store/memory"
	auditpostgres "visitorreg/internal/audit/store/postgres"
	"visitorreg/internal/platform/config"
	"visitorreg/internal/platform/database"
	"visitorreg/internal/platform/health"
	"visitorreg/internal/platform/kafka/producer"
	"visitorreg/internal/platform/metrics"
	platformredis "visitorreg/internal/platform/redis"
	httptransport "visitorreg/internal/transport/http"
	"visitorreg/internal/visitor/cache"
	visitorhandler "visitorreg/internal/visitor/handler"
	visitormetrics "visitorreg/internal/visitor/metrics"
	"visitorreg/internal/visitor/registerno"
	"visitorreg/internal/visitor/service"
	"visitorreg/internal/visitor/store"
	"visitorreg/pkg/platform/middleware/request"
)

type visitorStore interface {
	service.Store
	registerno.Source
}

type application struct {
	router     http.Handler
	worker     *audit.Worker
	outbox     chan *audit.Entry
	persistent bool
	cached     bool
	closers    []func() error
}

// build connects the optional infrastructure named in cfg and assembles the API.
// Postgres, Redis and Kafka are each optional; without them the register runs on
// in-memory stores, uncached, with no audit stream.
func build(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *application, err error) {
	app := &application{}
	defer func() {
		if err != nil {
			app.close(log)
		}
	}()

	loc, err := cfg.Visitor.Location()
	if err != nil {
		return nil, err
	}

	reg := metrics.NewRegistry()
	checks := health.New()

	var visitors visitorStore = store.NewInMemoryStore()
	var entries audit.Store = auditmemory.NewInMemoryStore()

	pool, err := database.New(ctx, database.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if pool != nil {
		app.closers = append(app.closers, pool.Close)
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx, pool.DB()); err != nil {
				return nil, err
			}
		}
		visitors = store.NewPostgres(pool.DB())
		entries = auditpostgres.New(pool.DB())
		checks.RegisterCheck("postgres", pool.Health)
		app.persistent = true
	}

	recorderOpts := []audit.Option{
		audit.WithLogger(log),
		audit.WithMetrics(auditmetrics.NewWithRegistry(reg)),
		audit.WithPageSize(cfg.Visitor.SearchPageSize),
	}
	if cfg.Kafka.Brokers != "" {
		prod, err := producer.New(producer.Config{Brokers: cfg.Kafka.Brokers, Acks: cfg.Kafka.Acks}, log)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, prod.Close)
		checks.RegisterCheck("kafka", func(ctx context.Context) error {
			if !prod.Healthy(ctx) {
				return errors.New("no broker reachable")
			}
			return nil
		})

		app.outbox = make(chan *audit.Entry, cfg.Kafka.OutboxSize)
		recorderOpts = append(recorderOpts, audit.WithOutbox(app.outbox))
		app.worker = audit.NewWorker(publisher.NewKafkaPublisher(prod, cfg.Kafka.AuditTopic), app.outbox, log)
	}
	recorder := audit.NewRecorder(entries, recorderOpts...)

	serviceOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(visitormetrics.NewWithRegistry(reg)),
		service.WithPageSize(cfg.Visitor.SearchPageSize),
		service.WithRegisterNoAttempts(cfg.Visitor.RegisterNoMaxAttempts),
	}
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		app.closers = append(app.closers, redisClient.Close)
		checks.RegisterCheck("redis", redisClient.Health)
		serviceOpts = append(serviceOpts, service.WithCache(cache.NewRedis(redisClient.Client, cfg.Redis.CacheTTL)))
		app.cached = true
	}

	svc, err := service.New(visitors, registerno.New(visitors, registerno.WithLocation(loc)), recorder, serviceOpts...)
	if err != nil {
		return nil, err
	}

	app.router = httptransport.NewRouter(httptransport.Dependencies{
		Logger:         log,
		Visitors:       visitorhandler.New(svc, log, loc),
		Audit:          audithandler.New(recorder, log),
		Health:         checks,
		Registry:       reg,
		RequestMetrics: request.NewMetrics(reg),
	})
	return app, nil
}

// close releases infrastructure in reverse order of acquisition.
func (a *application) close(log *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn("failed to release resource", "error", err)
		}
	}
	a.closers = nil
}
