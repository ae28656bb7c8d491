package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/RoGogDBD/vitals-monitor/internal/config"
	"github.com/RoGogDBD/vitals-monitor/internal/config/db"
	"github.com/RoGogDBD/vitals-monitor/internal/grpcserver"
	"github.com/RoGogDBD/vitals-monitor/internal/handler"
	"github.com/RoGogDBD/vitals-monitor/internal/monitor"
	"github.com/RoGogDBD/vitals-monitor/internal/repository"
	"github.com/RoGogDBD/vitals-monitor/internal/sender"
	"github.com/RoGogDBD/vitals-monitor/internal/service"
	"github.com/RoGogDBD/vitals-monitor/internal/sink"
	"github.com/RoGogDBD/vitals-monitor/internal/vitals"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// app — собранный коллектор: хаб записей, подписки Web Vitals, потребители и серверы.
type app struct {
	cfg       *config.CollectorConfig
	logger    *zap.Logger
	hub       *vitals.Hub
	collector *vitals.Collector
	storage   repository.Storage
	monitor   *monitor.Monitor
	router    http.Handler
	postgres  *repository.Postgres
	forwarder *sink.Forwarder
	kafka     *sink.KafkaSink
	grpc      *grpcserver.Server
	audit     *repository.AuditManager
}

func newApp(ctx context.Context, cfg *config.CollectorConfig, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		hub:     vitals.NewHub(),
		storage: repository.NewMemStorage(),
		audit:   repository.NewAuditManager(logger),
	}

	heap, err := monitor.HeapSizerFor(cfg.HeapSource)
	if err != nil {
		return nil, err
	}
	a.monitor = monitor.New(
		monitor.WithHeapSizer(heap),
		monitor.WithInterval(cfg.MonitorInterval),
		monitor.WithLogger(logger),
	)

	if cfg.Restore {
		if err := repository.LoadMetricsFromFile(a.storage, cfg.StoreFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to restore vitals", zap.String("file", cfg.StoreFile), zap.Error(err))
		}
	}

	if cfg.DatabaseDSN != "" {
		pool, err := db.InitDB(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		a.postgres = repository.NewPostgres(pool)
	} else {
		logger.Info("No DSN provided, database features disabled")
	}

	if err := a.attachAudit(); err != nil {
		return nil, err
	}

	sinks := []vitals.ReportHandler{
		sink.LogSink(logger),
		sink.StorageSink(a.storage, logger),
	}
	if cfg.StoreInterval == 0 && cfg.StoreFile != "" {
		sinks = append(sinks, sink.FileSink(a.storage, cfg.StoreFile, logger))
	}
	if a.postgres != nil {
		sinks = append(sinks, sink.DBSink(ctx, a.postgres, logger))
	}
	if cfg.ForwardURL != "" {
		a.forwarder = sink.NewForwarder(sender.New(cfg.ForwardURL, cfg.Key), cfg.ReportInterval, logger)
		sinks = append(sinks, a.forwarder.Handle)
	}
	if len(cfg.KafkaBrokers) > 0 {
		a.kafka = sink.NewKafkaSink(sink.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger), logger)
		sinks = append(sinks, a.kafka.Handle)
	}

	a.collector = vitals.NewCollector(a.hub, logger)
	a.collector.Report(sink.Fanout(logger, sinks...))

	h := handler.NewHandler(a.hub, a.storage, a.monitor, logger)
	h.SetKey(cfg.Key)
	h.SetAuditManager(a.audit)
	if a.postgres != nil {
		h.SetDB(a.postgres)
	}
	a.router = service.NewRouter(h, logger)

	if cfg.GRPCAddress != "" {
		a.grpc, err = grpcserver.NewServer(logger, cfg.TrustedSubnet)
		if err != nil {
			return nil, err
		}
	}

	return a, nil
}

func (a *app) attachAudit() error {
	if a.cfg.AuditFile != "" {
		obs, err := repository.NewFileAuditObserver(a.cfg.AuditFile)
		if err != nil {
			return fmt.Errorf("audit file: %w", err)
		}
		a.audit.Attach(obs)
	}
	if a.cfg.AuditURL != "" {
		a.audit.Attach(repository.NewHTTPAuditObserver(a.cfg.AuditURL))
	}
	return nil
}

// run запускает серверы и фоновые задачи и ждёт отмены ctx или первой ошибки.
func (a *app) run(ctx context.Context) error {
	var grpcLis net.Listener
	if a.grpc != nil {
		lis, err := net.Listen("tcp", a.cfg.GRPCAddress)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		grpcLis = lis
	}

	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{Addr: a.cfg.Address.String(), Handler: a.router}
	g.Go(func() error {
		a.logger.Info("HTTP server started", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if grpcLis != nil {
		a.grpc.SetServing(true)
		g.Go(func() error {
			a.logger.Info("gRPC server started", zap.String("address", grpcLis.Addr().String()))
			return a.grpc.Serve(grpcLis)
		})
		g.Go(func() error {
			<-ctx.Done()
			a.grpc.SetServing(false)
			a.grpc.GracefulStop()
			return nil
		})
	}

	for _, task := range a.tasks() {
		task := task
		g.Go(func() error { return task.Start(ctx) })
	}
	if a.forwarder != nil {
		g.Go(func() error { return a.forwarder.Run(ctx) })
	}

	err := g.Wait()
	a.close()
	return err
}

// tasks возвращает периодические задачи сохранения.
func (a *app) tasks() []service.PeriodicTask {
	var tasks []service.PeriodicTask
	if a.cfg.StoreInterval > 0 && a.cfg.StoreFile != "" {
		tasks = append(tasks, service.PeriodicTask{
			Name:     "file",
			Interval: a.cfg.StoreInterval,
			Logger:   a.logger,
			Run: func(context.Context) error {
				return repository.SaveMetricsToFile(a.storage, a.cfg.StoreFile)
			},
		})
	}
	if a.postgres != nil {
		interval := a.cfg.StoreInterval
		if interval <= 0 {
			interval = time.Second
		}
		tasks = append(tasks, service.PeriodicTask{
			Name:     "postgres",
			Interval: interval,
			Logger:   a.logger,
			Run: func(ctx context.Context) error {
				return a.postgres.Sync(ctx, a.storage)
			},
		})
	}
	return tasks
}

func (a *app) close() {
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			a.logger.Warn("Failed to close Kafka writer", zap.Error(err))
		}
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	a.logger.Info("Collector stopped")
}
