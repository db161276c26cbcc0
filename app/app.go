package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ostanin/lending-service/config"
	"github.com/ostanin/lending-service/internal/handler"
	"github.com/ostanin/lending-service/internal/notifier"
	"github.com/ostanin/lending-service/internal/repository"
	"github.com/ostanin/lending-service/internal/server"
	"github.com/ostanin/lending-service/internal/service"
	"github.com/ostanin/lending-service/migrations"
	"github.com/ostanin/lending-service/pkg/kafka"
	"github.com/ostanin/lending-service/pkg/logger"
	"github.com/ostanin/lending-service/pkg/postgres"
)

func Run(cfg config.Config) error {
	log := logger.NewLogger(cfg.Log, "lending")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %v", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo init %v", err)
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return fmt.Errorf("kafka producer %v", err)
	}
	ntf := notifier.New(producer, cfg.Kafka.Topic, log)

	svc := service.New(repo, ntf, cfg.Policy, log)
	h := handler.New(svc, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sweepCtx, stopSweeps := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(sweepCtx)
	g.Go(func() error {
		return sweepLoop(gctx, log, cfg.Policy.ExpireSweepInterval, func(ctx context.Context, now time.Time) error {
			n, err := svc.ExpireReservationsSweep(ctx, now)
			if n > 0 {
				log.Info("reservations expired", zap.Int64("count", n))
			}
			return err
		})
	})
	g.Go(func() error {
		return sweepLoop(gctx, log, cfg.Policy.ClaimSweepInterval, func(ctx context.Context, now time.Time) error {
			n, err := svc.ClaimSweep(ctx, now)
			if n > 0 {
				log.Info("claim windows lapsed, next in line fulfilled", zap.Int("count", n))
			}
			return err
		})
	})
	g.Go(func() error {
		return sweepLoop(gctx, log, cfg.Policy.OverdueSweepInterval, func(ctx context.Context, now time.Time) error {
			n, err := svc.OverdueSweep(ctx, now)
			if n > 0 {
				log.Info("borrowings marked overdue", zap.Int64("count", n))
			}
			return err
		})
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	stopSweeps()
	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error("sweeps stop", zap.Error(err))
	}
	if err := producer.Close(); err != nil {
		log.Error("producer.Close", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return nil
}

// sweepLoop runs fn once per interval until ctx is cancelled. Sweep
// failures are transient by nature; the loop keeps going.
func sweepLoop(ctx context.Context, log *zap.Logger, interval time.Duration, fn func(ctx context.Context, now time.Time) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := fn(ctx, time.Now().UTC()); err != nil && ctx.Err() == nil {
				log.Error("sweep", zap.Error(err))
			}
		}
	}
}
