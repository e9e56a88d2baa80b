package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/VinitPatil01/BookStoreApp/internal/config"
	kafkax "github.com/VinitPatil01/BookStoreApp/internal/kafka"
	"github.com/VinitPatil01/BookStoreApp/internal/orders"
	"github.com/VinitPatil01/BookStoreApp/internal/redisx"
	"github.com/VinitPatil01/BookStoreApp/internal/statuscache"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &statuscache.Service{
		Cache: redisx.Cache{R: rdb},
		Log:   slog.Default(),
	}

	topics := []string{
		orders.TopicOrderPlaced,
		orders.TopicOrderCancelled,
		orders.TopicOrderStatusChanged,
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, topics, cfg.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("status cache consumer started",
			"group", cfg.ConsumerGroup, "topics", topics, "workers", cfg.Workers)
		return cons.Start(gctx, svc.HandleOrderEvent)
	})

	if err := g.Wait(); err != nil {
		slog.Error("consumer exited", "error", err)
		os.Exit(1)
	}
	slog.Info("worker stopped")
}
