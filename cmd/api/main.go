package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/VinitPatil01/BookStoreApp/internal/books"
	"github.com/VinitPatil01/BookStoreApp/internal/cart"
	"github.com/VinitPatil01/BookStoreApp/internal/config"
	"github.com/VinitPatil01/BookStoreApp/internal/httpx"
	kafkax "github.com/VinitPatil01/BookStoreApp/internal/kafka"
	"github.com/VinitPatil01/BookStoreApp/internal/orders"
	"github.com/VinitPatil01/BookStoreApp/internal/postgres"
	"github.com/VinitPatil01/BookStoreApp/internal/redisx"
	"github.com/VinitPatil01/BookStoreApp/internal/users"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		slog.Error("schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)

	userRepo := &users.Repo{DB: db}
	bookRepo := &books.Repo{DB: db}
	cartRepo := &cart.Repo{DB: db}

	svc := &orders.Service{
		Store:  orders.NewPGStore(db),
		Books:  bookRepo,
		Users:  userRepo,
		Cart:   cartRepo,
		Events: prod,
		Log:    slog.Default(),
		Name:   cfg.ServiceName,
	}

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Svc: svc, Users: userRepo, Cache: redisx.Cache{R: rdb}}).Register(router)
	(&httpx.BooksHandler{Repo: bookRepo}).Register(router)
	(&httpx.CartHandler{Cart: cartRepo, Users: userRepo}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // stop intake, flush buffered events
	cancel()
	prod.WaitClosed()
}
