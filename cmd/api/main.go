package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-streaming-store/internal/admin"
	"github.com/ariefcatur/go-streaming-store/internal/blog"
	"github.com/ariefcatur/go-streaming-store/internal/config"
	"github.com/ariefcatur/go-streaming-store/internal/feed"
	"github.com/ariefcatur/go-streaming-store/internal/httpx"
	kafkax "github.com/ariefcatur/go-streaming-store/internal/kafka"
	"github.com/ariefcatur/go-streaming-store/internal/postgres"
	"github.com/ariefcatur/go-streaming-store/internal/redisx"
	"github.com/ariefcatur/go-streaming-store/internal/shop"
	"github.com/ariefcatur/go-streaming-store/internal/support"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("api exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	if cfg.MigrateOnStart {
		if err := postgres.Migrate(cfg.PostgresDSN, logger); err != nil {
			return err
		}
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// Redis
	rdb, err := redisx.New(ctx, cfg.RedisAddr, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// Change feed: local delivery always, kafka fan-out to other instances when configured.
	listener := feed.NewListener(&redisx.Deduper{RDB: rdb, Service: cfg.KafkaGroup}, logger)
	publisher := feed.Fanout{&feed.LocalPublisher{Listener: listener}}
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, feed.TopicChanges, 1024, logger)
		prod.Start()
		publisher = append(publisher, &feed.KafkaPublisher{Producer: prod, Service: cfg.ServiceName})

		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroup, feed.TopicChanges, 2, logger)
		go func() {
			logger.Info("change feed consumer started", slog.String("group", cfg.KafkaGroup), slog.String("topic", feed.TopicChanges))
			if err := cons.Start(ctx, listener.Handle); err != nil {
				logger.Error("change feed consumer exited", slog.Any("error", err))
			}
		}()
	} else {
		logger.Info("KAFKA_BROKERS empty, change events stay in-process")
	}

	// Read models
	blogRepo := &blog.Repo{DB: db}
	blogSvc := blog.NewService(blogRepo, cfg.PageSize, cfg.PageCacheSize, cfg.PageCacheTTL, logger)
	listener.Register(blogSvc, blog.Tables...)
	go blogSvc.Run(ctx)

	shopRepo := &shop.Repo{DB: db}
	catalog := shop.NewCatalog(shopRepo, cfg.PageSize, cfg.WhatsAppPhone, logger)
	listener.Register(catalog, shop.Tables...)
	go catalog.Run(ctx)

	// Write side
	accounts := &shop.Accounts{Store: shopRepo, Publisher: publisher, Log: logger}
	purchases := &shop.Purchases{Store: shopRepo, Publisher: publisher, WhatsAppPhone: cfg.WhatsAppPhone, Log: logger}
	desk := &support.Service{Store: &support.Repo{DB: db}, Publisher: publisher, WhatsAppPhone: cfg.WhatsAppPhone, Log: logger}
	adminSvc := &admin.Service{Store: &admin.Repo{DB: db}, Tickets: desk, Publisher: publisher, Log: logger}
	gate := &admin.Gate{
		Verifier: admin.BcryptVerifier{Hash: cfg.AdminSecretHash},
		Tokens:   &admin.Tokens{Key: cfg.AdminTokenKey, TTL: cfg.AdminTokenTTL},
	}
	if cfg.AdminSecretHash == "" || len(cfg.AdminTokenKey) == 0 {
		logger.Warn("admin gate locked: ADMIN_SECRET_HASH or ADMIN_TOKEN_KEY not set")
	}

	// HTTP
	router := httpx.NewRouter(logger)
	(&httpx.BlogHandler{Blog: blogSvc, Log: logger}).Register(router)
	(&httpx.MediaHandler{Log: logger}).Register(router)
	(&httpx.StoreHandler{
		Catalog:     catalog,
		Blog:        blogSvc,
		Accounts:    accounts,
		Sessions:    &redisx.Sessions{RDB: rdb, TTL: cfg.SessionTTL},
		Purchases:   purchases,
		Idempotency: &redisx.Idempotency{RDB: rdb},
		Support:     desk,
		Log:         logger,
	}).Register(router)
	(&httpx.AdminHandler{Gate: gate, Admin: adminSvc, Tickets: desk, Log: logger}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("http shutdown", slog.Any("error", serr))
	}
	if prod != nil {
		prod.Close() // flush & close writer
		prod.WaitClosed()
	}
	return err
}
