package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/nile-pay/nile_pay/internal/cache"
	"github.com/nile-pay/nile_pay/internal/config"
	"github.com/nile-pay/nile_pay/internal/events"
	"github.com/nile-pay/nile_pay/internal/ledger"
	"github.com/nile-pay/nile_pay/internal/metrics"
	"github.com/nile-pay/nile_pay/internal/provisioning"
	"github.com/nile-pay/nile_pay/internal/routes"
	"github.com/nile-pay/nile_pay/internal/wallet"
)

// Server wraps the Fiber application, the provisioning subscriber and shared
// dependencies.
type Server struct {
	app        *fiber.App
	cfg        config.Config
	subscriber *events.Subscriber
}

// New wires storage, cache, eventing and HTTP routing. With a nil db or redis
// client (dev mode only) the in-memory and logging fallbacks are used.
func New(cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, logger *slog.Logger) (*Server, error) {
	m := metrics.New(prometheus.DefaultRegisterer)

	var repo wallet.Repository
	var entries ledger.Store
	if db != nil {
		repo = wallet.NewPostgresRepository(db)
		entries = ledger.NewPostgresStore(db)
	} else {
		mem := ledger.NewMemoryStore()
		repo = wallet.NewMemoryRepository(mem)
		entries = mem
	}

	var balances wallet.BalanceCache
	var publisher events.Publisher
	if rdb != nil {
		balances = cache.NewRedisBalanceCache(rdb, cfg.BalanceCacheTTL, logger)
		publisher = events.NewStreamPublisher(rdb, cfg.WalletStream)
	} else {
		balances = cache.NopBalanceCache{}
		publisher = events.NewLogPublisher(logger)
	}

	walletSvc := wallet.NewService(repo, entries, balances, publisher, m, logger)
	consumer := provisioning.NewConsumer(repo, publisher, cfg.DefaultCurrency, m, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	if err := routes.Setup(app, routes.Deps{
		Cfg:     cfg,
		DB:      db,
		Cache:   rdb,
		Logger:  logger,
		Wallets: wallet.NewHandler(walletSvc),
	}); err != nil {
		return nil, err
	}

	srv := &Server{app: app, cfg: cfg}
	if rdb != nil {
		srv.subscriber = events.NewSubscriber(rdb, cfg.UserStream, cfg.ConsumerGroup, cfg.ConsumerName, consumer.HandleMessage, logger)
	}
	return srv, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// RunConsumer blocks consuming user events until the context is cancelled.
// Without Redis (dev mode) it returns immediately.
func (s *Server) RunConsumer(ctx context.Context) error {
	if s.subscriber == nil {
		return nil
	}
	return s.subscriber.Run(ctx)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
