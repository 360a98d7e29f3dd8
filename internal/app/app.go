// Package app wires the pricing services into the API server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/petrobahia/internal/catalog"
	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/order"
	"github.com/xenking/petrobahia/internal/domain/pricing"
	"github.com/xenking/petrobahia/internal/handler"
	"github.com/xenking/petrobahia/internal/notify"
	"github.com/xenking/petrobahia/internal/repository"
	"github.com/xenking/petrobahia/internal/storage/memory"
	"github.com/xenking/petrobahia/pkg/health"
	"github.com/xenking/petrobahia/pkg/httpmiddleware"
)

// deps are the collaborators of the domain services.
type deps struct {
	customers customer.Repository
	orders    order.Repository
	catalog   pricing.Provider
	resolver  *pricing.Resolver
	close     func()
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.Bool("postgres", cfg.DatabaseURL != ""),
		zap.String("pricing_file", cfg.PricingFile),
	)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	var (
		d   *deps
		err error
	)
	if cfg.DatabaseURL != "" {
		d, err = postgresDeps(ctx, lg, cfg, healthSvc)
	} else {
		d, err = memoryDeps(lg, cfg)
	}
	if err != nil {
		return err
	}
	defer d.close()
	healthSvc.AddReadinessCheck("catalog", 5*time.Second, catalog.Check(d.catalog))

	// Domain services.
	notifier := notify.NewLogger(lg, cfg.HighValue())
	customerService := customer.NewService(d.customers, notifier)
	orderService := order.NewService(d.catalog, d.resolver, d.orders, notifier)

	h, err := handler.NewHandler(customerService, orderService, d.catalog, d.resolver, m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	mux := http.NewServeMux()
	healthSvc.Register(mux)
	h.Register(mux)
	routeFinder := httpmiddleware.MakeRouteFinder(mux)

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("petrobahia-api", routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// postgresDeps connects to PostgreSQL, applies the schema and, when a pricing
// file is configured, upserts its tables before serving from the database.
func postgresDeps(ctx context.Context, lg *zap.Logger, cfg *Config, healthSvc *health.Health) (*deps, error) {
	pool, err := repository.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}
	if err := repository.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))

	products := repository.NewProductRepository(pool)
	coupons := repository.NewCouponRepository(pool)

	if cfg.PricingFile != "" {
		tables, err := catalog.LoadFile(cfg.PricingFile)
		if err != nil {
			pool.Close()
			return nil, err
		}
		if err := repository.SaveTables(ctx, products, coupons, tables); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "save pricing file")
		}
		lg.Info("Pricing file saved",
			zap.Int("products", tables.Catalog.Len()),
			zap.Int("coupons", len(tables.Resolver.Rules())),
		)
	}

	resolver, err := coupons.Resolver(ctx)
	if err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "load coupon table")
	}
	return &deps{
		customers: repository.NewCustomerRepository(pool),
		orders:    repository.NewOrderRepository(pool),
		catalog:   catalog.NewCached(products.Catalog, cfg.CatalogTTL),
		resolver:  resolver,
		close:     pool.Close,
	}, nil
}

// memoryDeps keeps customers and orders in memory and prices from the
// pricing file or the built-in tables.
func memoryDeps(lg *zap.Logger, cfg *Config) (*deps, error) {
	store, err := memory.New()
	if err != nil {
		return nil, errors.Wrap(err, "create memory store")
	}

	tables := catalog.Defaults()
	if cfg.PricingFile != "" {
		if tables, err = catalog.LoadFile(cfg.PricingFile); err != nil {
			return nil, err
		}
	}
	lg.Warn("No database configured, customers and orders are kept in memory")

	return &deps{
		customers: store,
		orders:    store,
		catalog:   catalog.NewStatic(tables.Catalog),
		resolver:  tables.Resolver,
		close:     func() {},
	}, nil
}
