package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jtjeruta/desktop-ims-sub001/internal/application"
	"github.com/jtjeruta/desktop-ims-sub001/internal/config"
	imsmongo "github.com/jtjeruta/desktop-ims-sub001/internal/infrastructure/mongodb"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/logging"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/metrics"
	pkgmongo "github.com/jtjeruta/desktop-ims-sub001/pkg/mongodb"
)

const serviceName = "ims-api"

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config file")
	flag.Parse()

	logger := logging.New(logging.DefaultConfig(serviceName))
	logger.SetDefault()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoCfg := pkgmongo.DefaultConfig()
	mongoCfg.URI = cfg.MongoDB.URI
	mongoCfg.Database = cfg.MongoDB.Database
	mongoCfg.ReplicaSet = cfg.MongoDB.ReplicaSet
	mongoCfg.Username = cfg.MongoDB.Username
	mongoCfg.Password = cfg.MongoDB.Password
	mongoCfg.AuthDB = cfg.MongoDB.AuthDB
	if cfg.MongoDB.MaxPoolSize > 0 {
		mongoCfg.MaxPoolSize = cfg.MongoDB.MaxPoolSize
	}

	mongoClient, err := pkgmongo.NewClient(ctx, mongoCfg)
	if err != nil {
		logger.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			logger.Error("failed to close mongodb client", "error", err)
		}
	}()

	client := pkgmongo.NewCircuitBreakerClient(mongoClient, logger.Logger)
	m := metrics.New(metrics.DefaultConfig(serviceName))

	deps, err := buildServices(client, cfg, logger, m)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	router := setupRouter(deps, client, logger, m)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

// services bundles the wired use-case services for the router
type services struct {
	products       *application.ProductService
	warehouses     *application.WarehouseService
	vendors        *application.VendorService
	customers      *application.CustomerService
	purchaseOrders *application.OrderService
	salesOrders    *application.OrderService
	transfers      *application.TransferService
	movements      *application.MovementService
}

func buildServices(client *pkgmongo.CircuitBreakerClient, cfg *config.Config, logger *logging.Logger, m *metrics.Metrics) (*services, error) {
	productRepo, err := imsmongo.NewProductRepository(client)
	if err != nil {
		return nil, err
	}
	variantRepo, err := imsmongo.NewVariantRepository(client)
	if err != nil {
		return nil, err
	}
	warehouseRepo, err := imsmongo.NewWarehouseRepository(client)
	if err != nil {
		return nil, err
	}
	movementRepo, err := imsmongo.NewStockMovementRepository(client)
	if err != nil {
		return nil, err
	}
	purchaseRepo, err := imsmongo.NewPurchaseOrderRepository(client)
	if err != nil {
		return nil, err
	}
	salesRepo, err := imsmongo.NewSalesOrderRepository(client)
	if err != nil {
		return nil, err
	}
	vendorRepo := imsmongo.NewVendorRepository(client)
	customerRepo := imsmongo.NewCustomerRepository(client)

	tx := imsmongo.NewTxRunner(client)

	vendorSvc := application.NewVendorService(vendorRepo, logger)
	customerSvc := application.NewCustomerService(customerRepo, logger)
	orderCfg := application.OrderServiceConfig{DeleteRestocks: cfg.Order.DeleteRestocks}

	return &services{
		products:       application.NewProductService(productRepo, variantRepo, warehouseRepo, movementRepo, tx, logger, m),
		warehouses:     application.NewWarehouseService(warehouseRepo, productRepo, logger),
		vendors:        vendorSvc,
		customers:      customerSvc,
		purchaseOrders: application.NewOrderService(purchaseRepo, productRepo, warehouseRepo, movementRepo, vendorSvc, tx, orderCfg, logger, m),
		salesOrders:    application.NewOrderService(salesRepo, productRepo, warehouseRepo, movementRepo, customerSvc, tx, orderCfg, logger, m),
		transfers:      application.NewTransferService(productRepo, warehouseRepo, movementRepo, tx, logger, m),
		movements:      application.NewMovementService(movementRepo),
	}, nil
}
