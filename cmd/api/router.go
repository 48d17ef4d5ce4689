package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jtjeruta/desktop-ims-sub001/pkg/logging"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/metrics"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/middleware"
	pkgmongo "github.com/jtjeruta/desktop-ims-sub001/pkg/mongodb"
)

func setupRouter(deps *services, client *pkgmongo.CircuitBreakerClient, logger *logging.Logger, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	h := newHandlers(deps, logger)
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.POST("", h.createProduct)
			products.GET("", h.listProducts)
			products.GET("/:id", h.getProduct)
			products.PUT("/:id", h.updateProduct)
			products.DELETE("/:id", h.archiveProduct)
			products.POST("/:id/variants", h.addVariant)
			products.GET("/:id/movements", h.listMovements)
		}
		v1.DELETE("/variants/:id", h.removeVariant)

		warehouses := v1.Group("/warehouses")
		{
			warehouses.POST("", h.createWarehouse)
			warehouses.GET("", h.listWarehouses)
			warehouses.GET("/:id", h.getWarehouse)
			warehouses.PUT("/:id", h.renameWarehouse)
			warehouses.DELETE("/:id", h.deleteWarehouse)
			warehouses.PUT("/:id/stock", h.setWarehouseStock)
			warehouses.GET("/:id/stock/:productId", h.getWarehouseStockEntry)
		}

		vendors := v1.Group("/vendors")
		{
			vendors.POST("", h.createVendor)
			vendors.GET("", h.listVendors)
			vendors.GET("/:id", h.getVendor)
			vendors.PUT("/:id", h.updateVendor)
			vendors.DELETE("/:id", h.deleteVendor)
		}

		customers := v1.Group("/customers")
		{
			customers.POST("", h.createCustomer)
			customers.GET("", h.listCustomers)
			customers.GET("/:id", h.getCustomer)
			customers.PUT("/:id", h.updateCustomer)
			customers.DELETE("/:id", h.deleteCustomer)
		}

		registerOrderRoutes(v1.Group("/purchase-orders"), h, deps.purchaseOrders)
		registerOrderRoutes(v1.Group("/sales-orders"), h, deps.salesOrders)

		v1.POST("/transfers", h.transferStock)
	}

	return router
}

func registerOrderRoutes(g *gin.RouterGroup, h *handlers, svc orderService) {
	g.POST("", h.createOrder(svc))
	g.GET("", h.listOrders(svc))
	g.GET("/:id", h.getOrder(svc))
	g.PUT("/:id", h.updateOrder(svc))
	g.DELETE("/:id", h.deleteOrder(svc))
}
