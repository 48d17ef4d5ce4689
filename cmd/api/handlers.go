package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jtjeruta/desktop-ims-sub001/internal/application"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/api"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/logging"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/middleware"
)

// orderService is the shared surface of the purchase and sales order
// services, so one handler set serves both route groups
type orderService interface {
	Create(ctx context.Context, cmd application.CreateOrderCommand) (*application.OrderDTO, error)
	Update(ctx context.Context, id string, cmd application.UpdateOrderCommand) (*application.OrderDTO, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*application.OrderDTO, error)
	List(ctx context.Context, page api.PageRequest) (*api.PageResponse[application.OrderDTO], error)
}

type handlers struct {
	deps   *services
	logger *logging.Logger
}

func newHandlers(deps *services, logger *logging.Logger) *handlers {
	return &handlers{deps: deps, logger: logger.WithComponent("http-handlers")}
}

func (h *handlers) respond(c *gin.Context, status int, body any, err error) {
	if err != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithError(err)
		return
	}
	if body == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(status, body)
}

// Products

func (h *handlers) createProduct(c *gin.Context) {
	var cmd application.CreateProductCommand
	if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}
	dto, err := h.deps.products.Create(c.Request.Context(), cmd)
	h.respond(c, http.StatusCreated, dto, err)
}

func (h *handlers) listProducts(c *gin.Context) {
	includeArchived := c.Query("includeArchived") == "true"
	page, err := h.deps.products.List(c.Request.Context(), includeArchived, api.ParsePagination(c))
	h.respond(c, http.StatusOK, page, err)
}

func (h *handlers) getProduct(c *gin.Context) {
	dto, err := h.deps.products.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, dto, err)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var cmd application.UpdateProductCommand
	if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}
	dto, err := h.deps.products.Update(c.Request.Context(), c.Param("id"), cmd)
	h.respond(c, http.StatusOK, dto, err)
}

func (h *handlers) archiveProduct(c *gin.Context) {
	err := h.deps.products.Archive(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusNoContent, nil, err)
}

func (h *handlers) addVariant(c *gin.Context) {
	var cmd application.CreateVariantCommand
	if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}
	dto, err := h.deps.products.AddVariant(c.Request.Context(), c.Param("id"), cmd)
	h.respond(c, http.StatusCreated, dto, err)
}

func (h *handlers) removeVariant(c *gin.Context) {
	err := h.deps.products.RemoveVariant(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusNoContent, nil, err)
}

func (h *handlers) listMovements(c *gin.Context) {
	dtos, err := h.deps.movements.ListByProduct(c.Request.Context(), c.Param("id"), api.ParsePagination(c))
	h.respond(c, http.StatusOK, dtos, err)
}

// Warehouses

func (h *handlers) createWarehouse(c *gin.Context) {
	var cmd application.CreateWarehouseCommand
	if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}
	dto, err := h.deps.warehouses.Create(c.Request.Context(), cmd)
	h.respond(c, http.StatusCreated, dto, err)
}

func (h *handlers) listWarehouses(c *gin.Context) {
	dtos, err := h.deps.warehouses.List(c.Request.Context(), api.ParsePagination(c))
	h.respond(c, http.StatusOK, dtos, err)
}

func (h *handlers) getWarehouse(c *gin.Context) {
	dto, err := h.deps.warehouses.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, dto, err)
}

func (h *handlers) renameWarehouse(c *gin.Context) {
	var cmd application.UpdateWarehouseCommand
	if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}
	dto, err := h.deps.warehouses.Rename(c.Request.Context(), c.Param("id"), cmd)
	h.respond(c, http.StatusOK, dto, err)
}

func (h *handlers) deleteWarehouse(c *gin.Context) {
	err := h.deps.warehouses.Delete(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusNoContent, nil, err)
}

func (h *handlers) getWarehouseStockEntry(c *gin.Context) {
	dto, err := h.deps.warehouses.GetStockEntry(c.Request.Context(), c.Param("id"), c.Param("productId"))
	h.respond(c, http.StatusOK, dto, err)
}

func (h *handlers) setWarehouseStock(c *gin.Context) {
	var cmd application.SetWarehouseStockCommand
	if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}
	dto, err := h.deps.warehouses.SetStock(c.Request.Context(), c.Param("id"), cmd)
	h.respond(c, http.StatusOK, dto, err)
}

// Vendors

func (h *handlers) createVendor(c *gin.Context) {
	var cmd application.CreateVendorCommand
	if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}
	dto, err := h.deps.vendors.Create(c.Request.Context(), cmd)
	h.respond(c, http.StatusCreated, dto, err)
}

func (h *handlers) listVendors(c *gin.Context) {
	dtos, err := h.deps.vendors.List(c.Request.Context(), api.ParsePagination(c))
	h.respond(c, http.StatusOK, dtos, err)
}

func (h *handlers) getVendor(c *gin.Context) {
	dto, err := h.deps.vendors.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, dto, err)
}

func (h *handlers) updateVendor(c *gin.Context) {
	var cmd application.UpdateVendorCommand
	if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}
	dto, err := h.deps.vendors.Update(c.Request.Context(), c.Param("id"), cmd)
	h.respond(c, http.StatusOK, dto, err)
}

func (h *handlers) deleteVendor(c *gin.Context) {
	err := h.deps.vendors.Delete(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusNoContent, nil, err)
}

// Customers

func (h *handlers) createCustomer(c *gin.Context) {
	var cmd application.CreateCustomerCommand
	if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}
	dto, err := h.deps.customers.Create(c.Request.Context(), cmd)
	h.respond(c, http.StatusCreated, dto, err)
}

func (h *handlers) listCustomers(c *gin.Context) {
	dtos, err := h.deps.customers.List(c.Request.Context(), api.ParsePagination(c))
	h.respond(c, http.StatusOK, dtos, err)
}

func (h *handlers) getCustomer(c *gin.Context) {
	dto, err := h.deps.customers.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, dto, err)
}

func (h *handlers) updateCustomer(c *gin.Context) {
	var cmd application.UpdateCustomerCommand
	if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}
	dto, err := h.deps.customers.Update(c.Request.Context(), c.Param("id"), cmd)
	h.respond(c, http.StatusOK, dto, err)
}

func (h *handlers) deleteCustomer(c *gin.Context) {
	err := h.deps.customers.Delete(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusNoContent, nil, err)
}

// Orders

func (h *handlers) createOrder(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd application.CreateOrderCommand
		if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
			middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
			return
		}
		dto, err := svc.Create(c.Request.Context(), cmd)
		h.respond(c, http.StatusCreated, dto, err)
	}
}

func (h *handlers) listOrders(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.List(c.Request.Context(), api.ParsePagination(c))
		h.respond(c, http.StatusOK, page, err)
	}
}

func (h *handlers) getOrder(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		dto, err := svc.Get(c.Request.Context(), c.Param("id"))
		h.respond(c, http.StatusOK, dto, err)
	}
}

func (h *handlers) updateOrder(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd application.UpdateOrderCommand
		if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
			middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
			return
		}
		dto, err := svc.Update(c.Request.Context(), c.Param("id"), cmd)
		h.respond(c, http.StatusOK, dto, err)
	}
}

func (h *handlers) deleteOrder(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.Delete(c.Request.Context(), c.Param("id"))
		h.respond(c, http.StatusNoContent, nil, err)
	}
}

// Transfers

func (h *handlers) transferStock(c *gin.Context) {
	var cmd application.TransferStockCommand
	if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
		middleware.NewErrorResponder(c, h.logger.Logger).RespondWithAppError(appErr)
		return
	}
	dto, err := h.deps.transfers.Transfer(c.Request.Context(), cmd)
	h.respond(c, http.StatusOK, dto, err)
}
