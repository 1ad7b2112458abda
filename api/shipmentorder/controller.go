package shipmentorder

import (
	"net/http"

	"tms/api/response"
	orderapp "tms/application/shipmentorder"
	"tms/domain/shared"

	"github.com/gin-gonic/gin"
)

// Controller Shipment order controller
type Controller struct {
	orderService *orderapp.ApplicationService
}

// NewController Create shipment order controller
func NewController(orderService *orderapp.ApplicationService) *Controller {
	return &Controller{
		orderService: orderService,
	}
}

// RegisterRoutes Register shipment order routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	orderGroup := router.Group("/shipment-orders")
	{
		orderGroup.POST("", c.CreateShipmentOrder)
		orderGroup.GET("/:id", c.GetShipmentOrder)
	}
}

// CreateShipmentOrder Create a shipment order
func (c *Controller) CreateShipmentOrder(ctx *gin.Context) {
	var req orderapp.CreateShipmentOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "Invalid request parameters", http.StatusBadRequest)
		return
	}

	created, err := c.orderService.CreateShipmentOrder(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, created, "Shipment order created successfully")
}

// GetShipmentOrder Fetch one shipment order
func (c *Controller) GetShipmentOrder(ctx *gin.Context) {
	orderID, err := shared.ParseID(ctx.Param("id"))
	if err != nil {
		response.HandleError(ctx, err, "Shipment order ID must be a valid UUID", http.StatusBadRequest)
		return
	}

	found, err := c.orderService.GetShipmentOrder(ctx.Request.Context(), orderID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, found, "Shipment order retrieved successfully")
}
