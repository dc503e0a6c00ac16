package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/server/http/dto"
	"github.com/luisbfsousa/mect-sub001/internal/usecase"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed order payload")
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), CurrentIdentity(c), toCreateOrderInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentIdentity(c))
	if err != nil {
		writeError(c, err)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respond(c)(h.facade.Order(c.Request.Context(), CurrentIdentity(c), id))
}

// ConfirmPayment handles POST /api/orders/:id/confirm-payment.
func (h *OrderHandler) ConfirmPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respond(c)(h.facade.ConfirmPayment(c.Request.Context(), CurrentIdentity(c), id))
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respond(c)(h.facade.CancelOrder(c.Request.Context(), CurrentIdentity(c), id))
}

// Deliver handles POST /api/orders/:id/deliver.
func (h *OrderHandler) Deliver(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.DeliverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed delivery payload")
		return
	}
	h.respond(c)(h.facade.MarkAsDelivered(c.Request.Context(), CurrentIdentity(c), id, req.Confirm))
}

// Ship handles POST /api/staff/orders/:id/ship.
func (h *OrderHandler) Ship(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ShipRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed shipping payload")
			return
		}
	}
	h.respond(c)(h.facade.MarkAsShipped(c.Request.Context(), id, req.TrackingNumber, req.ShippingProvider))
}

// UpdateStatus handles PUT /api/staff/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed status payload")
		return
	}
	h.respond(c)(h.facade.UpdateOrderStatus(c.Request.Context(), id, model.OrderStatus(req.Status)))
}

// AdminUpdate handles PATCH /api/admin/orders/:id.
func (h *OrderHandler) AdminUpdate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AdminOrderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed update payload")
		return
	}
	h.respond(c)(h.facade.AdminUpdateOrder(c.Request.Context(), id, usecase.AdminUpdate{
		Status:           model.OrderStatus(req.Status),
		PaymentConfirmed: req.PaymentConfirmed,
		TrackingNumber:   req.TrackingNumber,
		ShippingProvider: req.ShippingProvider,
		AdminNotes:       req.AdminNotes,
	}))
}

func (h *OrderHandler) respond(c *gin.Context) func(*model.Order, error) {
	return func(order *model.Order, err error) {
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(*order))
	}
}

func toCreateOrderInput(req dto.CreateOrderRequest) usecase.CreateOrderInput {
	lines := make([]usecase.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, usecase.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: item.Price})
	}

	var billing *model.Address
	if req.BillingAddress != nil {
		addr := toAddress(*req.BillingAddress)
		billing = &addr
	}

	return usecase.CreateOrderInput{
		Items: lines,
		Shipping: usecase.ShippingInfo{
			ShippingAddress: toAddress(req.ShippingAddress),
			BillingAddress:  billing,
			ShippingCost:    req.ShippingCost,
			TaxAmount:       req.TaxAmount,
		},
		ClientTotal: req.TotalAmount,
		Notes:       req.Notes,
	}
}

func toAddress(p dto.AddressPayload) model.Address {
	return model.Address{
		FullName:   p.FullName,
		Line1:      p.Line1,
		Line2:      p.Line2,
		City:       p.City,
		PostalCode: p.PostalCode,
		Country:    p.Country,
		Phone:      p.Phone,
	}
}

func toAddressPayload(a model.Address) dto.AddressPayload {
	return dto.AddressPayload{
		FullName:   a.FullName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return dto.OrderResponse{
		ID:                    order.ID,
		CustomerID:            order.CustomerID,
		Status:                string(order.Status),
		TotalAmount:           order.TotalAmount,
		TaxAmount:             order.TaxAmount,
		ShippingCost:          order.ShippingCost,
		ShippingAddress:       toAddressPayload(order.ShippingAddress),
		BillingAddress:        toAddressPayload(order.BillingAddress),
		TrackingNumber:        order.TrackingNumber,
		ShippingProvider:      order.ShippingProvider,
		EstimatedDeliveryDate: order.EstimatedDeliveryDate,
		PaymentConfirmedAt:    order.PaymentConfirmedAt,
		Notes:                 order.CustomerNotes,
		AdminNotes:            order.AdminNotes,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
		Items:                 items,
	}
}
