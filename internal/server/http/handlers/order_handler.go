package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// OrderHandler manages customer order endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.MyOrders(c.Request.Context(), CurrentSession(c), statusFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	details, err := h.facade.OrderDetails(c.Request.Context(), CurrentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*details))
}

// MarkReceived handles PUT /api/orders/:id/received.
func (h *OrderHandler) MarkReceived(c *gin.Context) {
	res, err := h.facade.MarkReceived(c.Request.Context(), CurrentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransitionResponse("order marked as received", res))
}

// AdminOrderHandler manages back-office order endpoints.
type AdminOrderHandler struct {
	facade AdminFacade
}

// NewAdminOrderHandler constructs AdminOrderHandler.
func NewAdminOrderHandler(facade AdminFacade) *AdminOrderHandler {
	return &AdminOrderHandler{facade: facade}
}

// List handles GET /api/admin/orders.
func (h *AdminOrderHandler) List(c *gin.Context) {
	orders, err := h.facade.AllOrders(c.Request.Context(), CurrentSession(c), statusFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Get handles GET /api/admin/orders/:id.
func (h *AdminOrderHandler) Get(c *gin.Context) {
	details, err := h.facade.OrderDetails(c.Request.Context(), CurrentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*details))
}

// UpdateStatus handles PUT /api/admin/orders/:id/status.
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	res, err := h.facade.ChangeStatus(c.Request.Context(), CurrentSession(c), c.Param("id"), modelStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransitionResponse("order status updated", res))
}

// Delete handles DELETE /api/admin/orders/:id.
func (h *AdminOrderHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteOrder(c.Request.Context(), CurrentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "order deleted"})
}
