package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/server/http/dto"
)

// OrderHandler manages order read endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	ownerID := CurrentCustomerID(c)
	orders, err := h.facade.Orders(c.Request.Context(), ownerID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, dto.ToOrderResponse(o))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	ownerID := CurrentCustomerID(c)
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, ledger, err := h.facade.Order(c.Request.Context(), ownerID, orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderDetailResponse(*order, ledger))
}
