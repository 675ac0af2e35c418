package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/orders"
	"storefront/pkg/ctxmanage"
	"storefront/pkg/logkey"
)

var orderMessages = map[string]string{
	"Items.required":    "Product list is required",
	"Items.min":         "Product list is required",
	"Quantity.required": "Quantity must be at least 1",
	"Quantity.gt":       "Quantity must be at least 1",
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var req orders.NewOrder
	if !bindJSON(c, &req) {
		return
	}
	if !h.checkStruct(c, req, orderMessages) {
		return
	}

	order, err := h.o.PlaceOrder(c.Request.Context(), c.Param("email"), req)
	if err != nil {
		writeError(c, "placing order failed", err)
		return
	}

	slog.Info("order placed", slog.String(logkey.TraceID, traceId), slog.Int64(logkey.OrderID, order.ID),
		slog.String("Total", order.Total.String()))
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "pedido": order})
}

func (h *Handler) ListOrders(c *gin.Context) {
	list, err := h.o.ListOrdersFor(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeError(c, "listing orders failed", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
