package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/pkg/apperr"
)

func (h *Handler) ListProducts(c *gin.Context) {
	list, err := h.p.ListProducts(c.Request.Context())
	if err != nil {
		writeError(c, "listing products failed", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		writeError(c, "invalid product id", apperr.New(apperr.ErrNotFound, "Product not found"))
		return
	}
	product, err := h.p.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, "fetching product failed", err)
		return
	}
	c.JSON(http.StatusOK, product)
}
