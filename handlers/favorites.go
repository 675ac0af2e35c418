package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/pkg/apperr"
)

type favoriteRequest struct {
	ProductID int64 `json:"produtoId" validate:"required,gt=0"`
}

var favoriteMessages = map[string]string{
	"required": "Product id is required",
	"gt":       "Product id is required",
}

func (h *Handler) AddFavorite(c *gin.Context) {
	var req favoriteRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.checkStruct(c, req, favoriteMessages) {
		return
	}

	favorites, err := h.u.AddFavorite(c.Request.Context(), c.Param("email"), req.ProductID)
	if err != nil {
		writeError(c, "adding favorite failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product added to favorites", "favoritos": favorites})
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	id, ok := int64Param(c, "produtoId")
	if !ok {
		writeError(c, "invalid product id", apperr.New(apperr.ErrNotFound, "Product is not in favorites"))
		return
	}

	favorites, err := h.u.RemoveFavorite(c.Request.Context(), c.Param("email"), id)
	if err != nil {
		writeError(c, "removing favorite failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed from favorites", "favoritos": favorites})
}
