package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/server/http/dto"
	"github.com/luisbfsousa/mect-sub001/internal/usecase"
)

// CatalogHandler manages product endpoints.
type CatalogHandler struct {
	facade CatalogFacade
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// Create handles POST /api/admin/products.
func (h *CatalogHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed product payload")
		return
	}
	product, err := h.facade.CreateProduct(c.Request.Context(), usecase.NewProduct{
		Name:              req.Name,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(product))
}

// SetStock handles PUT /api/staff/products/:id/stock.
func (h *CatalogHandler) SetStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StockQuantity == nil {
		badRequest(c, "stockQuantity is required")
		return
	}
	product, err := h.facade.SetStock(c.Request.Context(), id, *req.StockQuantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Price:             p.Price,
		StockQuantity:     p.StockQuantity,
		LowStockThreshold: p.Threshold(),
		UpdatedAt:         p.UpdatedAt,
	}
}
