package httpserver

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/events"
	productsvc "storefront/internal/service/product"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type productService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, sku string) (*domain.Product, error)
}

type productResponse struct {
	Product  domain.Product `json:"product"`
	PageView events.Event   `json:"pageView"`
}

type productHandlers struct {
	svc    productService
	logger *zap.Logger
}

func (h *productHandlers) list(c *gin.Context) {
	products, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list products failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"results": products, "count": len(products)})
}

// get returns the product with the PRODUCT_PAGE_VIEW event its page emits.
func (h *productHandlers) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("sku"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}
		h.logger.Error("get product failed", zap.String("sku", c.Param("sku")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	ev, err := events.New(events.ProductPageView, productsvc.PageViewPayload(*p))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, productResponse{Product: *p, PageView: ev})
}
