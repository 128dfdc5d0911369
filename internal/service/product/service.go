package product

import (
	"context"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/events"
	productrepo "storefront/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, sku string) (*domain.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetBySKU(ctx, sku)
}

// PageViewPayload is the PRODUCT_PAGE_VIEW payload a storefront page emits
// for p. Catalog products carry a single price.
func PageViewPayload(p domain.Product) events.ProductPayload {
	price := events.Money{Value: float64(p.PriceCents) / 100, Currency: p.Currency}
	bounds := events.PriceBounds{FinalPrice: price, RegularPrice: price}
	return events.ProductPayload{
		ID:           events.ID(p.ID),
		Name:         p.Name,
		SKU:          p.SKU,
		TypeID:       "SimpleProduct",
		CurrencyCode: p.Currency,
		PriceRange: events.PriceRange{
			MinimumPrice: &bounds,
			MaximumPrice: bounds,
		},
		URLKey:   p.URLKey,
		ImageURL: p.ImageURL,
	}
}
