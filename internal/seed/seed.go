package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

type productUpserter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type couponUpserter interface {
	Upsert(ctx context.Context, coupon domain.Coupon) (*domain.Coupon, error)
}

var products = []domain.Product{
	{
		SKU:         "343g3434t",
		Name:        "Selena Pants",
		URLKey:      "selena-pants",
		Description: "Relaxed fit pants for demo purposes",
		PriceCents:  7800,
		Currency:    "USD",
		ImageURL:    "https://images.example.com/selena-pants.jpg",
	},
	{
		SKU:         "SKU-DEMO-TSHIRT",
		Name:        "Demo T-Shirt",
		URLKey:      "demo-t-shirt",
		Description: "Soft cotton tee for demo purposes",
		PriceCents:  1999,
		Currency:    "USD",
	},
	{
		SKU:         "SKU-DEMO-MUG",
		Name:        "Demo Mug",
		URLKey:      "demo-mug",
		Description: "Ceramic mug with demo logo",
		PriceCents:  1299,
		Currency:    "USD",
	},
}

var coupons = []domain.Coupon{
	{Code: "my-coupon", Permyriad: 1000, Active: true},
	{Code: "expired", Permyriad: 2500, Active: false},
}

// Apply inserts basic seed data for manual testing. Upserts keep it idempotent.
func Apply(ctx context.Context, productRepo productUpserter, couponRepo couponUpserter) error {
	for _, p := range products {
		if _, err := productRepo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}
	for _, c := range coupons {
		if _, err := couponRepo.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert coupon %s: %w", c.Code, err)
		}
	}
	return nil
}
