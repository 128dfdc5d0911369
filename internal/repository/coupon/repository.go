package coupon

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	Upsert(ctx context.Context, coupon domain.Coupon) (*domain.Coupon, error)
}
