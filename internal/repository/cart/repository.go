package cart

import (
	"context"

	"storefront/internal/domain"
)

type CreateCartInput struct {
	Quote    string
	Currency string
}

// Repository is the cart backend: every call here stands for one storefront
// mutation or query.
type Repository interface {
	Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	AddLineItem(ctx context.Context, cartID string, product domain.Product, quantity int) error
	ChangeLineItemQuantity(ctx context.Context, cartID, lineItemID string, quantity int) error
	ApplyCoupon(ctx context.Context, cartID, couponCode string) error
	RemoveCoupon(ctx context.Context, cartID string) error
}
