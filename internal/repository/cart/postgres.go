package cart

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (quote_id, currency, state)
VALUES ($1, $2, 'active')
RETURNING id::text, quote_id, currency, state, created_at
`
	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, q, in.Quote, in.Currency).Scan(
		&cart.ID,
		&cart.Quote,
		&cart.Currency,
		&cart.State,
		&cart.CreatedAt,
	); err != nil {
		r.logger.Warn("cart repo: create failed", zap.Error(err))
		return nil, err
	}
	cart.Items = []domain.CartItem{}
	r.logger.Debug("cart repo: created", zap.String("cart_id", cart.ID))
	return &cart, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const cartQuery = `
SELECT c.id::text, c.quote_id, c.currency, c.coupon_code, COALESCE(cp.permyriad, 0), c.state, c.created_at
FROM carts c
LEFT JOIN coupons cp ON cp.code = c.coupon_code AND cp.active
WHERE c.id = $1
`
	var cart domain.Cart
	var permyriad int
	err := r.pool.QueryRow(ctx, cartQuery, id).Scan(
		&cart.ID,
		&cart.Quote,
		&cart.Currency,
		&cart.AppliedCoupon,
		&permyriad,
		&cart.State,
		&cart.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT id::text, product_id::text, sku, name, quantity, unit_price_cents, currency, created_at
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.SKU,
			&item.Name,
			&item.Quantity,
			&item.UnitPriceCents,
			&item.Currency,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cart.ComputePrices(permyriad)
	return &cart, nil
}

func (r *postgresRepo) AddLineItem(ctx context.Context, cartID string, product domain.Product, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockActiveCart(ctx, tx, cartID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, sku, name, quantity, unit_price_cents, currency)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_lines.quantity + EXCLUDED.quantity
`, cartID, product.ID, product.SKU, product.Name, quantity, product.PriceCents, product.Currency); err != nil {
		r.logger.Warn("cart repo: add line failed", zap.String("cart_id", cartID), zap.String("sku", product.SKU), zap.Error(err))
		return err
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) ChangeLineItemQuantity(ctx context.Context, cartID, lineItemID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockActiveCart(ctx, tx, cartID); err != nil {
		return err
	}

	if quantity <= 0 {
		cmd, err := tx.Exec(ctx, `
DELETE FROM cart_lines
WHERE id = $1 AND cart_id = $2
`, lineItemID, cartID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	} else {
		cmd, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1
WHERE id = $2 AND cart_id = $3
`, quantity, lineItemID, cartID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) ApplyCoupon(ctx context.Context, cartID, couponCode string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockActiveCart(ctx, tx, cartID); err != nil {
		return err
	}

	var code string
	err = tx.QueryRow(ctx, `
SELECT code
FROM coupons
WHERE lower(code) = lower($1) AND active
`, strings.TrimSpace(couponCode)).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrInvalidCoupon
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
UPDATE carts
SET coupon_code = $1, updated_at = now()
WHERE id = $2
`, code, cartID); err != nil {
		return err
	}
	r.logger.Debug("cart repo: coupon applied", zap.String("cart_id", cartID), zap.String("code", code))
	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveCoupon(ctx context.Context, cartID string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE carts
SET coupon_code = NULL, updated_at = now()
WHERE id = $1 AND state = 'active'
`, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func lockActiveCart(ctx context.Context, tx pgx.Tx, cartID string) error {
	var id string
	err := tx.QueryRow(ctx, `
SELECT id::text
FROM carts
WHERE id = $1 AND state = 'active'
FOR UPDATE
`, cartID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}
