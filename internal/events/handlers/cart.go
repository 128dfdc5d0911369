package handlers

import (
	"fmt"

	"storefront/internal/events"
	"storefront/internal/sdk"
)

// CartView handles CART_PAGE_VIEW and MINI_CART_VIEW.
type CartView struct{}

func (CartView) EventTypes() []events.Type {
	return []events.Type{events.CartPageView, events.MiniCartView}
}

func (h CartView) CanHandle(ev events.Event) bool { return handles(h.EventTypes(), ev) }

func (CartView) Handle(s sdk.SDK, ev events.Event) error {
	var p events.CartPayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	s.Context.SetShoppingCart(shoppingCart(p))
	s.Publish.ShoppingCartView()
	return nil
}

// AddToCart handles CART_ADD.
type AddToCart struct{}

func (AddToCart) EventTypes() []events.Type { return []events.Type{events.CartAdd} }

func (h AddToCart) CanHandle(ev events.Event) bool { return handles(h.EventTypes(), ev) }

func (AddToCart) Handle(s sdk.SDK, ev events.Event) error {
	var p events.CartPayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	if len(p.Products) == 0 {
		return fmt.Errorf("%s: no products", ev.Type)
	}
	s.Context.SetShoppingCart(shoppingCart(p))
	s.Publish.AddToCart()
	return nil
}

func shoppingCart(p events.CartPayload) sdk.ShoppingCart {
	items := make([]sdk.ShoppingCartItem, 0, len(p.Products))
	totalQty := 0
	for _, item := range p.Products {
		items = append(items, shoppingCartItem(item))
		totalQty += item.Quantity
	}
	if p.TotalQuantity > 0 {
		totalQty = p.TotalQuantity
	}
	return sdk.ShoppingCart{
		ID:    p.CartID,
		Items: items,
		Prices: sdk.CartPrices{
			SubtotalExcludingTax: sdk.Price{
				Value:    p.SubtotalExcludingTax.Value,
				Currency: p.SubtotalExcludingTax.Currency,
			},
		},
		TotalQuantity:           totalQty,
		PossibleOnepageCheckout: false,
		GiftMessageSelected:     false,
		GiftWrappingSelected:    false,
	}
}

func shoppingCartItem(item events.CartItemPayload) sdk.ShoppingCartItem {
	options := make([]sdk.ConfigurableOption, 0, len(item.SelectedOptions))
	for _, o := range item.SelectedOptions {
		options = append(options, sdk.ConfigurableOption{
			ID:          string(o.ID),
			OptionLabel: o.OptionLabel,
			ValueID:     string(o.ValueID),
			ValueLabel:  o.ValueLabel,
		})
	}
	return sdk.ShoppingCartItem{
		CanApplyMsrp:   false,
		FormattedPrice: formatPrice(item.Price),
		ID:             item.UID,
		Prices: sdk.ItemPrices{
			Price: sdk.Price{Value: item.Price.Value, Currency: item.Price.Currency},
		},
		Product: sdk.Product{
			ProductID:    string(item.ProductID),
			Name:         item.Name,
			SKU:          item.SKU,
			TopLevelSKU:  item.SKU,
			Categories:   []string{},
			MainImageURL: strPtr(item.ImageURL),
		},
		ConfigurableOptions: options,
		Quantity:            item.Quantity,
	}
}

func formatPrice(m events.Money) string {
	if m.Currency == "" {
		return fmt.Sprintf("%.2f", m.Value)
	}
	return fmt.Sprintf("%.2f %s", m.Value, m.Currency)
}
