package handlers

import (
	"fmt"

	"storefront/internal/events"
	"storefront/internal/sdk"
)

// PlaceOrder handles ORDER_CONFIRMATION_PAGE_VIEW.
type PlaceOrder struct{}

func (PlaceOrder) EventTypes() []events.Type {
	return []events.Type{events.OrderConfirmationPageView}
}

func (h PlaceOrder) CanHandle(ev events.Event) bool { return handles(h.EventTypes(), ev) }

func (PlaceOrder) Handle(s sdk.SDK, ev events.Event) error {
	var p events.OrderPayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	if p.OrderNumber == "" {
		return fmt.Errorf("%s: order_number required", ev.Type)
	}
	order := sdk.Order{
		AppliedCouponCode:    p.CouponCode,
		Email:                p.Email,
		GrandTotal:           p.Amount.GrandTotal,
		OrderID:              p.OrderNumber,
		OtherTax:             p.Amount.OtherTax,
		PaymentMethodCode:    p.Payment.Code,
		PaymentMethodName:    p.Payment.Title,
		SalesTax:             p.Amount.SalesTax,
		SubtotalExcludingTax: p.Amount.SubtotalExcludingTax,
		SubtotalIncludingTax: p.Amount.SubtotalIncludingTax,
		Payments: []sdk.Payment{{
			PaymentMethodCode: p.Payment.Code,
			PaymentMethodName: p.Payment.Title,
			Total:             p.Amount.GrandTotal,
		}},
	}
	if p.Shipping != nil {
		order.Shipping = &sdk.Shipping{ShippingMethod: p.Shipping.Method, ShippingAmount: p.Shipping.Amount}
	}
	s.Context.SetOrder(order)
	s.Publish.PlaceOrder()
	return nil
}
