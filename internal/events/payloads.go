package events

import (
	"bytes"
	"encoding/json"
)

// ID accepts either a JSON string or a JSON number; UI payloads use both.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if string(b) == "null" {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

type Money struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// AccountPayload is carried by USER_SIGN_IN and USER_CREATE_ACCOUNT.
type AccountPayload struct {
	Email        string `json:"email"`
	FirstName    string `json:"firstname"`
	LastName     string `json:"lastname"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type PagePayload struct {
	PageType string `json:"page_type"`
}

type PriceBounds struct {
	FinalPrice   Money `json:"final_price"`
	RegularPrice Money `json:"regular_price"`
}

type PriceRange struct {
	MinimumPrice *PriceBounds `json:"minimum_price,omitempty"`
	MaximumPrice PriceBounds  `json:"maximum_price"`
}

type ProductPayload struct {
	ID           ID         `json:"id"`
	Name         string     `json:"name"`
	SKU          string     `json:"sku"`
	TypeID       string     `json:"__typename,omitempty"`
	CurrencyCode string     `json:"currency_code"`
	PriceRange   PriceRange `json:"price_range"`
	URLKey       string     `json:"url_key,omitempty"`
	CanonicalURL string     `json:"canonical_url,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
}

type SelectedOption struct {
	ID          ID     `json:"id"`
	OptionLabel string `json:"option_label"`
	ValueID     ID     `json:"value_id"`
	ValueLabel  string `json:"value_label"`
}

type CartItemPayload struct {
	UID             string           `json:"uid"`
	ProductID       ID               `json:"product_id"`
	SKU             string           `json:"sku"`
	Name            string           `json:"name"`
	Quantity        int              `json:"quantity"`
	Price           Money            `json:"price"`
	ImageURL        string           `json:"image_url,omitempty"`
	SelectedOptions []SelectedOption `json:"selected_options,omitempty"`
}

// CartPayload is carried by CART_PAGE_VIEW, MINI_CART_VIEW and CART_ADD; for
// CART_ADD Products holds only the items just added.
type CartPayload struct {
	CartID               string            `json:"cart_id"`
	Products             []CartItemPayload `json:"products"`
	TotalQuantity        int               `json:"total_quantity"`
	SubtotalExcludingTax Money             `json:"subtotal_excluding_tax"`
}

type OrderAmount struct {
	GrandTotal           float64 `json:"grand_total"`
	SubtotalExcludingTax float64 `json:"subtotal_excluding_tax"`
	SubtotalIncludingTax float64 `json:"subtotal_including_tax"`
	SalesTax             float64 `json:"sales_tax"`
	OtherTax             float64 `json:"other_tax"`
	Currency             string  `json:"currency"`
}

type OrderPayment struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

type OrderShipping struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

type OrderPayload struct {
	OrderNumber string         `json:"order_number"`
	CartID      string         `json:"cart_id,omitempty"`
	Email       string         `json:"email"`
	CouponCode  string         `json:"coupon_code,omitempty"`
	Amount      OrderAmount    `json:"amount"`
	Payment     OrderPayment   `json:"payment"`
	Shipping    *OrderShipping `json:"shipping,omitempty"`
}

type SearchFilterPayload struct {
	Attribute string   `json:"attribute"`
	In        []string `json:"in,omitempty"`
	Eq        string   `json:"eq,omitempty"`
}

type SearchSortPayload struct {
	Attribute string `json:"attribute"`
	Direction string `json:"direction"`
}

type SearchPayload struct {
	SearchUnitID    string                `json:"search_unit_id,omitempty"`
	SearchRequestID string                `json:"search_request_id,omitempty"`
	Query           string                `json:"query"`
	CurrentPage     int                   `json:"current_page"`
	PageSize        int                   `json:"page_size"`
	Filters         []SearchFilterPayload `json:"filters,omitempty"`
	Sort            []SearchSortPayload   `json:"sort,omitempty"`
}
