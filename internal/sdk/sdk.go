// Package sdk models the storefront events SDK consumed by the collector:
// a mutable context plus publish calls that snapshot it.
package sdk

// Context holds the data later publish calls attach to their events.
type Context interface {
	SetOrder(Order)
	SetPage(Page)
	SetProduct(Product)
	SetShopper(Shopper)
	SetAccount(Account)
	SetShoppingCart(ShoppingCart)
	SetSearchInput(SearchInput)
}

// Publisher emits events built from the current Context.
type Publisher interface {
	PlaceOrder()
	PageView()
	ProductPageView()
	SignIn(EmailContext)
	CreateAccount(EmailContext)
	ShoppingCartView()
	AddToCart()
	SearchRequestSent(searchUnitID string)
}

// SDK mirrors the sdk.context / sdk.publish split of the storefront SDK.
type SDK struct {
	Context Context
	Publish Publisher
}

// Valid reports whether both halves are present.
func (s SDK) Valid() bool {
	return s.Context != nil && s.Publish != nil
}

// Event names written into envelopes.
const (
	EventPlaceOrder        = "place-order"
	EventPageView          = "page-view"
	EventProductPageView   = "product-page-view"
	EventSignIn            = "sign-in"
	EventCreateAccount     = "create-account"
	EventShoppingCartView  = "shopping-cart-view"
	EventAddToCart         = "add-to-cart"
	EventSearchRequestSent = "search-request-sent"
)
