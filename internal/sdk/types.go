package sdk

// Field names below are fixed by the storefront events SDK and must not change.

type Shopper struct {
	ShopperID string `json:"shopperId"`
}

const (
	ShopperLoggedIn = "logged-in"
	ShopperGuest    = "guest"
)

type Account struct {
	AccountID    string `json:"accountId,omitempty"`
	AccountEmail string `json:"accountEmail,omitempty"`
	AccountType  string `json:"accountType,omitempty"`
	EmailAddress string `json:"emailAddress"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
}

type Page struct {
	PageType     string `json:"pageType"`
	EventType    string `json:"eventType"`
	MaxXOffset   int    `json:"maxXOffset"`
	MaxYOffset   int    `json:"maxYOffset"`
	MinXOffset   int    `json:"minXOffset"`
	MinYOffset   int    `json:"minYOffset"`
	PingInterval int    `json:"ping_interval"`
	Pings        int    `json:"pings"`
}

type Pricing struct {
	RegularPrice float64  `json:"regularPrice"`
	MinimalPrice *float64 `json:"minimalPrice,omitempty"`
	MaximalPrice *float64 `json:"maximalPrice,omitempty"`
	SpecialPrice *float64 `json:"specialPrice,omitempty"`
	CurrencyCode string   `json:"currencyCode"`
}

type Product struct {
	ProductID            string   `json:"productId"`
	Name                 string   `json:"name"`
	SKU                  string   `json:"sku"`
	TopLevelSKU          string   `json:"topLevelSku,omitempty"`
	SpecialToDate        *string  `json:"specialToDate"`
	SpecialFromDate      *string  `json:"specialFromDate"`
	NewToDate            *string  `json:"newToDate"`
	NewFromDate          *string  `json:"newFromDate"`
	CreatedAt            *string  `json:"createdAt"`
	UpdatedAt            *string  `json:"updatedAt"`
	Manufacturer         *string  `json:"manufacturer"`
	CountryOfManufacture *string  `json:"countryOfManufacture"`
	Categories           []string `json:"categories"`
	ProductType          string   `json:"productType,omitempty"`
	Pricing              *Pricing `json:"pricing,omitempty"`
	CanonicalURL         string   `json:"canonicalUrl,omitempty"`
	MainImageURL         *string  `json:"mainImageUrl"`
}

type Price struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

type ItemPrices struct {
	Price Price `json:"price"`
}

type ConfigurableOption struct {
	ID          string `json:"id"`
	OptionLabel string `json:"optionLabel"`
	ValueID     string `json:"valueId"`
	ValueLabel  string `json:"valueLabel"`
}

type ShoppingCartItem struct {
	CanApplyMsrp        bool                 `json:"canApplyMsrp"`
	FormattedPrice      string               `json:"formattedPrice"`
	ID                  string               `json:"id"`
	Prices              ItemPrices           `json:"prices"`
	Product             Product              `json:"product"`
	ConfigurableOptions []ConfigurableOption `json:"configurableOptions"`
	Quantity            int                  `json:"quantity"`
}

type CartPrices struct {
	SubtotalExcludingTax Price `json:"subtotalExcludingTax"`
}

type ShoppingCart struct {
	ID                      string             `json:"id"`
	Items                   []ShoppingCartItem `json:"items"`
	Prices                  CartPrices         `json:"prices"`
	TotalQuantity           int                `json:"totalQuantity"`
	PossibleOnepageCheckout bool               `json:"possibleOnepageCheckout"`
	GiftMessageSelected     bool               `json:"giftMessageSelected"`
	GiftWrappingSelected    bool               `json:"giftWrappingSelected"`
}

type Payment struct {
	PaymentMethodCode string  `json:"paymentMethodCode"`
	PaymentMethodName string  `json:"paymentMethodName"`
	Total             float64 `json:"total"`
}

type Shipping struct {
	ShippingMethod string  `json:"shippingMethod"`
	ShippingAmount float64 `json:"shippingAmount"`
}

type Order struct {
	AppliedCouponCode    string    `json:"appliedCouponCode"`
	Email                string    `json:"email"`
	GrandTotal           float64   `json:"grandTotal"`
	OrderID              string    `json:"orderId"`
	OrderType            string    `json:"orderType,omitempty"`
	OtherTax             float64   `json:"otherTax"`
	PaymentMethodCode    string    `json:"paymentMethodCode"`
	PaymentMethodName    string    `json:"paymentMethodName"`
	SalesTax             float64   `json:"salesTax"`
	SubtotalExcludingTax float64   `json:"subtotalExcludingTax"`
	SubtotalIncludingTax float64   `json:"subtotalIncludingTax"`
	Payments             []Payment `json:"payments"`
	Shipping             *Shipping `json:"shipping,omitempty"`
}

type SearchFilter struct {
	Attribute string   `json:"attribute"`
	In        []string `json:"in,omitempty"`
	Eq        string   `json:"eq,omitempty"`
}

type SearchSort struct {
	Attribute string `json:"attribute"`
	Direction string `json:"direction"`
}

type SearchUnit struct {
	SearchUnitID    string         `json:"searchUnitId"`
	SearchRequestID string         `json:"searchRequestId"`
	QueryTypes      []string       `json:"queryTypes"`
	Phrase          string         `json:"phrase"`
	PageSize        int            `json:"pageSize"`
	CurrentPage     int            `json:"currentPage"`
	Filter          []SearchFilter `json:"filter"`
	Sort            []SearchSort   `json:"sort"`
}

type SearchInput struct {
	Units []SearchUnit `json:"units"`
}

type PersonalEmail struct {
	Address string `json:"address"`
}

// EmailContext is the custom context passed to signIn and createAccount.
type EmailContext struct {
	PersonalEmail PersonalEmail `json:"personalEmail"`
}
