package handlers

import (
	"net/url"
	"strings"

	"storefront/internal/events"
	"storefront/internal/sdk"
)

const (
	pageTypeOther   = "Other"
	pageTypeProduct = "PDP"
	pageEventType   = "visibilityHidden"
)

func pageContext(pageType string) sdk.Page {
	if strings.TrimSpace(pageType) == "" {
		pageType = pageTypeOther
	}
	return sdk.Page{PageType: pageType, EventType: pageEventType}
}

// PageView handles PAGE_VIEW.
type PageView struct{}

func (PageView) EventTypes() []events.Type { return []events.Type{events.PageView} }

func (h PageView) CanHandle(ev events.Event) bool { return handles(h.EventTypes(), ev) }

func (PageView) Handle(s sdk.SDK, ev events.Event) error {
	var p events.PagePayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	s.Context.SetPage(pageContext(p.PageType))
	s.Publish.PageView()
	return nil
}

// ProductPageView handles PRODUCT_PAGE_VIEW.
type ProductPageView struct {
	StorefrontURL string
}

func (ProductPageView) EventTypes() []events.Type { return []events.Type{events.ProductPageView} }

func (h ProductPageView) CanHandle(ev events.Event) bool { return handles(h.EventTypes(), ev) }

func (h ProductPageView) Handle(s sdk.SDK, ev events.Event) error {
	var p events.ProductPayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	s.Context.SetPage(pageContext(pageTypeProduct))
	s.Context.SetProduct(h.productContext(p))
	s.Publish.PageView()
	s.Publish.ProductPageView()
	return nil
}

func (h ProductPageView) productContext(p events.ProductPayload) sdk.Product {
	maxPrice := p.PriceRange.MaximumPrice
	currency := p.CurrencyCode
	if currency == "" {
		currency = maxPrice.FinalPrice.Currency
	}
	pricing := &sdk.Pricing{
		RegularPrice: maxPrice.RegularPrice.Value,
		MaximalPrice: floatPtr(maxPrice.FinalPrice.Value),
		CurrencyCode: currency,
	}
	if p.PriceRange.MinimumPrice != nil {
		pricing.MinimalPrice = floatPtr(p.PriceRange.MinimumPrice.FinalPrice.Value)
	}
	if final := maxPrice.FinalPrice.Value; final > 0 && final < maxPrice.RegularPrice.Value {
		pricing.SpecialPrice = floatPtr(final)
	}

	return sdk.Product{
		ProductID:    string(p.ID),
		Name:         p.Name,
		SKU:          p.SKU,
		TopLevelSKU:  p.SKU,
		Categories:   []string{},
		ProductType:  p.TypeID,
		Pricing:      pricing,
		CanonicalURL: h.canonicalURL(p),
		MainImageURL: strPtr(p.ImageURL),
	}
}

func (h ProductPageView) canonicalURL(p events.ProductPayload) string {
	if p.CanonicalURL != "" {
		return p.CanonicalURL
	}
	base := strings.TrimSpace(h.StorefrontURL)
	key := strings.TrimSpace(p.URLKey)
	if base == "" || key == "" {
		return ""
	}
	u, err := url.JoinPath(base, key+".html")
	if err != nil {
		return ""
	}
	return u
}
