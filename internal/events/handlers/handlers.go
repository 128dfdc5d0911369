// Package handlers maps each storefront analytics event type to the SDK
// context and publish calls it implies.
package handlers

import (
	"strings"

	"storefront/internal/events"
)

// Options carries storefront settings some handlers need.
type Options struct {
	// StorefrontURL is the base used to build canonical product URLs.
	StorefrontURL string
}

// Default returns the registry of handlers the collector is built with.
func Default(opts Options) []events.Handler {
	return []events.Handler{
		SignIn{},
		CreateAccount{},
		PageView{},
		ProductPageView{StorefrontURL: opts.StorefrontURL},
		CartView{},
		AddToCart{},
		PlaceOrder{},
		Search{},
	}
}

func handles(types []events.Type, ev events.Event) bool {
	for _, t := range types {
		if ev.Type == t {
			return true
		}
	}
	return false
}

func strPtr(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}
