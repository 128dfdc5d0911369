// Package cookie reads and writes the cif.cart page-context cookie, which
// carries "cartId#cartQuote".
package cookie

import (
	"errors"
	"net/url"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

const (
	// Name of the cookie shared with the storefront pages.
	Name      = "cif.cart"
	separator = "#"
)

var ErrInvalidCookie = errors.New("invalid cart cookie")

// Parse splits a cookie value on the first '#'. Values may arrive URL-encoded.
// The cart id must be a UUID.
func Parse(value string) (domain.CartRef, error) {
	raw := strings.TrimSpace(value)
	if unescaped, err := url.QueryUnescape(raw); err == nil {
		raw = unescaped
	}
	id, quote, _ := strings.Cut(raw, separator)
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.CartRef{}, ErrInvalidCookie
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.CartRef{}, ErrInvalidCookie
	}
	return domain.CartRef{ID: id, Quote: strings.TrimSpace(quote)}, nil
}

func Format(ref domain.CartRef) string {
	if ref.Quote == "" {
		return ref.ID
	}
	return ref.ID + separator + ref.Quote
}
