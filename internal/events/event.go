// Package events carries storefront analytics events from the UI to the
// storefront events SDK.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/sdk"
)

type Type string

const (
	UserSignIn                Type = "USER_SIGN_IN"
	UserSignOut               Type = "USER_SIGN_OUT"
	UserCreateAccount         Type = "USER_CREATE_ACCOUNT"
	PageView                  Type = "PAGE_VIEW"
	ProductPageView           Type = "PRODUCT_PAGE_VIEW"
	CartPageView              Type = "CART_PAGE_VIEW"
	MiniCartView              Type = "MINI_CART_VIEW"
	CartAdd                   Type = "CART_ADD"
	OrderConfirmationPageView Type = "ORDER_CONFIRMATION_PAGE_VIEW"
	SearchRequest             Type = "SEARCH_REQUEST"
)

var ErrInvalidEvent = errors.New("invalid event")

// Event is a tagged payload produced by the UI and consumed once by the collector.
type Event struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New builds an Event, marshalling payload to JSON.
func New(t Type, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Event{Type: t, Payload: raw}, nil
}

// Validate checks the envelope only; payload shape is up to the handler.
func (e Event) Validate() error {
	if strings.TrimSpace(string(e.Type)) == "" {
		return fmt.Errorf("%w: type required", ErrInvalidEvent)
	}
	if len(e.Payload) > 0 && !json.Valid(e.Payload) {
		return fmt.Errorf("%w: payload is not valid JSON", ErrInvalidEvent)
	}
	return nil
}

// Decode unmarshals the payload into v. An empty payload leaves v untouched.
func (e Event) Decode(v any) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// Handler routes one or more event types to SDK calls.
type Handler interface {
	EventTypes() []Type
	CanHandle(ev Event) bool
	Handle(s sdk.SDK, ev Event) error
}

// Emitter accepts events for asynchronous dispatch.
type Emitter interface {
	Emit(ev Event)
}
