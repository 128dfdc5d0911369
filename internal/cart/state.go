// Package cart holds the client-facing cart state and the reducer that is the
// only way to change it.
package cart

import "storefront/internal/domain"

// State is the cart view state consumed by the minicart, coupon form and totals.
type State struct {
	CartID       string           `json:"cartId"`
	Cart         *domain.Cart     `json:"cart"`
	IsOpen       bool             `json:"isOpen"`
	IsLoading    bool             `json:"isLoading"`
	IsEditing    bool             `json:"isEditing"`
	EditItem     *domain.CartItem `json:"editItem"`
	CouponError  string           `json:"couponError,omitempty"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
}

// InitialState is the state a store starts from when a session is mounted.
func InitialState(cartID string) State {
	return State{CartID: cartID}
}

type ActionType string

const (
	ActionOpen               ActionType = "open"
	ActionClose              ActionType = "close"
	ActionBeginLoading       ActionType = "beginLoading"
	ActionEndLoading         ActionType = "endLoading"
	ActionSetCartID          ActionType = "cartId"
	ActionSetCart            ActionType = "cart"
	ActionAddCouponSuccess   ActionType = "addCouponSuccess"
	ActionCouponError        ActionType = "couponError"
	ActionDiscardCouponError ActionType = "discardCouponError"
	ActionRemoveCoupon       ActionType = "removeCoupon"
	ActionBeginEditing       ActionType = "beginEditing"
	ActionEndEditing         ActionType = "endEditing"
	ActionError              ActionType = "error"
	ActionDiscardError       ActionType = "discardError"
	ActionReset              ActionType = "reset"
)

// Action is a dispatched state change. Only the fields relevant to Type are read.
type Action struct {
	Type   ActionType       `json:"type"`
	CartID string           `json:"cartId,omitempty"`
	Cart   *domain.Cart     `json:"cart,omitempty"`
	Item   *domain.CartItem `json:"item,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func BeginLoading() Action { return Action{Type: ActionBeginLoading} }

func EndLoading() Action { return Action{Type: ActionEndLoading} }

func SetCart(c *domain.Cart) Action { return Action{Type: ActionSetCart, Cart: c} }

func AddCouponSuccess(c *domain.Cart) Action { return Action{Type: ActionAddCouponSuccess, Cart: c} }

func CouponError(msg string) Action { return Action{Type: ActionCouponError, Error: msg} }

func RemoveCoupon(c *domain.Cart) Action { return Action{Type: ActionRemoveCoupon, Cart: c} }

func Error(msg string) Action { return Action{Type: ActionError, Error: msg} }

// Known reports whether the reducer handles t.
func (t ActionType) Known() bool {
	switch t {
	case ActionOpen, ActionClose, ActionBeginLoading, ActionEndLoading,
		ActionSetCartID, ActionSetCart, ActionAddCouponSuccess, ActionCouponError,
		ActionDiscardCouponError, ActionRemoveCoupon, ActionBeginEditing,
		ActionEndEditing, ActionError, ActionDiscardError, ActionReset:
		return true
	}
	return false
}
