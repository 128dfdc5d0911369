package cart

import (
	"errors"
	"fmt"
)

// ErrUnknownAction is reported for action types the reducer does not know.
var ErrUnknownAction = errors.New("unknown cart action")

// Reduce returns the state that results from applying a to s. It never
// mutates s or the cart it points to; on an unknown action s is returned
// unchanged together with ErrUnknownAction.
func Reduce(s State, a Action) (State, error) {
	switch a.Type {
	case ActionOpen:
		s.IsOpen = true
	case ActionClose:
		s.IsOpen = false
		s.IsEditing = false
		s.EditItem = nil
	case ActionBeginLoading:
		s.IsLoading = true
	case ActionEndLoading:
		s.IsLoading = false
	case ActionSetCartID:
		s.CartID = a.CartID
	case ActionSetCart:
		s.Cart = a.Cart
	case ActionAddCouponSuccess:
		s.Cart = a.Cart
		s.CouponError = ""
	case ActionCouponError:
		s.CouponError = a.Error
	case ActionDiscardCouponError:
		s.CouponError = ""
	case ActionRemoveCoupon:
		if a.Cart != nil {
			s.Cart = a.Cart
		}
		s.CouponError = ""
	case ActionBeginEditing:
		if a.Item == nil {
			return s, fmt.Errorf("%s: item required", a.Type)
		}
		item := *a.Item
		s.IsEditing = true
		s.EditItem = &item
	case ActionEndEditing:
		s.IsEditing = false
		s.EditItem = nil
	case ActionError:
		s.ErrorMessage = a.Error
		s.IsLoading = false
	case ActionDiscardError:
		s.ErrorMessage = ""
	case ActionReset:
		open := s.IsOpen
		s = InitialState("")
		s.IsOpen = open
	default:
		return s, fmt.Errorf("%w %q", ErrUnknownAction, a.Type)
	}
	return s, nil
}
