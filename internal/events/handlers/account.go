package handlers

import (
	"errors"
	"strings"

	"storefront/internal/events"
	"storefront/internal/sdk"
)

var errEmailRequired = errors.New("email required")

// SignIn handles USER_SIGN_IN.
type SignIn struct{}

func (SignIn) EventTypes() []events.Type { return []events.Type{events.UserSignIn} }

func (h SignIn) CanHandle(ev events.Event) bool { return handles(h.EventTypes(), ev) }

func (SignIn) Handle(s sdk.SDK, ev events.Event) error {
	email, err := setAccountContext(s, ev)
	if err != nil {
		return err
	}
	s.Publish.SignIn(sdk.EmailContext{PersonalEmail: sdk.PersonalEmail{Address: email}})
	return nil
}

// CreateAccount handles USER_CREATE_ACCOUNT.
type CreateAccount struct{}

func (CreateAccount) EventTypes() []events.Type { return []events.Type{events.UserCreateAccount} }

func (h CreateAccount) CanHandle(ev events.Event) bool { return handles(h.EventTypes(), ev) }

func (CreateAccount) Handle(s sdk.SDK, ev events.Event) error {
	email, err := setAccountContext(s, ev)
	if err != nil {
		return err
	}
	s.Publish.CreateAccount(sdk.EmailContext{PersonalEmail: sdk.PersonalEmail{Address: email}})
	return nil
}

func setAccountContext(s sdk.SDK, ev events.Event) (string, error) {
	var p events.AccountPayload
	if err := ev.Decode(&p); err != nil {
		return "", err
	}
	email := strings.TrimSpace(p.Email)
	if email == "" {
		return "", errEmailRequired
	}
	s.Context.SetShopper(sdk.Shopper{ShopperID: sdk.ShopperLoggedIn})
	s.Context.SetAccount(sdk.Account{
		EmailAddress: email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
	})
	return email, nil
}
