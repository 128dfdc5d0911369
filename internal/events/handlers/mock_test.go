package handlers

import (
	"storefront/internal/sdk"

	"github.com/stretchr/testify/mock"
)

// mockSDK records every context and publish call.
type mockSDK struct {
	mock.Mock
}

func newMockSDK() *mockSDK {
	m := &mockSDK{}
	for _, method := range []string{
		"SetOrder", "SetPage", "SetProduct", "SetShopper", "SetAccount",
		"SetShoppingCart", "SetSearchInput", "SignIn", "CreateAccount",
		"SearchRequestSent",
	} {
		m.On(method, mock.Anything).Return()
	}
	for _, method := range []string{
		"PlaceOrder", "PageView", "ProductPageView", "ShoppingCartView", "AddToCart",
	} {
		m.On(method).Return()
	}
	return m
}

func (m *mockSDK) SDK() sdk.SDK {
	return sdk.SDK{Context: m, Publish: m}
}

func (m *mockSDK) SetOrder(o sdk.Order)               { m.Called(o) }
func (m *mockSDK) SetPage(p sdk.Page)                 { m.Called(p) }
func (m *mockSDK) SetProduct(p sdk.Product)           { m.Called(p) }
func (m *mockSDK) SetShopper(s sdk.Shopper)           { m.Called(s) }
func (m *mockSDK) SetAccount(a sdk.Account)           { m.Called(a) }
func (m *mockSDK) SetShoppingCart(c sdk.ShoppingCart) { m.Called(c) }
func (m *mockSDK) SetSearchInput(s sdk.SearchInput)   { m.Called(s) }

func (m *mockSDK) PlaceOrder()                      { m.Called() }
func (m *mockSDK) PageView()                        { m.Called() }
func (m *mockSDK) ProductPageView()                 { m.Called() }
func (m *mockSDK) SignIn(c sdk.EmailContext)        { m.Called(c) }
func (m *mockSDK) CreateAccount(c sdk.EmailContext) { m.Called(c) }
func (m *mockSDK) ShoppingCartView()                { m.Called() }
func (m *mockSDK) AddToCart()                       { m.Called() }
func (m *mockSDK) SearchRequestSent(unitID string)  { m.Called(unitID) }
