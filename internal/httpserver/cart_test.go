package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	cartsvc "storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// memoryCartRepo keeps carts in a map so the real cart service can sit
// behind the router.
type memoryCartRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func newMemoryCartRepo(carts ...*domain.Cart) *memoryCartRepo {
	r := &memoryCartRepo{carts: make(map[string]*domain.Cart)}
	for _, c := range carts {
		r.carts[c.ID] = c
	}
	return r
}

func (r *memoryCartRepo) Create(_ context.Context, in cartrepo.CreateCartInput) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &domain.Cart{ID: testCartID, Quote: in.Quote, Currency: in.Currency}
	r.carts[c.ID] = c
	return c, nil
}

func (r *memoryCartRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memoryCartRepo) AddLineItem(context.Context, string, domain.Product, int) error {
	return nil
}

func (r *memoryCartRepo) ChangeLineItemQuantity(context.Context, string, string, int) error {
	return nil
}

func (r *memoryCartRepo) ApplyCoupon(context.Context, string, string) error { return nil }

func (r *memoryCartRepo) RemoveCoupon(context.Context, string) error { return nil }

func serviceRouter(t *testing.T, repo *memoryCartRepo) (*gin.Engine, *cartsvc.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := cartsvc.New(repo, nil, cartsvc.Options{Strict: true})
	router, err := buildRouter(zap.NewNop(), nil, Deps{
		CartSvc:     svc,
		Events:      &stubEmitter{},
		IngestRate:  rate.Inf,
		IngestBurst: 1,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router, svc
}

func TestDispatchRejectsCartData(t *testing.T) {
	repo := newMemoryCartRepo(&domain.Cart{ID: testCartID, Quote: "q1", Currency: "USD"})
	router, svc := serviceRouter(t, repo)

	body := `{"type":"cart","cart":{"id":"` + testCartID + `","prices":{"grandTotalCents":1}}}`
	req := withCartCookie(httptest.NewRequest(http.MethodPost, "/cart/dispatch", strings.NewReader(body)), testCookie)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	state := svc.Session(domain.CartRef{ID: testCartID}).State()
	if state.Cart == nil || state.Cart.Prices.GrandCents != 0 {
		t.Fatalf("cart state was overwritten: %+v", state.Cart)
	}

	for _, typ := range []string{"beginLoading", "cartId"} {
		req := withCartCookie(httptest.NewRequest(http.MethodPost, "/cart/dispatch", strings.NewReader(`{"type":"`+typ+`","cartId":"other"}`)), testCookie)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", typ, rec.Code)
		}
	}
	state = svc.Session(domain.CartRef{ID: testCartID}).State()
	if state.IsLoading || state.CartID != testCartID {
		t.Fatalf("state changed by rejected actions: %+v", state)
	}
}

func TestCartRoutesRejectMismatchedQuote(t *testing.T) {
	repo := newMemoryCartRepo(&domain.Cart{ID: testCartID, Quote: "q1", Currency: "USD"})
	router, svc := serviceRouter(t, repo)

	for _, value := range []string{testCartID + "%23guess", testCartID} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withCartCookie(httptest.NewRequest(http.MethodGet, "/cart", nil), value))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("cookie %q: expected 404, got %d body=%s", value, rec.Code, rec.Body.String())
		}
	}
	if svc.Sessions() != 0 {
		t.Fatalf("rejected cookies must not create sessions, got %d", svc.Sessions())
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, withCartCookie(httptest.NewRequest(http.MethodGet, "/cart", nil), testCookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for the right quote, got %d", rec.Code)
	}
}

func TestCartRoutesUnknownCartLeavesNoSession(t *testing.T) {
	router, svc := serviceRouter(t, newMemoryCartRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, withCartCookie(httptest.NewRequest(http.MethodPost, "/cart/dispatch", strings.NewReader(`{"type":"open"}`)), testCookie))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if svc.Sessions() != 0 {
		t.Fatalf("expected no session for an unknown cart, got %d", svc.Sessions())
	}
}

func TestOpenedCartCookieResumes(t *testing.T) {
	router, _ := serviceRouter(t, newMemoryCartRepo())

	req := httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(`{"currency":"usd"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var issued *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "cif.cart" {
			issued = ck
		}
	}
	if issued == nil {
		t.Fatalf("expected cart cookie")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, withCartCookie(httptest.NewRequest(http.MethodGet, "/cart", nil), issued.Value))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with the issued cookie, got %d body=%s", rec.Code, rec.Body.String())
	}
}
