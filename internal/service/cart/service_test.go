package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	cartstate "storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/events"
	cartrepo "storefront/internal/repository/cart"
)

type stubRepo struct {
	createCart        *domain.Cart
	createErr         error
	lastCreate        cartrepo.CreateCartInput
	getByIDResults    []*domain.Cart
	getByIDErr        error
	getByIDCalls      int
	addLineItemErr    error
	addLineItemErrs   map[string]error
	addedSKUs         []string
	changeLineItemErr error
	applyCouponErr    error
	removeCouponErr   error
	lastAddCartID     string
	lastAddProduct    domain.Product
	lastAddQty        int
	lastChangeCartID  string
	lastChangeLineID  string
	lastChangeQty     int
	applyCouponCalls  []string
	removeCouponCalls int
}

func (s *stubRepo) Create(_ context.Context, in cartrepo.CreateCartInput) (*domain.Cart, error) {
	s.lastCreate = in
	return s.createCart, s.createErr
}

func (s *stubRepo) GetByID(_ context.Context, _ string) (*domain.Cart, error) {
	if s.getByIDErr != nil {
		return nil, s.getByIDErr
	}
	var res *domain.Cart
	if len(s.getByIDResults) > 0 {
		idx := s.getByIDCalls
		if idx >= len(s.getByIDResults) {
			idx = len(s.getByIDResults) - 1
		}
		res = s.getByIDResults[idx]
	}
	s.getByIDCalls++
	return res, nil
}

func (s *stubRepo) AddLineItem(_ context.Context, cartID string, product domain.Product, quantity int) error {
	s.lastAddCartID = cartID
	s.lastAddProduct = product
	s.lastAddQty = quantity
	if err := s.addLineItemErrs[product.SKU]; err != nil {
		return err
	}
	s.addedSKUs = append(s.addedSKUs, product.SKU)
	return s.addLineItemErr
}

func (s *stubRepo) ChangeLineItemQuantity(_ context.Context, cartID, lineItemID string, quantity int) error {
	s.lastChangeCartID = cartID
	s.lastChangeLineID = lineItemID
	s.lastChangeQty = quantity
	return s.changeLineItemErr
}

func (s *stubRepo) ApplyCoupon(_ context.Context, _ string, couponCode string) error {
	s.applyCouponCalls = append(s.applyCouponCalls, couponCode)
	return s.applyCouponErr
}

func (s *stubRepo) RemoveCoupon(_ context.Context, _ string) error {
	s.removeCouponCalls++
	return s.removeCouponErr
}

type stubProductRepo struct {
	product *domain.Product
	bySKU   map[string]*domain.Product
	err     error
	lastSKU string
}

func (s *stubProductRepo) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	s.lastSKU = sku
	if s.bySKU != nil {
		p, ok := s.bySKU[sku]
		if !ok {
			return nil, domain.ErrNotFound
		}
		return p, nil
	}
	return s.product, s.err
}

type stubEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *stubEmitter) Emit(ev events.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func strPtr(v string) *string {
	return &v
}

func TestServiceOpenValidation(t *testing.T) {
	svc := newService(&stubRepo{}, nil, Options{})
	_, err := svc.Open(context.Background(), "   ")
	if err == nil || err.Error() != "currency required" {
		t.Fatalf("expected currency validation error, got %v", err)
	}
}

func TestServiceOpenCreatesSession(t *testing.T) {
	repo := &stubRepo{createCart: &domain.Cart{ID: "c1", Quote: "q1", Currency: "USD"}}
	svc := newService(repo, nil, Options{})

	ref, err := svc.Open(context.Background(), "usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != "c1" || ref.Quote != "q1" {
		t.Fatalf("unexpected ref %+v", ref)
	}
	if repo.lastCreate.Currency != "USD" || repo.lastCreate.Quote == "" {
		t.Fatalf("unexpected create input %+v", repo.lastCreate)
	}
	state := svc.Session(ref).State()
	if state.CartID != "c1" || state.Cart == nil || state.Cart.ID != "c1" {
		t.Fatalf("session not seeded: %+v", state)
	}
	if svc.Sessions() != 1 {
		t.Fatalf("expected one session, got %d", svc.Sessions())
	}
}

func TestServiceSessionReusesStore(t *testing.T) {
	svc := newService(&stubRepo{}, nil, Options{})
	ref := domain.CartRef{ID: "c1", Quote: "q1"}
	first := svc.Session(ref)
	second := svc.Session(domain.CartRef{ID: "c1"})
	if first != second {
		t.Fatalf("expected the same store for the same cart")
	}
	if !svc.Close(ref) {
		t.Fatalf("expected Close to report an existing session")
	}
	if svc.Close(ref) {
		t.Fatalf("expected second Close to report no session")
	}
	if svc.Session(domain.CartRef{ID: "c1"}) == first {
		t.Fatalf("expected a fresh store after Close")
	}
}

func TestServiceAddItemsValidation(t *testing.T) {
	svc := newService(&stubRepo{}, &stubProductRepo{}, Options{})
	cases := []struct {
		items []ItemInput
		msg   string
	}{
		{nil, "items required"},
		{[]ItemInput{{SKU: " ", Quantity: 1}}, "sku required"},
		{[]ItemInput{{SKU: "SKU1", Quantity: 0}}, "quantity must be positive"},
	}
	for _, tc := range cases {
		_, err := svc.AddItems(context.Background(), "c1", tc.items)
		if err == nil || err.Error() != tc.msg {
			t.Fatalf("expected %q, got %v", tc.msg, err)
		}
	}
}

func TestServiceAddItemsProductNotFound(t *testing.T) {
	repo := &stubRepo{getByIDResults: []*domain.Cart{{ID: "c1", Currency: "USD"}}}
	svc := newService(repo, &stubProductRepo{err: domain.ErrNotFound}, Options{})

	state, err := svc.AddItems(context.Background(), "c1", []ItemInput{{SKU: "SKU1", Quantity: 1}})
	if err == nil || err.Error() != "product not found: SKU1" {
		t.Fatalf("expected product not found, got %v", err)
	}
	if state.ErrorMessage != "product not found: SKU1" {
		t.Fatalf("expected error surfaced into state, got %+v", state)
	}
	if state.IsLoading {
		t.Fatalf("loading flag must be cleared on failure")
	}
}

func TestServiceAddItemsHappyPath(t *testing.T) {
	before := &domain.Cart{ID: "c1", Currency: "USD"}
	after := &domain.Cart{
		ID:       "c1",
		Currency: "USD",
		Items: []domain.CartItem{
			{ID: "line-1", ProductID: "p1", SKU: "343g3434t", Quantity: 2, UnitPriceCents: 7800},
		},
	}
	after.ComputePrices(0)
	repo := &stubRepo{getByIDResults: []*domain.Cart{before, after}}
	products := &stubProductRepo{product: &domain.Product{ID: "p1", SKU: "343g3434t", Name: "Selena Pants", PriceCents: 7800, Currency: "USD"}}
	emitter := &stubEmitter{}
	svc := newService(repo, products, Options{Events: emitter})

	state, err := svc.AddItems(context.Background(), "c1", []ItemInput{{SKU: " 343g3434t ", Quantity: 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products.lastSKU != "343g3434t" {
		t.Fatalf("expected trimmed sku lookup, got %q", products.lastSKU)
	}
	if repo.lastAddCartID != "c1" || repo.lastAddQty != 2 || repo.lastAddProduct.ID != "p1" {
		t.Fatalf("unexpected add call cart=%s qty=%d product=%+v", repo.lastAddCartID, repo.lastAddQty, repo.lastAddProduct)
	}
	if state.Cart != after || state.IsLoading {
		t.Fatalf("unexpected state %+v", state)
	}

	if len(emitter.events) != 1 || emitter.events[0].Type != events.CartAdd {
		t.Fatalf("expected one CART_ADD event, got %+v", emitter.events)
	}
	var payload events.CartPayload
	if err := json.Unmarshal(emitter.events[0].Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.CartID != "c1" || len(payload.Products) != 1 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	item := payload.Products[0]
	if item.UID != "line-1" || item.Quantity != 2 || item.Price.Value != 78 {
		t.Fatalf("unexpected item %+v", item)
	}
	if payload.TotalQuantity != 2 || payload.SubtotalExcludingTax.Value != 156 {
		t.Fatalf("unexpected totals %+v", payload)
	}
}

func TestServiceAddItemsCurrencyMismatch(t *testing.T) {
	repo := &stubRepo{getByIDResults: []*domain.Cart{{ID: "c1", Currency: "EUR"}}}
	products := &stubProductRepo{product: &domain.Product{ID: "p1", SKU: "SKU1", Currency: "USD"}}
	emitter := &stubEmitter{}
	svc := newService(repo, products, Options{Events: emitter})

	if _, err := svc.AddItems(context.Background(), "c1", []ItemInput{{SKU: "SKU1", Quantity: 1}}); err == nil {
		t.Fatalf("expected currency mismatch error")
	}
	if repo.lastAddCartID != "" {
		t.Fatalf("expected no line item added")
	}
	if len(emitter.events) != 0 {
		t.Fatalf("expected no events on failure")
	}
}

func TestServiceUpdateItemQuantity(t *testing.T) {
	updated := &domain.Cart{ID: "c1", Items: []domain.CartItem{{ID: "line-1", Quantity: 3}}}
	repo := &stubRepo{getByIDResults: []*domain.Cart{updated}}
	svc := newService(repo, nil, Options{})

	item := domain.CartItem{ID: "line-1", Quantity: 1}
	if _, err := svc.Dispatch("c1", cartstate.Action{Type: cartstate.ActionBeginEditing, Item: &item}); err != nil {
		t.Fatalf("beginEditing: %v", err)
	}

	state, err := svc.UpdateItemQuantity(context.Background(), "c1", "line-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastChangeCartID != "c1" || repo.lastChangeLineID != "line-1" || repo.lastChangeQty != 3 {
		t.Fatalf("unexpected change call %+v", repo)
	}
	if state.Cart != updated || state.IsEditing || state.EditItem != nil {
		t.Fatalf("unexpected state %+v", state)
	}

	if _, err := svc.UpdateItemQuantity(context.Background(), "c1", "line-1", 0); err == nil || err.Error() != "quantity must be positive" {
		t.Fatalf("expected quantity validation, got %v", err)
	}
	if _, err := svc.UpdateItemQuantity(context.Background(), "c1", "", 1); err == nil || err.Error() != "lineItemId required" {
		t.Fatalf("expected lineItemId validation, got %v", err)
	}
}

func TestServiceRemoveItem(t *testing.T) {
	repo := &stubRepo{getByIDResults: []*domain.Cart{{ID: "c1"}}}
	svc := newService(repo, nil, Options{})

	if _, err := svc.RemoveItem(context.Background(), "c1", "line-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastChangeLineID != "line-1" || repo.lastChangeQty != 0 {
		t.Fatalf("expected removal via zero quantity, got line=%s qty=%d", repo.lastChangeLineID, repo.lastChangeQty)
	}
}

func TestServiceRemoveItemNotFound(t *testing.T) {
	repo := &stubRepo{changeLineItemErr: domain.ErrNotFound}
	svc := newService(repo, nil, Options{})

	state, err := svc.RemoveItem(context.Background(), "c1", "line-9")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if state.ErrorMessage != "not found" || state.IsLoading {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestServiceAddCouponCallsMutationOnce(t *testing.T) {
	withCoupon := &domain.Cart{ID: "c1", AppliedCoupon: strPtr("my-coupon")}
	repo := &stubRepo{getByIDResults: []*domain.Cart{withCoupon}}
	svc := newService(repo, nil, Options{})

	var loadingSeen bool
	unsubscribe := svc.Session(domain.CartRef{ID: "c1"}).Subscribe(func(s cartstate.State) {
		if s.IsLoading {
			loadingSeen = true
		}
	})
	defer unsubscribe()

	state, err := svc.AddCoupon(context.Background(), "c1", "my-coupon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.applyCouponCalls) != 1 || repo.applyCouponCalls[0] != "my-coupon" {
		t.Fatalf("expected exactly one apply with the literal code, got %v", repo.applyCouponCalls)
	}
	if !loadingSeen {
		t.Fatalf("expected loading state during mutation")
	}
	if state.IsLoading || state.CouponError != "" {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.Cart == nil || state.Cart.AppliedCoupon == nil || *state.Cart.AppliedCoupon != "my-coupon" {
		t.Fatalf("expected coupon on cart, got %+v", state.Cart)
	}
}

func TestServiceAddCouponInvalid(t *testing.T) {
	repo := &stubRepo{applyCouponErr: domain.ErrInvalidCoupon}
	svc := newService(repo, nil, Options{})

	state, err := svc.AddCoupon(context.Background(), "c1", "nope")
	if !errors.Is(err, domain.ErrInvalidCoupon) {
		t.Fatalf("expected invalid coupon, got %v", err)
	}
	if state.CouponError != invalidCouponMessage {
		t.Fatalf("unexpected coupon error %q", state.CouponError)
	}
	if state.ErrorMessage != "" || state.IsLoading {
		t.Fatalf("unexpected state %+v", state)
	}
	if repo.getByIDCalls != 0 {
		t.Fatalf("expected no reload after failed coupon")
	}

	if _, err := svc.AddCoupon(context.Background(), "c1", "  "); err == nil {
		t.Fatalf("expected validation error for blank code")
	}
	if len(repo.applyCouponCalls) != 1 {
		t.Fatalf("blank code must not reach the backend")
	}
}

func TestServiceRemoveCoupon(t *testing.T) {
	repo := &stubRepo{getByIDResults: []*domain.Cart{{ID: "c1"}}}
	svc := newService(repo, nil, Options{})
	if err := svc.Session(domain.CartRef{ID: "c1"}).Dispatch(cartstate.CouponError("bad")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	state, err := svc.RemoveCoupon(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.removeCouponCalls != 1 {
		t.Fatalf("expected one remove call, got %d", repo.removeCouponCalls)
	}
	if state.CouponError != "" || state.Cart == nil {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestServiceRefreshError(t *testing.T) {
	repo := &stubRepo{getByIDErr: errors.New("backend down")}
	svc := newService(repo, nil, Options{})

	state, err := svc.Refresh(context.Background(), "c1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if state.ErrorMessage != "backend down" || state.IsLoading {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestServiceDispatchStrict(t *testing.T) {
	lenient := newService(&stubRepo{}, nil, Options{})
	if _, err := lenient.Dispatch("c1", cartstate.Action{Type: "bogus"}); err != nil {
		t.Fatalf("lenient session should ignore unknown actions, got %v", err)
	}

	strict := newService(&stubRepo{}, nil, Options{Strict: true})
	if _, err := strict.Dispatch("c1", cartstate.Action{Type: "bogus"}); !errors.Is(err, cartstate.ErrUnknownAction) {
		t.Fatalf("strict session should reject unknown actions, got %v", err)
	}
}

func TestServiceSweep(t *testing.T) {
	svc := newService(&stubRepo{}, nil, Options{TTL: time.Minute})
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	svc.Session(domain.CartRef{ID: "old"})
	svc.now = func() time.Time { return base.Add(50 * time.Second) }
	svc.Session(domain.CartRef{ID: "fresh"})

	if n := svc.Sweep(base.Add(90 * time.Second)); n != 1 {
		t.Fatalf("expected one eviction, got %d", n)
	}
	if svc.Sessions() != 1 {
		t.Fatalf("expected fresh session to survive")
	}
}

func TestServiceDispatchRejectsServerOwnedActions(t *testing.T) {
	svc := newService(&stubRepo{}, nil, Options{Strict: true})
	forged := []cartstate.Action{
		cartstate.BeginLoading(),
		cartstate.EndLoading(),
		cartstate.SetCart(&domain.Cart{ID: "c1", Prices: domain.CartPrices{GrandCents: 1}}),
		{Type: cartstate.ActionSetCartID, CartID: "someone-else"},
		cartstate.AddCouponSuccess(&domain.Cart{ID: "c1"}),
		cartstate.CouponError("forged"),
		cartstate.RemoveCoupon(nil),
		cartstate.Error("forged"),
		{Type: cartstate.ActionReset},
	}
	for _, action := range forged {
		state, err := svc.Dispatch("c1", action)
		var invalid ValidationError
		if !errors.As(err, &invalid) {
			t.Fatalf("%s: expected ValidationError, got %v", action.Type, err)
		}
		if state != cartstate.InitialState("c1") {
			t.Fatalf("%s: state changed to %+v", action.Type, state)
		}
	}

	allowed := []cartstate.ActionType{
		cartstate.ActionOpen, cartstate.ActionClose, cartstate.ActionEndEditing,
		cartstate.ActionDiscardError, cartstate.ActionDiscardCouponError,
	}
	for _, typ := range allowed {
		if _, err := svc.Dispatch("c1", cartstate.Action{Type: typ}); err != nil {
			t.Fatalf("%s: unexpected error %v", typ, err)
		}
	}
	item := domain.CartItem{ID: "line-1"}
	state, err := svc.Dispatch("c1", cartstate.Action{Type: cartstate.ActionBeginEditing, Item: &item})
	if err != nil || !state.IsEditing {
		t.Fatalf("beginEditing: state=%+v err=%v", state, err)
	}
}

func TestServiceAddItemsResolvesBatchBeforeWriting(t *testing.T) {
	repo := &stubRepo{getByIDResults: []*domain.Cart{{ID: "c1", Currency: "USD"}}}
	products := &stubProductRepo{bySKU: map[string]*domain.Product{
		"a": {ID: "pa", SKU: "a", PriceCents: 100, Currency: "USD"},
	}}
	emitter := &stubEmitter{}
	svc := newService(repo, products, Options{Events: emitter})

	_, err := svc.AddItems(context.Background(), "c1", []ItemInput{{SKU: "a", Quantity: 1}, {SKU: "missing", Quantity: 1}})
	var invalid ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.addedSKUs) != 0 || repo.lastAddCartID != "" {
		t.Fatalf("expected no writes for a rejected batch, got %v", repo.addedSKUs)
	}
	if len(emitter.events) != 0 {
		t.Fatalf("expected no events, got %d", len(emitter.events))
	}
}

func TestServiceAddItemsPartialWriteReloadsAndReportsStoredLines(t *testing.T) {
	before := &domain.Cart{ID: "c1", Currency: "USD"}
	after := &domain.Cart{
		ID:       "c1",
		Currency: "USD",
		Items:    []domain.CartItem{{ID: "line-a", ProductID: "pa", SKU: "a", Quantity: 1, UnitPriceCents: 100}},
	}
	after.ComputePrices(0)
	repo := &stubRepo{
		getByIDResults:  []*domain.Cart{before, after},
		addLineItemErrs: map[string]error{"b": errors.New("write failed")},
	}
	products := &stubProductRepo{bySKU: map[string]*domain.Product{
		"a": {ID: "pa", SKU: "a", PriceCents: 100, Currency: "USD"},
		"b": {ID: "pb", SKU: "b", PriceCents: 200, Currency: "USD"},
	}}
	emitter := &stubEmitter{}
	svc := newService(repo, products, Options{Events: emitter})

	state, err := svc.AddItems(context.Background(), "c1", []ItemInput{{SKU: "a", Quantity: 1}, {SKU: "b", Quantity: 1}})
	if err == nil || err.Error() != "write failed" {
		t.Fatalf("expected write failure, got %v", err)
	}
	if state.Cart != after || state.ErrorMessage != "write failed" || state.IsLoading {
		t.Fatalf("expected reloaded cart with error, got %+v", state)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected CART_ADD for the stored line only, got %d", len(emitter.events))
	}
	var payload events.CartPayload
	if err := json.Unmarshal(emitter.events[0].Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Products) != 1 || payload.Products[0].SKU != "a" || payload.Products[0].UID != "line-a" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestServiceAddItemsLeavesCallerSliceUntouched(t *testing.T) {
	repo := &stubRepo{getByIDResults: []*domain.Cart{{ID: "c1", Currency: "USD"}}}
	products := &stubProductRepo{product: &domain.Product{ID: "p1", SKU: "SKU1", Currency: "USD"}}
	svc := newService(repo, products, Options{})

	items := []ItemInput{{SKU: "  SKU1 ", Quantity: 1}}
	if _, err := svc.AddItems(context.Background(), "c1", items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].SKU != "  SKU1 " {
		t.Fatalf("caller slice modified: %q", items[0].SKU)
	}
}

func TestServiceResumeChecksQuote(t *testing.T) {
	stored := &domain.Cart{ID: "c1", Quote: "q1", Currency: "USD"}
	repo := &stubRepo{getByIDResults: []*domain.Cart{stored}}
	svc := newService(repo, nil, Options{})

	for _, quote := range []string{"", "wrong"} {
		if err := svc.Resume(context.Background(), domain.CartRef{ID: "c1", Quote: quote}); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("quote %q: expected ErrNotFound, got %v", quote, err)
		}
	}
	if svc.Sessions() != 0 {
		t.Fatalf("rejected refs must not create sessions, got %d", svc.Sessions())
	}

	if err := svc.Resume(context.Background(), domain.CartRef{ID: "c1", Quote: "q1"}); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if state := svc.Session(domain.CartRef{ID: "c1"}).State(); state.Cart != stored {
		t.Fatalf("expected cart loaded into session, got %+v", state)
	}

	calls := repo.getByIDCalls
	if err := svc.Resume(context.Background(), domain.CartRef{ID: "c1", Quote: "wrong"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound against live session, got %v", err)
	}
	if err := svc.Resume(context.Background(), domain.CartRef{ID: "c1", Quote: "q1"}); err != nil {
		t.Fatalf("resume live session: %v", err)
	}
	if repo.getByIDCalls != calls {
		t.Fatalf("live session should be checked without a backend call")
	}
}

func TestServiceResumeUnknownCart(t *testing.T) {
	svc := newService(&stubRepo{getByIDErr: domain.ErrNotFound}, nil, Options{})
	if err := svc.Resume(context.Background(), domain.CartRef{ID: "c1", Quote: "q1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if svc.Sessions() != 0 {
		t.Fatalf("expected no session for an unknown cart")
	}
}

func TestServiceCloseRequiresQuote(t *testing.T) {
	svc := newService(&stubRepo{}, nil, Options{})
	svc.Session(domain.CartRef{ID: "c1", Quote: "q1"})

	if svc.Close(domain.CartRef{ID: "c1", Quote: "other"}) {
		t.Fatalf("close with a wrong quote must not drop the session")
	}
	if !svc.Close(domain.CartRef{ID: "c1", Quote: "q1"}) || svc.Sessions() != 0 {
		t.Fatalf("expected session dropped")
	}
}
