package cart

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	cartstate "storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/observability"
	cartrepo "storefront/internal/repository/cart"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const invalidCouponMessage = "The coupon code isn't valid. Verify the code and try again."

// clientActions are the synchronous UI actions callers may dispatch directly.
// Every other known action is owned by the async operations below.
var clientActions = map[cartstate.ActionType]bool{
	cartstate.ActionOpen:               true,
	cartstate.ActionClose:              true,
	cartstate.ActionBeginEditing:       true,
	cartstate.ActionEndEditing:         true,
	cartstate.ActionDiscardError:       true,
	cartstate.ActionDiscardCouponError: true,
}

type Service struct {
	repo        cartRepo
	productRepo productRepo
	events      events.Emitter
	logger      *zap.Logger
	metrics     *observability.CartMetrics
	strict      bool
	ttl         time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

type cartRepo interface {
	Create(ctx context.Context, in cartrepo.CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	AddLineItem(ctx context.Context, cartID string, product domain.Product, quantity int) error
	ChangeLineItemQuantity(ctx context.Context, cartID, lineItemID string, quantity int) error
	ApplyCoupon(ctx context.Context, cartID, couponCode string) error
	RemoveCoupon(ctx context.Context, cartID string) error
}

type productRepo interface {
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
}

type session struct {
	store    *cartstate.Store
	quote    string
	lastSeen time.Time
}

type Options struct {
	Events  events.Emitter
	Logger  *zap.Logger
	Metrics *observability.CartMetrics
	// Strict sessions reject unknown actions instead of ignoring them.
	Strict bool
	// TTL is how long an untouched session survives Sweep.
	TTL time.Duration
}

func New(repo cartrepo.Repository, productRepo productRepo, opts Options) *Service {
	return newService(repo, productRepo, opts)
}

func newService(repo cartRepo, productRepo productRepo, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{
		repo:        repo,
		productRepo: productRepo,
		events:      opts.Events,
		logger:      logger,
		metrics:     opts.Metrics,
		strict:      opts.Strict,
		ttl:         ttl,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
}

// ValidationError reports request input the cart cannot accept.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

type ItemInput struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Open creates an empty cart and its session.
func (s *Service) Open(ctx context.Context, currency string) (domain.CartRef, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return domain.CartRef{}, ValidationError("currency required")
	}
	created, err := s.repo.Create(ctx, cartrepo.CreateCartInput{
		Quote:    uuid.NewString(),
		Currency: currency,
	})
	if err != nil {
		return domain.CartRef{}, err
	}
	ref := domain.CartRef{ID: created.ID, Quote: created.Quote}
	store := s.Session(ref)
	if err := store.Dispatch(cartstate.SetCart(created)); err != nil {
		return domain.CartRef{}, err
	}
	s.logger.Info("cart opened", zap.String("cart_id", created.ID))
	return ref, nil
}

// Resume checks ref against its cart and binds it to a session. A cart that
// does not exist and a quote that does not match are both ErrNotFound, so the
// caller cannot tell them apart.
func (s *Service) Resume(ctx context.Context, ref domain.CartRef) error {
	s.mu.Lock()
	if sess, ok := s.sessions[ref.ID]; ok && sess.quote != "" {
		match := sameQuote(sess.quote, ref.Quote)
		if match {
			sess.lastSeen = s.now()
		}
		s.mu.Unlock()
		if !match {
			return domain.ErrNotFound
		}
		return nil
	}
	s.mu.Unlock()

	c, err := s.repo.GetByID(ctx, ref.ID)
	if err != nil {
		return err
	}
	if !sameQuote(c.Quote, ref.Quote) {
		return domain.ErrNotFound
	}
	store := s.Session(ref)
	if store.State().Cart == nil {
		return store.Dispatch(cartstate.SetCart(c))
	}
	return nil
}

func sameQuote(want, got string) bool {
	return want != "" && subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// Session returns the store for the referenced cart, creating it on first use.
// It does not check the quote; callers serving requests go through Resume.
func (s *Service) Session(ref domain.CartRef) *cartstate.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[ref.ID]
	if ok && sess.quote == "" {
		sess.quote = ref.Quote
	}
	if !ok {
		sess = &session{
			store: cartstate.NewStore(
				cartstate.InitialState(ref.ID),
				cartstate.WithStrict(s.strict),
				cartstate.WithLogger(s.logger.With(zap.String("cart_id", ref.ID))),
				cartstate.WithMetrics(s.metrics),
			),
			quote: ref.Quote,
		}
		s.sessions[ref.ID] = sess
		s.metrics.Sessions(len(s.sessions))
	}
	sess.lastSeen = s.now()
	return sess.store
}

// Close drops the session for ref when its quote matches. It reports whether
// one was dropped.
func (s *Service) Close(ref domain.CartRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[ref.ID]
	if !ok || !sameQuote(sess.quote, ref.Quote) {
		return false
	}
	delete(s.sessions, ref.ID)
	s.metrics.Sessions(len(s.sessions))
	return true
}

// Sessions returns the number of live sessions.
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions not touched since now minus the TTL and returns how many went.
func (s *Service) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.metrics.Sessions(len(s.sessions))
		s.logger.Debug("cart sessions evicted", zap.Int("count", evicted), zap.Int("remaining", len(s.sessions)))
	}
	return evicted
}

// Run sweeps idle sessions until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			s.Sweep(t)
		}
	}
}

// Dispatch applies a synchronous UI action to the cart's session. Actions
// that carry cart data or loading state are rejected with a ValidationError;
// unknown types follow the store's strict or lenient policy.
func (s *Service) Dispatch(cartID string, action cartstate.Action) (cartstate.State, error) {
	store := s.Session(domain.CartRef{ID: cartID})
	if action.Type.Known() && !clientActions[action.Type] {
		return store.State(), ValidationError(fmt.Sprintf("action %q cannot be dispatched", action.Type))
	}
	err := store.Dispatch(action)
	return store.State(), err
}

// Refresh reloads the cart from the backend into its session.
func (s *Service) Refresh(ctx context.Context, cartID string) (cartstate.State, error) {
	return s.mutate(cartID, "refresh", func(store *cartstate.Store) error {
		return s.reload(ctx, store, cartID, cartstate.SetCart)
	})
}

// AddItems resolves every sku before writing anything, so a bad item rejects
// the whole batch. A write that fails part way still reloads the cart and
// reports CART_ADD for the lines that were stored.
func (s *Service) AddItems(ctx context.Context, cartID string, items []ItemInput) (cartstate.State, error) {
	if len(items) == 0 {
		return cartstate.State{}, ValidationError("items required")
	}
	items = append([]ItemInput(nil), items...)
	for i := range items {
		items[i].SKU = strings.TrimSpace(items[i].SKU)
		if items[i].SKU == "" {
			return cartstate.State{}, ValidationError("sku required")
		}
		if items[i].Quantity <= 0 {
			return cartstate.State{}, ValidationError("quantity must be positive")
		}
	}
	if s.productRepo == nil {
		return cartstate.State{}, errors.New("product repository unavailable")
	}

	var added []addedItem
	var current *domain.Cart
	state, err := s.mutate(cartID, "add_items", func(store *cartstate.Store) error {
		c, err := s.repo.GetByID(ctx, cartID)
		if err != nil {
			return s.fail(store, err)
		}
		resolved := make([]addedItem, 0, len(items))
		for _, item := range items {
			product, err := s.productRepo.GetBySKU(ctx, item.SKU)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					err = ValidationError(fmt.Sprintf("product not found: %s", item.SKU))
				}
				return s.fail(store, err)
			}
			if !strings.EqualFold(product.Currency, c.Currency) {
				return s.fail(store, ValidationError(fmt.Sprintf("currency mismatch: cart %s, product %s", c.Currency, product.Currency)))
			}
			resolved = append(resolved, addedItem{product: *product, quantity: item.Quantity})
		}

		var writeErr error
		for _, r := range resolved {
			if err := s.repo.AddLineItem(ctx, cartID, r.product, r.quantity); err != nil {
				writeErr = err
				break
			}
			added = append(added, r)
		}
		current, err = s.repo.GetByID(ctx, cartID)
		if err != nil {
			if writeErr != nil {
				err = writeErr
			}
			return s.fail(store, err)
		}
		if err := store.Dispatch(cartstate.SetCart(current)); err != nil {
			return err
		}
		if writeErr != nil {
			return s.fail(store, writeErr)
		}
		return nil
	})
	s.emitCartAdd(current, added)
	return state, err
}

func (s *Service) UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (cartstate.State, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return cartstate.State{}, ValidationError("lineItemId required")
	}
	if quantity <= 0 {
		return cartstate.State{}, ValidationError("quantity must be positive")
	}
	return s.changeQuantity(ctx, cartID, itemID, quantity, "update_item")
}

func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) (cartstate.State, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return cartstate.State{}, ValidationError("lineItemId required")
	}
	return s.changeQuantity(ctx, cartID, itemID, 0, "remove_item")
}

func (s *Service) changeQuantity(ctx context.Context, cartID, itemID string, quantity int, name string) (cartstate.State, error) {
	return s.mutate(cartID, name, func(store *cartstate.Store) error {
		if err := s.repo.ChangeLineItemQuantity(ctx, cartID, itemID, quantity); err != nil {
			return s.fail(store, err)
		}
		if err := s.reload(ctx, store, cartID, cartstate.SetCart); err != nil {
			return err
		}
		return store.Dispatch(cartstate.Action{Type: cartstate.ActionEndEditing})
	})
}

// AddCoupon applies couponCode as given. Coupon failures land in couponError
// rather than errorMessage.
func (s *Service) AddCoupon(ctx context.Context, cartID, couponCode string) (cartstate.State, error) {
	if strings.TrimSpace(couponCode) == "" {
		return cartstate.State{}, ValidationError("couponCode required")
	}
	return s.mutate(cartID, "add_coupon", func(store *cartstate.Store) error {
		if err := s.repo.ApplyCoupon(ctx, cartID, couponCode); err != nil {
			msg := err.Error()
			if errors.Is(err, domain.ErrInvalidCoupon) {
				msg = invalidCouponMessage
			}
			_ = store.Dispatch(cartstate.CouponError(msg))
			return err
		}
		return s.reload(ctx, store, cartID, cartstate.AddCouponSuccess)
	})
}

func (s *Service) RemoveCoupon(ctx context.Context, cartID string) (cartstate.State, error) {
	return s.mutate(cartID, "remove_coupon", func(store *cartstate.Store) error {
		if err := s.repo.RemoveCoupon(ctx, cartID); err != nil {
			return s.fail(store, err)
		}
		return s.reload(ctx, store, cartID, cartstate.RemoveCoupon)
	})
}

// mutate brackets fn with beginLoading and endLoading on the cart's session.
func (s *Service) mutate(cartID, name string, fn func(store *cartstate.Store) error) (cartstate.State, error) {
	store := s.Session(domain.CartRef{ID: cartID})
	start := s.now()
	err := func() error {
		_ = store.Dispatch(cartstate.BeginLoading())
		defer func() { _ = store.Dispatch(cartstate.EndLoading()) }()
		return fn(store)
	}()
	s.metrics.Mutation(name, observability.Outcome(err), s.now().Sub(start).Seconds())
	if err != nil {
		s.logger.Warn("cart mutation failed", zap.String("cart_id", cartID), zap.String("mutation", name), zap.Error(err))
	}
	return store.State(), err
}

func (s *Service) reload(ctx context.Context, store *cartstate.Store, cartID string, action func(*domain.Cart) cartstate.Action) error {
	c, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return s.fail(store, err)
	}
	return store.Dispatch(action(c))
}

func (s *Service) fail(store *cartstate.Store, err error) error {
	_ = store.Dispatch(cartstate.Error(err.Error()))
	return err
}

type addedItem struct {
	product  domain.Product
	quantity int
}

func (s *Service) emitCartAdd(c *domain.Cart, added []addedItem) {
	if s.events == nil || c == nil {
		return
	}
	for _, a := range added {
		item := events.CartItemPayload{
			ProductID: events.ID(a.product.ID),
			SKU:       a.product.SKU,
			Name:      a.product.Name,
			Quantity:  a.quantity,
			Price:     money(a.product.PriceCents, a.product.Currency),
			ImageURL:  a.product.ImageURL,
		}
		for _, line := range c.Items {
			if line.ProductID == a.product.ID {
				item.UID = line.ID
				break
			}
		}
		ev, err := events.New(events.CartAdd, events.CartPayload{
			CartID:               c.ID,
			Products:             []events.CartItemPayload{item},
			TotalQuantity:        c.TotalQuantity,
			SubtotalExcludingTax: money(c.Prices.SubtotalCents, c.Currency),
		})
		if err != nil {
			s.logger.Warn("cart add event dropped", zap.String("cart_id", c.ID), zap.Error(err))
			continue
		}
		s.events.Emit(ev)
	}
}

func money(cents int64, currency string) events.Money {
	return events.Money{Value: float64(cents) / 100, Currency: currency}
}
