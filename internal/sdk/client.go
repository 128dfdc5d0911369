package sdk

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Envelope is one published event with the context it was published under.
type Envelope struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	OccurredAt time.Time      `json:"occurredAt"`
	Context    map[string]any `json:"context"`
	Custom     any            `json:"custom,omitempty"`
}

// Sink persists or forwards envelopes.
type Sink interface {
	Write(ctx context.Context, env Envelope) error
}

// Client is the in-process SDK implementation. Publish calls never fail the
// caller; sink errors are logged.
type Client struct {
	mu       sync.Mutex
	contexts map[string]any
	sink     Sink
	logger   *zap.Logger
	timeout  time.Duration
	now      func() time.Time
}

func NewClient(sink Sink, logger *zap.Logger, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		contexts: make(map[string]any),
		sink:     sink,
		logger:   logger,
		timeout:  timeout,
		now:      time.Now,
	}
}

// SDK exposes the client through the context/publish split.
func (c *Client) SDK() SDK {
	return SDK{Context: c, Publish: c}
}

func (c *Client) set(key string, v any) {
	c.mu.Lock()
	c.contexts[key] = v
	c.mu.Unlock()
}

func (c *Client) SetOrder(o Order) { c.set("order", o) }

func (c *Client) SetPage(p Page) { c.set("page", p) }

func (c *Client) SetProduct(p Product) { c.set("product", p) }

func (c *Client) SetShopper(s Shopper) { c.set("shopper", s) }

func (c *Client) SetAccount(a Account) { c.set("account", a) }

func (c *Client) SetShoppingCart(s ShoppingCart) { c.set("shoppingCart", s) }

func (c *Client) SetSearchInput(s SearchInput) { c.set("searchInput", s) }

func (c *Client) PlaceOrder() { c.publish(EventPlaceOrder, nil) }

func (c *Client) PageView() { c.publish(EventPageView, nil) }

func (c *Client) ProductPageView() { c.publish(EventProductPageView, nil) }

func (c *Client) SignIn(custom EmailContext) { c.publish(EventSignIn, custom) }

func (c *Client) CreateAccount(custom EmailContext) { c.publish(EventCreateAccount, custom) }

func (c *Client) ShoppingCartView() { c.publish(EventShoppingCartView, nil) }

func (c *Client) AddToCart() { c.publish(EventAddToCart, nil) }

func (c *Client) SearchRequestSent(searchUnitID string) {
	c.publish(EventSearchRequestSent, map[string]string{"searchUnitId": searchUnitID})
}

// Snapshot returns a copy of the current context.
func (c *Client) Snapshot() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.contexts))
	for k, v := range c.contexts {
		out[k] = v
	}
	return out
}

func (c *Client) publish(name string, custom any) {
	env := Envelope{
		ID:         uuid.NewString(),
		Name:       name,
		OccurredAt: c.now().UTC(),
		Context:    c.Snapshot(),
		Custom:     custom,
	}
	if c.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.sink.Write(ctx, env); err != nil {
		c.logger.Warn("sdk: publish failed", zap.String("event", name), zap.String("id", env.ID), zap.Error(err))
	}
}
