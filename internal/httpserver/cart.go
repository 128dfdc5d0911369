package httpserver

import (
	"context"
	"errors"
	"net/http"

	cartstate "storefront/internal/cart"
	"storefront/internal/cookie"
	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ctxKey string

const cartCtxKey ctxKey = "cart"

type createCartRequest struct {
	Currency string `json:"currency"`
}

type addItemsRequest struct {
	Items []cartsvc.ItemInput `json:"items"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type couponRequest struct {
	CouponCode string `json:"couponCode"`
}

type cartHandlers struct {
	svc    cartService
	logger *zap.Logger
	secure bool
}

// cookieMiddleware reads the cart reference from the cif.cart cookie.
func cookieMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cookie.Name)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "cart not found"})
			return
		}
		ref, err := cookie.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		ctx := context.WithValue(c.Request.Context(), cartCtxKey, ref)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// resume binds the cookie's cart to its session once id and quote check out.
func (h *cartHandlers) resume() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.svc.Resume(c.Request.Context(), cartRefFrom(c)); err != nil {
			h.writeError(c, cartstate.State{}, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func cartRefFrom(c *gin.Context) domain.CartRef {
	ref, _ := c.Request.Context().Value(cartCtxKey).(domain.CartRef)
	return ref
}

func (h *cartHandlers) create(c *gin.Context) {
	var req createCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	ref, err := h.svc.Open(c.Request.Context(), req.Currency)
	if err != nil {
		h.writeError(c, cartstate.State{}, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie.Name, cookie.Format(ref), 0, "/", "", h.secure, false)
	c.JSON(http.StatusCreated, h.svc.Session(ref).State())
}

func (h *cartHandlers) get(c *gin.Context) {
	ref := cartRefFrom(c)
	state, err := h.svc.Refresh(c.Request.Context(), ref.ID)
	if err != nil {
		h.writeError(c, state, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *cartHandlers) closeSession(c *gin.Context) {
	ref := cartRefFrom(c)
	h.svc.Close(ref)
	c.SetCookie(cookie.Name, "", -1, "/", "", h.secure, false)
	c.Status(http.StatusNoContent)
}

func (h *cartHandlers) addItems(c *gin.Context) {
	var req addItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	ref := cartRefFrom(c)
	state, err := h.svc.AddItems(c.Request.Context(), ref.ID, req.Items)
	h.respond(c, state, err)
}

func (h *cartHandlers) updateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	ref := cartRefFrom(c)
	state, err := h.svc.UpdateItemQuantity(c.Request.Context(), ref.ID, c.Param("itemId"), req.Quantity)
	h.respond(c, state, err)
}

func (h *cartHandlers) removeItem(c *gin.Context) {
	ref := cartRefFrom(c)
	state, err := h.svc.RemoveItem(c.Request.Context(), ref.ID, c.Param("itemId"))
	h.respond(c, state, err)
}

func (h *cartHandlers) addCoupon(c *gin.Context) {
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	ref := cartRefFrom(c)
	state, err := h.svc.AddCoupon(c.Request.Context(), ref.ID, req.CouponCode)
	h.respond(c, state, err)
}

func (h *cartHandlers) removeCoupon(c *gin.Context) {
	ref := cartRefFrom(c)
	state, err := h.svc.RemoveCoupon(c.Request.Context(), ref.ID)
	h.respond(c, state, err)
}

func (h *cartHandlers) dispatch(c *gin.Context) {
	var action cartstate.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	ref := cartRefFrom(c)
	state, err := h.svc.Dispatch(ref.ID, action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "state": state})
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *cartHandlers) respond(c *gin.Context, state cartstate.State, err error) {
	if err != nil {
		h.writeError(c, state, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// writeError maps service errors to status codes; the body carries the
// session state so the UI can render couponError and errorMessage.
func (h *cartHandlers) writeError(c *gin.Context, state cartstate.State, err error) {
	var invalid cartsvc.ValidationError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &invalid):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCoupon):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("cart request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"message": err.Error(), "state": state})
}
