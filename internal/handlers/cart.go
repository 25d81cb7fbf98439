package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/cart"
	"github.com/diewo77/autoparts/internal/metrics"
	"github.com/diewo77/autoparts/validation"
	"github.com/google/uuid"
)

const (
	cartCookieName = "cart_id"
	cartCookieTTL  = 30 * 24 * time.Hour
)

// CartSessions maps the cart_id cookie to a persisted cart.
type CartSessions struct {
	Provider cart.Provider
	locks    cart.KeyLocks
}

// Open loads the visitor's cart, issuing a new cart key when the cookie
// is missing or malformed. The cart stays locked until release is called,
// so requests sharing a cookie apply their changes one after another.
func (c *CartSessions) Open(w http.ResponseWriter, r *http.Request) (store *cart.Store, release func(), err error) {
	key := ""
	if ck, err := r.Cookie(cartCookieName); err == nil {
		if id, perr := uuid.Parse(ck.Value); perr == nil {
			key = id.String()
		}
	}
	if key == "" {
		key = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     cartCookieName,
			Value:    key,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(cartCookieTTL),
		})
	}
	release = c.locks.Lock(key)
	store, err = cart.NewStore(c.Provider.For(r.Context(), key))
	if err != nil {
		release()
		return nil, nil, apperr.Remote("load cart", err)
	}
	return store, release, nil
}

type CartHandler struct {
	sessions *CartSessions
}

func NewCartHandler(sessions *CartSessions) *CartHandler {
	return &CartHandler{sessions: sessions}
}

// mutate opens the cart, applies fn and answers with the new view.
func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, op string, fn func(*cart.Store) error) {
	store, release, err := h.sessions.Open(w, r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	defer release()
	err = fn(store)
	metrics.RecordCartOperation(op, err == nil)
	if err != nil {
		httpx.Error(w, apperr.Remote(op+" cart", err))
		return
	}
	httpx.JSON(w, http.StatusOK, cart.NewView(store.Items()))
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, release, err := h.sessions.Open(w, r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	defer release()
	httpx.JSON(w, http.StatusOK, cart.NewView(store.Items()))
}

// AddItem validates the posted product; the store itself accepts anything.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	v := validation.Violations{}
	validation.Required("id", f.Get("id"), v)
	validation.Required("name", f.Get("name"), v)
	price := validation.Decimal("price", f.Get("price"), v)
	validation.NonNegative("price", price, v)
	validation.Cents("price", price, v)
	if err := apperr.Validation(v); err != nil {
		httpx.Error(w, err)
		return
	}
	p := cart.Product{ID: f.Get("id"), Name: f.Get("name"), Price: price, ImageURL: f.Get("image_url")}
	h.mutate(w, r, "add", func(s *cart.Store) error { return s.AddToCart(p) })
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	v := validation.Violations{}
	qty := validation.Int("quantity", f.Get("quantity"), v)
	if err := apperr.Validation(v); err != nil {
		httpx.Error(w, err)
		return
	}
	id := r.PathValue("id")
	h.mutate(w, r, "update", func(s *cart.Store) error { return s.UpdateQuantity(id, qty) })
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.mutate(w, r, "remove", func(s *cart.Store) error { return s.RemoveFromCart(id) })
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	store, release, err := h.sessions.Open(w, r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	defer release()
	err = store.Clear()
	metrics.RecordCartOperation("clear", err == nil)
	if err != nil {
		httpx.Error(w, apperr.Remote("clear cart", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
