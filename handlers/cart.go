package handlers

import (
	"net/http"

	"toyWholesale/entities"
	"toyWholesale/models"

	"github.com/google/uuid"
)

const cartCookie = "cartSessionId"

const cartCookieAge = 24 * 60 * 60

// cartId returns the cart session from the cookie. With create set, a new
// session is issued when the cookie is missing or malformed.
func (h *Handler) cartId(w http.ResponseWriter, r *http.Request, create bool) (string, bool) {
	if c, err := r.Cookie(cartCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value, true
		}
	}
	if !create {
		return "", false
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   cartCookieAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, true
}

func emptyCart() entities.CartResponse {
	return entities.CartResponse{Items: []entities.CartItem{}, TotalPrice: "0.00"}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cartId(w, r, false)
	if !ok {
		h.ok(w, emptyCart())
		return
	}
	resp, err := h.cs.GetCart(r.Context(), id)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, resp)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	id, _ := h.cartId(w, r, true)
	resp, err := h.cs.AddCartItem(r.Context(), id, req.ProductId, req.Quantity)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, resp)
}

func (h *Handler) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	productId, err := pathId(r, "productId")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	var req quantityRequest
	if err = h.decodeJSON(w, r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	id, ok := h.cartId(w, r, false)
	if !ok {
		WriteErrorResponse(w, models.ErrNotFoundError)
		return
	}
	resp, err := h.cs.SetCartItemQuantity(r.Context(), id, productId, req.Quantity)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, resp)
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productId, err := pathId(r, "productId")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	id, ok := h.cartId(w, r, false)
	if !ok {
		h.ok(w, emptyCart())
		return
	}
	resp, err := h.cs.RemoveCartItem(r.Context(), id, productId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, resp)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.cartId(w, r, false); ok {
		if err := h.cs.ClearCart(r.Context(), id); err != nil {
			WriteErrorResponse(w, err)
			return
		}
	}
	h.ok(w, emptyCart())
}

// CheckoutCart places an order from the stored cart of the caller.
func (h *Handler) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	var req cartCheckoutRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	id, ok := h.cartId(w, r, false)
	if !ok {
		WriteErrorResponse(w, models.ErrEmptyCart)
		return
	}
	order, err := h.ors.PlaceCartOrder(r.Context(), caller.UserId, id, req.DeliveryAddress, req.Total)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.created(w, order)
}
