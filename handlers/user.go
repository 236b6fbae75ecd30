package handlers

import (
	"errors"
	"net/http"
	"time"

	"toyWholesale/entities"
	"toyWholesale/models"
	"toyWholesale/services"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	var form registerForm
	if err := bindForm(r, &form); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	logo, f, err := formFile(r, "logo")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	if f != nil {
		defer f.Close()
	}

	uModel, err := h.us.Register(r.Context(), services.Registration{
		Email:        form.Email,
		Password:     form.Password,
		CompanyName:  form.CompanyName,
		UNP:          form.UNP,
		DirectorName: form.DirectorName,
		Phone:        form.Phone,
		Address:      form.Address,
	}, logo)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.created(w, entities.NewUser(uModel))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	uModel, token, err := h.us.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL / time.Second),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.ok(w, entities.LoginResponse{Token: token, User: entities.NewUser(uModel)})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	if err := h.us.Logout(r.Context(), caller.SessionId); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	// the cart belongs to the browser session and ends with it
	if cartId, ok := h.cartId(w, r, false); ok {
		if err := h.cs.ClearCart(r.Context(), cartId); err != nil {
			WriteErrorResponse(w, err)
			return
		}
	}
	h.expireCookie(w, sessionCookie)
	h.expireCookie(w, cartCookie)
	h.ok(w, map[string]string{"status": "logged out"})
}

func (h *Handler) expireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	uModel, err := h.us.GetUser(r.Context(), caller.UserId)
	if err != nil {
		// the account was removed while the session was alive
		if errors.Is(err, models.ErrNotFoundError) {
			err = models.ErrUnauthorized
		}
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, entities.NewUser(uModel))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.us.ListUsers(r.Context())
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	res := make([]entities.User, 0, len(users))
	for _, u := range users {
		res = append(res, entities.NewUser(u))
	}
	h.ok(w, res)
}
