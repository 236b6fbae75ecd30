package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
)

type RouterOptions struct {
	RequestTimeout time.Duration
	// UploadsDir is served under UploadsPrefix when set (local storage).
	UploadsDir    string
	UploadsPrefix string
}

func NewRouter(h *Handler, opts RouterOptions) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestID, middleware.RealIP, h.LoggingMiddleware, h.ErrorHandleMiddleware)
	if opts.RequestTimeout > 0 {
		router.Use(middleware.Timeout(opts.RequestTimeout))
	}
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.log, http.StatusNotFound, errorBody{Error: "route not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.log, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	router.HandleFunc("/health", h.Health).Methods("GET")
	if opts.UploadsDir != "" {
		prefix := opts.UploadsPrefix
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		router.PathPrefix(prefix).Handler(http.StripPrefix(prefix, noListing(http.FileServer(http.Dir(opts.UploadsDir))))).Methods("GET")
	}

	api := router.PathPrefix("/api").Subrouter()

	public := api.NewRoute().Subrouter()
	optional := api.NewRoute().Subrouter()
	optional.Use(h.OptionalAuthMiddleware)
	limited := api.NewRoute().Subrouter()
	limited.Use(h.LoginRateLimitMiddleware)
	subAuth := api.NewRoute().Subrouter()
	subAuth.Use(h.AuthMiddleware)
	subAdmin := api.NewRoute().Subrouter()
	subAdmin.Use(h.AuthMiddleware, h.AdminMiddleware)

	public.HandleFunc("/auth/register", h.Register).Methods("POST")
	limited.HandleFunc("/auth/login", h.Login).Methods("POST")
	subAuth.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	subAuth.HandleFunc("/auth/me", h.Me).Methods("GET")

	optional.HandleFunc("/products", h.ListProducts).Methods("GET")
	optional.HandleFunc("/products/facets", h.ProductFacets).Methods("GET")
	optional.HandleFunc("/products/{id:[0-9]+}", h.GetProduct).Methods("GET")
	subAdmin.HandleFunc("/products", h.CreateProduct).Methods("POST")
	subAdmin.HandleFunc("/products/{id:[0-9]+}", h.UpdateProduct).Methods("PUT")
	subAdmin.HandleFunc("/products/{id:[0-9]+}", h.DeleteProduct).Methods("DELETE")

	public.HandleFunc("/cart", h.GetCart).Methods("GET")
	public.HandleFunc("/cart", h.ClearCart).Methods("DELETE")
	public.HandleFunc("/cart/items", h.AddToCart).Methods("POST")
	public.HandleFunc("/cart/items/{productId:[0-9]+}", h.SetCartQuantity).Methods("PUT")
	public.HandleFunc("/cart/items/{productId:[0-9]+}", h.RemoveFromCart).Methods("DELETE")
	subAuth.HandleFunc("/cart/checkout", h.CheckoutCart).Methods("POST")

	subAuth.HandleFunc("/orders", h.PlaceOrder).Methods("POST")
	subAuth.HandleFunc("/orders/my", h.MyOrders).Methods("GET")
	subAuth.HandleFunc("/orders/{id:[0-9]+}", h.GetOrder).Methods("GET")
	subAuth.HandleFunc("/orders/{id:[0-9]+}/chat", h.OrderChat).Methods("GET")
	subAdmin.HandleFunc("/orders", h.ListOrders).Methods("GET")
	subAdmin.HandleFunc("/orders/{id:[0-9]+}/status", h.UpdateOrderStatus).Methods("PUT")

	subAdmin.HandleFunc("/users", h.ListUsers).Methods("GET")
	subAdmin.HandleFunc("/users/{id:[0-9]+}/orders", h.UserOrders).Methods("GET")
	subAdmin.HandleFunc("/admin/stats", h.Stats).Methods("GET")

	subAuth.HandleFunc("/chats/my", h.MyChats).Methods("GET")
	subAuth.HandleFunc("/chats/{id:[0-9]+}/messages", h.ChatMessages).Methods("GET")
	subAuth.HandleFunc("/chats/{id:[0-9]+}/messages", h.PostMessage).Methods("POST")
	subAdmin.HandleFunc("/chats", h.ListChats).Methods("GET")

	return router
}

func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
