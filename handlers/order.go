package handlers

import (
	"net/http"
	"strings"

	"toyWholesale/models"
	"toyWholesale/services"
)

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	checkout := services.Checkout{
		DeliveryAddress: req.DeliveryAddress,
		Total:           req.Total,
		Items:           make([]services.CheckoutItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		checkout.Items = append(checkout.Items, services.CheckoutItem{ProductId: it.ProductId, Quantity: it.Quantity})
	}
	order, err := h.ors.PlaceOrder(r.Context(), caller.UserId, checkout)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.created(w, order)
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	orders, err := h.ors.ListUserOrders(r.Context(), caller.UserId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, orders)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var status *models.OrderStatus
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		st, err := models.ParseOrderStatus(s)
		if err != nil {
			WriteErrorResponse(w, err)
			return
		}
		status = &st
	}
	orders, err := h.ors.ListOrders(r.Context(), status)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, orders)
}

func (h *Handler) UserOrders(w http.ResponseWriter, r *http.Request) {
	userId, err := pathId(r, "id")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	orders, err := h.ors.ListUserOrdersAdmin(r.Context(), userId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	order, err := h.ors.GetOrder(r.Context(), caller, id)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, order)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	var req statusRequest
	if err = h.decodeJSON(w, r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	order, err := h.ors.UpdateStatus(r.Context(), id, models.StatusUpdate{
		Status:       status,
		DeliveryDate: strings.TrimSpace(req.DeliveryDate),
	})
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, order)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sts.Stats(r.Context())
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, stats)
}
