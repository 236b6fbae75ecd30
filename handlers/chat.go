package handlers

import (
	"net/http"
)

func (h *Handler) MyChats(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	chats, err := h.chs.ListUserChats(r.Context(), caller.UserId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, chats)
}

func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chs.ListChats(r.Context())
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, chats)
}

func (h *Handler) OrderChat(w http.ResponseWriter, r *http.Request) {
	orderId, err := pathId(r, "id")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	chat, err := h.chs.GetOrderChat(r.Context(), caller, orderId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, chat)
}

func (h *Handler) ChatMessages(w http.ResponseWriter, r *http.Request) {
	chatId, err := pathId(r, "id")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	msgs, err := h.chs.ListMessages(r.Context(), caller, chatId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, msgs)
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	chatId, err := pathId(r, "id")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	var req messageRequest
	if err = h.decodeJSON(w, r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	msg, err := h.chs.PostMessage(r.Context(), caller, chatId, req.Content)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.created(w, msg)
}
