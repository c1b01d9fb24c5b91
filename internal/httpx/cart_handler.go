package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wrx861/tyres/internal/activity"
	"github.com/wrx861/tyres/internal/carts"
	"github.com/wrx861/tyres/internal/users"
)

type CartHandler struct {
	Carts    *carts.Store
	Users    *users.Repo
	Activity *activity.Repo
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart/{telegramID}", h.get)
	r.Post("/cart/{telegramID}/items", h.add)
	r.Put("/cart/{telegramID}/items/{code}", h.updateQuantity)
	r.Delete("/cart/{telegramID}/items/{code}", h.remove)
	r.Delete("/cart/{telegramID}", h.clear)
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.GetOrCreate(r.Context(), chi.URLParam(r, "telegramID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	telegramID := chi.URLParam(r, "telegramID")

	var line carts.Line
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if line.Code == "" || line.WarehouseID == 0 {
		badRequest(w, "code and warehouse_id are required")
		return
	}

	c, err := h.Carts.Add(r.Context(), telegramID, line)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logCart(r, telegramID, activity.TypeCartAdd, line.Code, line.Quantity)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "товар добавлен в корзину",
		"cart_items_count": len(c.Items),
	})
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	telegramID := chi.URLParam(r, "telegramID")
	code := chi.URLParam(r, "code")
	warehouseID := atoi(r.URL.Query().Get("warehouse_id"))

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}

	c, err := h.Carts.UpdateQuantity(r.Context(), telegramID, code, warehouseID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	telegramID := chi.URLParam(r, "telegramID")
	code := chi.URLParam(r, "code")
	warehouseID := atoi(r.URL.Query().Get("warehouse_id"))

	c, err := h.Carts.Remove(r.Context(), telegramID, code, warehouseID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logCart(r, telegramID, activity.TypeCartRemove, code, 0)
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.Clear(r.Context(), chi.URLParam(r, "telegramID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "корзина очищена",
		"cart_items_count": len(c.Items),
	})
}

func (h *CartHandler) logCart(r *http.Request, telegramID string, typ activity.Type, code string, quantity int) {
	var username string
	if u, err := h.Users.Get(r.Context(), telegramID); err == nil {
		username = u.DisplayName()
	}
	params := map[string]any{"code": code}
	if quantity > 0 {
		params["quantity"] = quantity
	}
	h.Activity.Log(r.Context(), activity.Entry{
		TelegramID:   telegramID,
		Username:     username,
		Type:         typ,
		SearchParams: params,
	})
}
