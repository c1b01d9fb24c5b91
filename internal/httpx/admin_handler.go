package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/wrx861/tyres/internal/activity"
	"github.com/wrx861/tyres/internal/orders"
	"github.com/wrx861/tyres/internal/settings"
	"github.com/wrx861/tyres/internal/users"
)

type AdminHandler struct {
	Users    *users.Repo
	Settings *settings.Repo
	Orders   *orders.Repo
	Activity *activity.Repo
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Get("/admin/markup", h.getMarkup)
	r.Put("/admin/markup", h.updateMarkup)
	r.Get("/admin/stats", h.stats)
	r.Get("/admin/activity", h.activityLog)
	r.Post("/admin/users/{id}/block", h.block)
	r.Post("/admin/users/{id}/unblock", h.unblock)
	r.Post("/admin/reset", h.reset)
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("telegram_id")
	if id == "" {
		forbidden(w)
		return "", false
	}
	u, err := h.Users.Get(r.Context(), id)
	if err != nil || !u.IsAdmin {
		forbidden(w)
		return "", false
	}
	return id, true
}

func (h *AdminHandler) getMarkup(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	m, err := h.Settings.Get(r.Context(), adminID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *AdminHandler) updateMarkup(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	var req struct {
		MarkupPercentage decimal.Decimal `json:"markup_percentage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	m, err := h.Settings.Update(r.Context(), req.MarkupPercentage, adminID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	s, err := h.Orders.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	userCount, err := h.Users.Count(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_orders":     s.TotalOrders,
		"pending_orders":   s.PendingOrders,
		"confirmed_orders": s.ConfirmedOrders,
		"completed_orders": s.CompletedOrders,
		"cancelled_orders": s.CancelledOrders,
		"total_revenue":    s.TotalRevenue.Round(2),
		"total_users":      userCount,
	})
}

func (h *AdminHandler) activityLog(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	list, err := h.Activity.List(r.Context(), listLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": list, "total": len(list)})
}

func (h *AdminHandler) block(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true)
}

func (h *AdminHandler) unblock(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false)
}

func (h *AdminHandler) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	adminID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	target := chi.URLParam(r, "id")
	if target == adminID {
		badRequest(w, "cannot block yourself")
		return
	}
	if err := h.Users.SetBlocked(r.Context(), target, blocked); err != nil {
		writeError(w, err)
		return
	}
	msg := "пользователь заблокирован"
	if !blocked {
		msg = "пользователь разблокирован"
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msg, "telegram_id": target})
}

// reset wipes orders and activity logs. Users, carts and settings survive.
func (h *AdminHandler) reset(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	ordersDeleted, err := h.Orders.DeleteAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	logsDeleted, err := h.Activity.DeleteAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders_deleted": ordersDeleted,
		"logs_deleted":   logsDeleted,
	})
}
