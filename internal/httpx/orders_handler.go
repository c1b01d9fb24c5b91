package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wrx861/tyres/internal/activity"
	"github.com/wrx861/tyres/internal/fourtochki"
	"github.com/wrx861/tyres/internal/orders"
	"github.com/wrx861/tyres/internal/users"
)

type OrdersHandler struct {
	Svc      *orders.Service
	Repo     *orders.Repo
	Users    *users.Repo
	Activity *activity.Repo
	Catalog  *fourtochki.Client
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.create)
	r.Get("/orders/my", h.listMine)
	r.Get("/orders/admin/pending", h.listPending)
	r.Get("/orders/admin/all", h.listAll)
	r.Get("/orders/{id}", h.get)
	r.Get("/orders/{id}/status", h.status)
	r.Post("/orders/{id}/confirm", h.confirm)
	r.Post("/orders/{id}/reject", h.reject)
	r.Patch("/orders/{id}/status", h.advance)
	r.Post("/orders/{id}/hide", h.hide)
	r.Post("/orders/{id}/supplier", h.submitSupplier)
}

// requireAdmin resolves the caller from ?telegram_id= and checks the admin
// flag. Unknown callers get the same refusal as known non-admins.
func (h *OrdersHandler) requireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
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

type createOrderReq struct {
	Items           []orders.OrderItem     `json:"items"`
	DeliveryAddress orders.DeliveryAddress `json:"delivery_address"`
	ExternalID      string                 `json:"external_id"`
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	telegramID := r.URL.Query().Get("telegram_id")
	if telegramID == "" {
		badRequest(w, "telegram_id is required")
		return
	}
	u, err := h.Users.Get(r.Context(), telegramID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}

	o, existed, err := h.Svc.Create(r.Context(), telegramID, u.DisplayName(), req.Items, req.DeliveryAddress, req.ExternalID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !existed {
		h.Activity.Log(r.Context(), activity.Entry{
			TelegramID: telegramID,
			Username:   u.DisplayName(),
			Type:       activity.TypeOrderCreated,
			SearchParams: map[string]any{
				"order_id": o.OrderID, "total_amount": o.TotalAmount, "items": len(o.Items),
			},
		})
	}

	code := http.StatusCreated
	if existed {
		code = http.StatusOK
	}
	writeJSON(w, code, o)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	telegramID := r.URL.Query().Get("telegram_id")
	if telegramID == "" {
		badRequest(w, "telegram_id is required")
		return
	}
	list, err := h.Repo.ListByUser(r.Context(), telegramID, listLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": list, "total": len(list)})
}

// get returns one order. Admins see any order; everyone else only their own,
// and a foreign order id reads as not found rather than forbidden.
func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	telegramID := r.URL.Query().Get("telegram_id")
	if telegramID == "" {
		badRequest(w, "telegram_id is required")
		return
	}

	ownerID := telegramID
	if isAdmin, err := h.Users.IsAdmin(r.Context(), telegramID); err == nil && isAdmin {
		ownerID = ""
	}
	o, err := h.Repo.Get(r.Context(), orderID, ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	telegramID := r.URL.Query().Get("telegram_id")
	if telegramID == "" {
		badRequest(w, "telegram_id is required")
		return
	}

	if isAdmin, err := h.Users.IsAdmin(r.Context(), telegramID); err == nil && isAdmin {
		st, err := h.Svc.StatusOf(r.Context(), orderID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"order_id": orderID, "status": st, "status_label": orders.Label(st),
		})
		return
	}

	o, err := h.Repo.Get(r.Context(), orderID, telegramID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order_id": o.OrderID, "status": o.Status, "status_label": orders.Label(o.Status),
	})
}

func (h *OrdersHandler) listPending(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	list, err := h.Repo.ListPending(r.Context(), listLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": list, "total": len(list)})
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	q := r.URL.Query()
	status := orders.Status(q.Get("status"))
	if status != "" && !orders.IsValid(status) {
		badRequest(w, "unknown status")
		return
	}
	includeHidden := q.Get("include_hidden") == "true"

	list, err := h.Repo.ListAll(r.Context(), status, includeHidden, listLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": list, "total": len(list)})
}

func (h *OrdersHandler) confirm(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	var req struct {
		AdminComment string `json:"admin_comment"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	o, err := h.Svc.Confirm(r.Context(), chi.URLParam(r, "id"), adminID, req.AdminComment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) reject(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Reason == "" {
		badRequest(w, "reason is required")
		return
	}

	o, err := h.Svc.Reject(r.Context(), chi.URLParam(r, "id"), adminID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) advance(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	to := orders.Status(q.Get("new_status"))
	if !orders.IsValid(to) {
		badRequest(w, "unknown status")
		return
	}

	o, err := h.Svc.AdvanceStatus(r.Context(), chi.URLParam(r, "id"), adminID, to, q.Get("comment"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// submitSupplier places a confirmed order with the catalog provider, stores
// the supplier's identifiers and moves the order to in_progress. The status
// check is re-run at write time, so a double submit records exactly once.
func (h *OrdersHandler) submitSupplier(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "id")

	o, err := h.Repo.Get(r.Context(), orderID, "")
	if err != nil {
		writeError(w, err)
		return
	}
	if o.Status != orders.StatusConfirmed || o.SupplierOrderID != "" {
		writeError(w, orders.ErrInvalidState)
		return
	}

	so, err := h.Catalog.CreateOrder(r.Context(), supplierLines(o))
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.Repo.SetSupplierOrder(r.Context(), orderID, so.OrderID, so.OrderNumber, time.Now().UTC()); err != nil {
		writeError(w, err)
		return
	}
	o, err = h.Svc.AdvanceStatus(r.Context(), orderID, adminID, orders.StatusInProgress, "Заказ размещен у поставщика")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func supplierLines(o orders.Order) []fourtochki.OrderLine {
	lines := make([]fourtochki.OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, fourtochki.OrderLine{
			Code:        it.Code,
			Quantity:    it.Quantity,
			WarehouseID: it.WarehouseID,
		})
	}
	return lines
}

func (h *OrdersHandler) hide(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	if err := h.Svc.Hide(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "заказ скрыт"})
}

func listLimit(r *http.Request) int {
	n := atoi(r.URL.Query().Get("limit"))
	if n <= 0 || n > 500 {
		return 100
	}
	return n
}
