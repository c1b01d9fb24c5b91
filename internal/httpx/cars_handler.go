package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wrx861/tyres/internal/activity"
	"github.com/wrx861/tyres/internal/fourtochki"
	"github.com/wrx861/tyres/internal/settings"
	"github.com/wrx861/tyres/internal/users"
)

// CarsHandler is the vehicle-fitment surface: narrowing lists
// (brand -> model -> years -> modification) and the fitment product search.
type CarsHandler struct {
	Catalog  *fourtochki.Client
	Settings *settings.Repo
	Users    *users.Repo
	Activity *activity.Repo

	HomeWarehouseIDs []int
}

func (h *CarsHandler) Register(r *chi.Mux) {
	r.Get("/cars/brands", h.brands)
	r.Get("/cars/models", h.models)
	r.Get("/cars/years", h.years)
	r.Get("/cars/modifications", h.modifications)
	r.Get("/cars/goods", h.goods)
}

func (h *CarsHandler) brands(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.CarBrands(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": list})
}

func (h *CarsHandler) models(w http.ResponseWriter, r *http.Request) {
	brand := r.URL.Query().Get("brand")
	if brand == "" {
		badRequest(w, "brand is required")
		return
	}
	list, err := h.Catalog.CarModels(r.Context(), brand)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": list})
}

func (h *CarsHandler) years(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	brand, model := q.Get("brand"), q.Get("model")
	if brand == "" || model == "" {
		badRequest(w, "brand and model are required")
		return
	}
	list, err := h.Catalog.CarYears(r.Context(), brand, model)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": list})
}

func (h *CarsHandler) modifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	brand, model := q.Get("brand"), q.Get("model")
	yearBegin, yearEnd := q.Get("year_begin"), q.Get("year_end")
	if brand == "" || model == "" || yearBegin == "" || yearEnd == "" {
		badRequest(w, "brand, model, year_begin and year_end are required")
		return
	}
	list, err := h.Catalog.CarModifications(r.Context(), brand, model, yearBegin, yearEnd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": list})
}

func (h *CarsHandler) goods(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cq := fourtochki.CarQuery{
		Brand:        q.Get("brand"),
		Model:        q.Get("model"),
		YearBegin:    q.Get("year_begin"),
		YearEnd:      q.Get("year_end"),
		Modification: q.Get("modification"),
		ProductType:  q.Get("product_type"),
	}
	if cq.Brand == "" || cq.Model == "" || cq.Modification == "" {
		badRequest(w, "brand, model and modification are required")
		return
	}

	markup, err := h.Settings.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	preferred, required, err := preferredWarehouses(r, h.Catalog, h.HomeWarehouseIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Catalog.GoodsByCar(r.Context(), cq)
	if err != nil {
		writeError(w, err)
		return
	}
	data := annotate(res.Items, markup, preferred, required)

	h.logSelection(r, cq, len(data))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true, "data": data, "markup_percentage": markup,
	})
}

func (h *CarsHandler) logSelection(r *http.Request, cq fourtochki.CarQuery, count int) {
	telegramID := r.URL.Query().Get("telegram_id")
	if telegramID == "" {
		return
	}
	var username string
	if u, err := h.Users.Get(r.Context(), telegramID); err == nil {
		username = u.DisplayName()
	}
	h.Activity.Log(r.Context(), activity.Entry{
		TelegramID: telegramID,
		Username:   username,
		Type:       activity.TypeCarSelection,
		SearchParams: map[string]any{
			"brand": cq.Brand, "model": cq.Model,
			"year_begin": cq.YearBegin, "year_end": cq.YearEnd,
			"modification": cq.Modification, "product_type": cq.ProductType,
		},
		ResultCount: &count,
	})
}
