package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/wrx861/tyres/internal/activity"
	"github.com/wrx861/tyres/internal/fourtochki"
	"github.com/wrx861/tyres/internal/pricing"
	"github.com/wrx861/tyres/internal/settings"
	"github.com/wrx861/tyres/internal/users"
)

type ProductsHandler struct {
	Catalog  *fourtochki.Client
	Settings *settings.Repo
	Users    *users.Repo
	Activity *activity.Repo

	// HomeWarehouseIDs is the preferred warehouse order, nearest first.
	HomeWarehouseIDs []int
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products/tires/search", h.searchTires)
	r.Get("/products/disks/search", h.searchDisks)
	r.Get("/products/info/{code}", h.info)
	r.Get("/products/warehouses", h.warehouses)
}

type pricedOffer struct {
	WarehouseID   int             `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Rest          int             `json:"rest"`
	PriceOriginal decimal.Decimal `json:"price_original"`
	Price         decimal.Decimal `json:"price"`
}

type pricedItem struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Model    string `json:"model,omitempty"`
	ImgSmall string `json:"img_small,omitempty"`

	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Diameter int    `json:"diameter,omitempty"`
	Season   string `json:"season,omitempty"`
	DiskType string `json:"disk_type,omitempty"`
	Color    string `json:"color,omitempty"`

	// selected offer shown as the item's primary price
	WarehouseID   int             `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Rest          int             `json:"rest"`
	PriceOriginal decimal.Decimal `json:"price_original"`
	Price         decimal.Decimal `json:"price"`

	Warehouses []pricedOffer `json:"warehouses"`
}

type searchResp struct {
	Success          bool            `json:"success"`
	Data             []pricedItem    `json:"data"`
	TotalPages       int             `json:"total_pages"`
	MarkupPercentage decimal.Decimal `json:"markup_percentage"`
}

// annotate applies markup to every offer and picks the warehouse to present.
// With a location filter active, items without a preferred-warehouse offer
// are dropped entirely rather than shown with a fallback warehouse.
func annotate(items []fourtochki.Item, markup decimal.Decimal, preferred []int, requirePreferred bool) []pricedItem {
	out := make([]pricedItem, 0, len(items))
	for _, it := range items {
		sel, ok := pricing.SelectOffer(it.Offers, preferred, requirePreferred)
		if !ok {
			continue
		}
		pi := pricedItem{
			Code: it.Code, Name: it.Name, Brand: it.Brand, Model: it.Model,
			ImgSmall: it.ImgSmall,
			Width:    it.Width, Height: it.Height, Diameter: it.Diameter,
			Season: it.Season, DiskType: it.DiskType, Color: it.Color,
			WarehouseID:   sel.WarehouseID,
			WarehouseName: sel.WarehouseName,
			Rest:          sel.Stock,
			PriceOriginal: sel.Price,
			Price:         pricing.Markup(sel.Price, markup),
		}
		for _, o := range it.Offers {
			pi.Warehouses = append(pi.Warehouses, pricedOffer{
				WarehouseID:   o.WarehouseID,
				WarehouseName: o.WarehouseName,
				Rest:          o.Stock,
				PriceOriginal: o.Price,
				Price:         pricing.Markup(o.Price, markup),
			})
		}
		out = append(out, pi)
	}
	return out
}

// preferredWarehouses resolves the warehouse preference for a request. A city
// query narrows the preferred set to that city's warehouses and makes a match
// mandatory.
func preferredWarehouses(r *http.Request, catalog *fourtochki.Client, home []int) ([]int, bool, error) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		return home, false, nil
	}
	whs, err := catalog.Warehouses(r.Context())
	if err != nil {
		return nil, false, err
	}
	inCity := map[int]bool{}
	var ids []int
	for _, w := range whs {
		if strings.EqualFold(w.City, city) {
			inCity[w.ID] = true
		}
	}
	// keep the configured preference order first, then listing order
	for _, id := range home {
		if inCity[id] {
			ids = append(ids, id)
			delete(inCity, id)
		}
	}
	for _, w := range whs {
		if inCity[w.ID] {
			ids = append(ids, w.ID)
			delete(inCity, w.ID)
		}
	}
	return ids, true, nil
}

func (h *ProductsHandler) preferredFor(r *http.Request) ([]int, bool, error) {
	return preferredWarehouses(r, h.Catalog, h.HomeWarehouseIDs)
}

func (h *ProductsHandler) searchTires(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := fourtochki.TireFilter{
		Width:    atoi(q.Get("width")),
		Height:   atoi(q.Get("height")),
		Diameter: atoi(q.Get("diameter")),
		Season:   q.Get("season"),
		Brand:    q.Get("brand"),
		Page:     atoi(q.Get("page")),
		PageSize: pageSize(q.Get("page_size")),
	}

	markup, err := h.Settings.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	preferred, required, err := h.preferredFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Catalog.SearchTires(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	data := annotate(res.Items, markup, preferred, required)

	h.logSearch(r, activity.TypeTireSearch, map[string]any{
		"width": f.Width, "height": f.Height, "diameter": f.Diameter,
		"season": f.Season, "brand": f.Brand,
	}, len(data))

	writeJSON(w, http.StatusOK, searchResp{
		Success: true, Data: data, TotalPages: res.TotalPages, MarkupPercentage: markup,
	})
}

func (h *ProductsHandler) searchDisks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, _ := strconv.ParseFloat(q.Get("width"), 64)
	f := fourtochki.DiskFilter{
		Diameter: atoi(q.Get("diameter")),
		Width:    width,
		Brand:    q.Get("brand"),
		Page:     atoi(q.Get("page")),
		PageSize: pageSize(q.Get("page_size")),
	}

	markup, err := h.Settings.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	preferred, required, err := h.preferredFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Catalog.SearchDisks(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	data := annotate(res.Items, markup, preferred, required)

	h.logSearch(r, activity.TypeDiskSearch, map[string]any{
		"diameter": f.Diameter, "width": f.Width, "brand": f.Brand,
	}, len(data))

	writeJSON(w, http.StatusOK, searchResp{
		Success: true, Data: data, TotalPages: res.TotalPages, MarkupPercentage: markup,
	})
}

func (h *ProductsHandler) info(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	markup, err := h.Settings.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	it, err := h.Catalog.GoodsInfo(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	items := annotate([]fourtochki.Item{it}, markup, h.HomeWarehouseIDs, false)
	if len(items) == 0 {
		writeJSON(w, http.StatusNotFound, errBody{"product has no available offers"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true, "data": items[0], "markup_percentage": markup,
	})
}

func (h *ProductsHandler) warehouses(w http.ResponseWriter, r *http.Request) {
	whs, err := h.Catalog.Warehouses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": whs})
}

func (h *ProductsHandler) logSearch(r *http.Request, typ activity.Type, params map[string]any, count int) {
	telegramID := r.URL.Query().Get("telegram_id")
	if telegramID == "" {
		return
	}
	var username string
	if u, err := h.Users.Get(r.Context(), telegramID); err == nil {
		username = u.DisplayName()
	}
	h.Activity.Log(r.Context(), activity.Entry{
		TelegramID:   telegramID,
		Username:     username,
		Type:         typ,
		SearchParams: params,
		ResultCount:  &count,
	})
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func pageSize(s string) int {
	n := atoi(s)
	if n <= 0 {
		return 50
	}
	if n > 200 {
		return 200
	}
	return n
}
