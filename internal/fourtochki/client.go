// Package fourtochki is the adapter for the 4tochki SOAP supplier API. It
// owns the wire format end to end: callers see normalized Items and typed
// errors, never XML.
package fourtochki

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable marks transport failures, timeouts and SOAP faults: the
// upstream could not be asked, as opposed to it answering with a business
// error (SupplierError).
var ErrUnavailable = errors.New("catalog provider unavailable")

const soapNS = "http://tempuri.org/"

type Client struct {
	endpoint string
	login    string
	password string
	http     *http.Client
}

func NewClient(endpoint, login, password string) *Client {
	return &Client{
		endpoint: endpoint,
		login:    login,
		password: password,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SearchTires(ctx context.Context, f TireFilter) (SearchResult, error) {
	req := struct {
		XMLName   xml.Name `xml:"http://tempuri.org/ GetFindTyre"`
		Login     string   `xml:"login"`
		Password  string   `xml:"password"`
		WidthMin  int      `xml:"filter>width_min,omitempty"`
		WidthMax  int      `xml:"filter>width_max,omitempty"`
		HeightMin int      `xml:"filter>height_min,omitempty"`
		HeightMax int      `xml:"filter>height_max,omitempty"`
		DiamMin   int      `xml:"filter>diameter_min,omitempty"`
		DiamMax   int      `xml:"filter>diameter_max,omitempty"`
		Season    string   `xml:"filter>season_list>season,omitempty"`
		Brand     string   `xml:"filter>brand_list>brand,omitempty"`
		Page      int      `xml:"page"`
		PageSize  int      `xml:"pageSize"`
	}{
		Login: c.login, Password: c.password,
		WidthMin: f.Width, WidthMax: f.Width,
		HeightMin: f.Height, HeightMax: f.Height,
		DiamMin: f.Diameter, DiamMax: f.Diameter,
		Season: SeasonCode(f.Season), Brand: f.Brand,
		Page: f.Page, PageSize: f.PageSize,
	}
	var res rawSearchResult
	if err := c.call(ctx, "GetFindTyre", req, &res); err != nil {
		return SearchResult{}, err
	}
	if err := res.Error.Err(); err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Items: normalizeItems(res.PriceRest.List), TotalPages: res.TotalPages}, nil
}

func (c *Client) SearchDisks(ctx context.Context, f DiskFilter) (SearchResult, error) {
	req := struct {
		XMLName  xml.Name `xml:"http://tempuri.org/ GetFindDisk"`
		Login    string   `xml:"login"`
		Password string   `xml:"password"`
		DiamMin  int      `xml:"filter>diameter_min,omitempty"`
		DiamMax  int      `xml:"filter>diameter_max,omitempty"`
		WidthMin float64  `xml:"filter>width_min,omitempty"`
		WidthMax float64  `xml:"filter>width_max,omitempty"`
		Brand    string   `xml:"filter>brand_list>brand,omitempty"`
		Page     int      `xml:"page"`
		PageSize int      `xml:"pageSize"`
	}{
		Login: c.login, Password: c.password,
		DiamMin: f.Diameter, DiamMax: f.Diameter,
		WidthMin: f.Width, WidthMax: f.Width,
		Brand: f.Brand, Page: f.Page, PageSize: f.PageSize,
	}
	var res rawSearchResult
	if err := c.call(ctx, "GetFindDisk", req, &res); err != nil {
		return SearchResult{}, err
	}
	if err := res.Error.Err(); err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Items: normalizeItems(res.PriceRest.List), TotalPages: res.TotalPages}, nil
}

func (c *Client) GoodsInfo(ctx context.Context, code string) (Item, error) {
	req := struct {
		XMLName  xml.Name `xml:"http://tempuri.org/ GetGoodInfo"`
		Login    string   `xml:"login"`
		Password string   `xml:"password"`
		Code     string   `xml:"code"`
	}{Login: c.login, Password: c.password, Code: code}

	var res rawGoodsInfo
	if err := c.call(ctx, "GetGoodInfo", req, &res); err != nil {
		return Item{}, err
	}
	if err := res.Error.Err(); err != nil {
		return Item{}, err
	}
	if res.Item == nil {
		return Item{}, &SupplierError{Message: "good not found: " + code}
	}
	it, ok := normalizeItem(*res.Item)
	if !ok {
		return Item{}, &SupplierError{Message: "good not found: " + code}
	}
	return it, nil
}

// ---- vehicle fitment ----
// Brand/model/year/modification are plain string lists on the wire; the
// supplier has no ids for them, the strings themselves are the keys passed
// back into the next narrowing call.

func (c *Client) CarBrands(ctx context.Context) ([]string, error) {
	req := struct {
		XMLName  xml.Name `xml:"http://tempuri.org/ GetMarkaAvto"`
		Login    string   `xml:"login"`
		Password string   `xml:"password"`
	}{Login: c.login, Password: c.password}

	var res rawCarBrands
	if err := c.call(ctx, "GetMarkaAvto", req, &res); err != nil {
		return nil, err
	}
	if err := res.Error.Err(); err != nil {
		return nil, err
	}
	return res.List.Values, nil
}

func (c *Client) CarModels(ctx context.Context, brand string) ([]string, error) {
	req := struct {
		XMLName  xml.Name `xml:"http://tempuri.org/ GetModelAvto"`
		Login    string   `xml:"login"`
		Password string   `xml:"password"`
		Brand    string   `xml:"marka"`
	}{Login: c.login, Password: c.password, Brand: brand}

	var res rawCarModels
	if err := c.call(ctx, "GetModelAvto", req, &res); err != nil {
		return nil, err
	}
	if err := res.Error.Err(); err != nil {
		return nil, err
	}
	return res.List.Values, nil
}

func (c *Client) CarYears(ctx context.Context, brand, model string) ([]string, error) {
	req := struct {
		XMLName  xml.Name `xml:"http://tempuri.org/ GetYearAvto"`
		Login    string   `xml:"login"`
		Password string   `xml:"password"`
		Brand    string   `xml:"marka"`
		Model    string   `xml:"model"`
	}{Login: c.login, Password: c.password, Brand: brand, Model: model}

	var res rawCarYears
	if err := c.call(ctx, "GetYearAvto", req, &res); err != nil {
		return nil, err
	}
	if err := res.Error.Err(); err != nil {
		return nil, err
	}
	return res.List.Values, nil
}

func (c *Client) CarModifications(ctx context.Context, brand, model, yearBegin, yearEnd string) ([]string, error) {
	req := struct {
		XMLName   xml.Name `xml:"http://tempuri.org/ GetModificationAvto"`
		Login     string   `xml:"login"`
		Password  string   `xml:"password"`
		Brand     string   `xml:"marka"`
		Model     string   `xml:"model"`
		YearBegin string   `xml:"year_beg"`
		YearEnd   string   `xml:"year_end"`
	}{Login: c.login, Password: c.password, Brand: brand, Model: model, YearBegin: yearBegin, YearEnd: yearEnd}

	var res rawCarModifications
	if err := c.call(ctx, "GetModificationAvto", req, &res); err != nil {
		return nil, err
	}
	if err := res.Error.Err(); err != nil {
		return nil, err
	}
	return res.List.Values, nil
}

// GoodsByCar searches products fitting one vehicle modification. podbor_type
// is pinned to 1 (original equipment sizes only).
func (c *Client) GoodsByCar(ctx context.Context, q CarQuery) (SearchResult, error) {
	types := []string{"tyre", "disk"}
	if q.ProductType != "" {
		types = []string{q.ProductType}
	}
	req := struct {
		XMLName      xml.Name `xml:"http://tempuri.org/ GetGoodsByCar"`
		Login        string   `xml:"login"`
		Password     string   `xml:"password"`
		Brand        string   `xml:"filter>marka"`
		Model        string   `xml:"filter>model"`
		YearBegin    string   `xml:"filter>year_beg,omitempty"`
		YearEnd      string   `xml:"filter>year_end,omitempty"`
		Modification string   `xml:"filter>modification"`
		Types        []string `xml:"filter>type"`
		PodborType   []int    `xml:"filter>podbor_type"`
	}{
		Login: c.login, Password: c.password,
		Brand: q.Brand, Model: q.Model,
		YearBegin: q.YearBegin, YearEnd: q.YearEnd,
		Modification: q.Modification,
		Types:        types,
		PodborType:   []int{1},
	}

	var res rawSearchResult
	if err := c.call(ctx, "GetGoodsByCar", req, &res); err != nil {
		return SearchResult{}, err
	}
	if err := res.Error.Err(); err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Items: normalizeItems(res.PriceRest.List), TotalPages: res.TotalPages}, nil
}

func (c *Client) Warehouses(ctx context.Context) ([]Warehouse, error) {
	req := struct {
		XMLName  xml.Name `xml:"http://tempuri.org/ GetWarehouses"`
		Login    string   `xml:"login"`
		Password string   `xml:"password"`
	}{Login: c.login, Password: c.password}

	var res rawWarehousesResult
	if err := c.call(ctx, "GetWarehouses", req, &res); err != nil {
		return nil, err
	}
	if err := res.Error.Err(); err != nil {
		return nil, err
	}
	out := make([]Warehouse, 0, len(res.Warehouses.List))
	for _, w := range res.Warehouses.List {
		out = append(out, Warehouse{ID: w.ID, Name: w.Name, City: w.City})
	}
	return out, nil
}

// CreateOrder is the one-shot supplier order creation; there is no
// reconciliation beyond this call.
func (c *Client) CreateOrder(ctx context.Context, lines []OrderLine) (SupplierOrder, error) {
	type reqLine struct {
		Code     string `xml:"code"`
		Quantity int    `xml:"quantity"`
		Wrh      int    `xml:"wrh"`
	}
	req := struct {
		XMLName  xml.Name  `xml:"http://tempuri.org/ CreateOrder"`
		Login    string    `xml:"login"`
		Password string    `xml:"password"`
		Lines    []reqLine `xml:"order_items>item"`
	}{Login: c.login, Password: c.password}
	for _, l := range lines {
		req.Lines = append(req.Lines, reqLine{Code: l.Code, Quantity: l.Quantity, Wrh: l.WarehouseID})
	}

	var res rawCreateOrderResult
	if err := c.call(ctx, "CreateOrder", req, &res); err != nil {
		return SupplierOrder{}, err
	}
	if err := res.Error.Err(); err != nil {
		return SupplierOrder{}, err
	}
	return SupplierOrder{OrderID: res.OrderID, OrderNumber: res.OrderNumber}, nil
}

// ---- SOAP plumbing ----

type respEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"Body"`
}

type soapFault struct {
	XMLName xml.Name `xml:"Fault"`
	Code    string   `xml:"faultcode"`
	Message string   `xml:"faultstring"`
}

func (c *Client) call(ctx context.Context, action string, body, out any) error {
	payload, err := xml.Marshal(body)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>`)
	buf.Write(payload)
	buf.WriteString(`</soap:Body></soap:Envelope>`)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapNS+action)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, action, err)
	}

	var env respEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %s: bad envelope: %v", ErrUnavailable, action, err)
	}

	var fault soapFault
	if err := xml.Unmarshal(env.Body.Inner, &fault); err == nil && fault.Message != "" {
		return fmt.Errorf("%w: %s: fault: %s", ErrUnavailable, action, fault.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: http %d", ErrUnavailable, action, resp.StatusCode)
	}

	// Body holds <XxxResponse> around <XxxResult>; peel the Response
	// wrapper and decode the result element.
	if err := xml.Unmarshal(responseBody(env.Body.Inner), out); err != nil {
		return fmt.Errorf("%w: %s: bad body: %v", ErrUnavailable, action, err)
	}
	return nil
}

func responseBody(body []byte) []byte {
	var probe struct {
		Inner []byte `xml:",innerxml"`
	}
	if err := xml.Unmarshal(body, &probe); err != nil || len(bytes.TrimSpace(probe.Inner)) == 0 {
		return body
	}
	return probe.Inner
}
