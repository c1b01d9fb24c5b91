package fourtochki

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wrx861/tyres/internal/pricing"
)

// Item is the normalized catalog product every other package consumes. All
// supplier shape quirks stop at this boundary.
type Item struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Model     string          `json:"model,omitempty"`
	BasePrice decimal.Decimal `json:"price_original"`
	ImgSmall  string          `json:"img_small,omitempty"`

	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Diameter int    `json:"diameter,omitempty"`
	Season   string `json:"season,omitempty"`
	DiskType string `json:"disk_type,omitempty"`
	Color    string `json:"color,omitempty"`

	Offers []pricing.Offer `json:"warehouses"`
}

type SearchResult struct {
	Items      []Item `json:"items"`
	TotalPages int    `json:"total_pages"`
}

type Warehouse struct {
	ID   int    `json:"warehouse_id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

type TireFilter struct {
	Width    int
	Height   int
	Diameter int
	Season   string // summer, winter, all-season
	Brand    string
	Page     int
	PageSize int
}

type DiskFilter struct {
	Diameter int
	Width    float64
	Brand    string
	Page     int
	PageSize int
}

// CarQuery identifies one vehicle modification for fitment search.
// ProductType narrows the result to "tyre" or "disk"; empty means both.
type CarQuery struct {
	Brand        string
	Model        string
	YearBegin    string
	YearEnd      string
	Modification string
	ProductType  string
}

type OrderLine struct {
	Code        string
	Quantity    int
	WarehouseID int
}

type SupplierOrder struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// SupplierError is a business-level error the supplier returned inside an
// otherwise successful response.
type SupplierError struct {
	Code    string
	Message string
}

func (e *SupplierError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supplier error %s: %s", e.Code, e.Message)
	}
	return "supplier error: " + e.Message
}

// seasonCodes maps the storefront's season names onto the supplier's codes.
var seasonCodes = map[string]string{
	"summer":     "s",
	"winter":     "w",
	"all-season": "ws",
}

func SeasonCode(season string) string { return seasonCodes[season] }

// ---- raw wire shapes ----
// The supplier wraps every list in a container element, omits containers
// entirely when empty, and ships an error element that is often present but
// blank. These structs absorb all of that.

type rawError struct {
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

// Err treats a structurally present but blank error element as no error:
// only meaningful content counts.
func (e *rawError) Err() error {
	if e == nil || e.Message == "" {
		return nil
	}
	return &SupplierError{Code: e.Code, Message: e.Message}
}

type rawOffer struct {
	WarehouseID   int    `xml:"wrh_id"`
	WarehouseName string `xml:"wrh_name"`
	Price         string `xml:"price"`
	Rest          int    `xml:"rest"`
}

type rawItem struct {
	Code     string `xml:"code"`
	Name     string `xml:"name"`
	Brand    string `xml:"brand"`
	Model    string `xml:"model"`
	Price    string `xml:"price"`
	ImgSmall string `xml:"img_small"`

	Width    int    `xml:"width"`
	Height   int    `xml:"height"`
	Diameter int    `xml:"diameter"`
	Season   string `xml:"season"`
	DiskType string `xml:"disk_type"`
	Color    string `xml:"color"`

	Offers struct {
		List []rawOffer `xml:"wh_price_rest"`
	} `xml:"whpr"`
}

type rawSearchResult struct {
	Error      *rawError `xml:"error"`
	TotalPages int       `xml:"totalPages"`
	PriceRest  struct {
		List []rawItem `xml:"priceRest"`
	} `xml:"price_rest_list"`
}

type rawGoodsInfo struct {
	Error   *rawError `xml:"error"`
	Item    *rawItem  `xml:"good"`
}

type rawCarBrands struct {
	Error *rawError `xml:"error"`
	List  struct {
		Values []string `xml:"string"`
	} `xml:"marka_list"`
}

type rawCarModels struct {
	Error *rawError `xml:"error"`
	List  struct {
		Values []string `xml:"string"`
	} `xml:"model_list"`
}

type rawCarYears struct {
	Error *rawError `xml:"error"`
	List  struct {
		Values []string `xml:"string"`
	} `xml:"year_list"`
}

type rawCarModifications struct {
	Error *rawError `xml:"error"`
	List  struct {
		Values []string `xml:"string"`
	} `xml:"modification_list"`
}

type rawWarehousesResult struct {
	Error      *rawError `xml:"error"`
	Warehouses struct {
		List []struct {
			ID   int    `xml:"wrh_id"`
			Name string `xml:"name"`
			City string `xml:"city"`
		} `xml:"warehouse"`
	} `xml:"warehouses"`
}

type rawCreateOrderResult struct {
	Error       *rawError `xml:"error"`
	OrderID     string    `xml:"order_id"`
	OrderNumber string    `xml:"order_number"`
}
