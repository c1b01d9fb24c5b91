package fourtochki

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// soapServer answers every POST with the given result element wrapped in the
// usual Envelope/Body/XxxResponse layers, capturing the request body.
func soapServer(t *testing.T, result string, captured *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if captured != nil {
			*captured = string(body)
		}
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>`+result+`</soap:Body>
</soap:Envelope>`)
	}))
}

func TestCarBrands(t *testing.T) {
	t.Parallel()

	srv := soapServer(t, `<GetMarkaAvtoResponse><GetMarkaAvtoResult>
		<error><Code></Code><Message></Message></error>
		<marka_list><string>BMW</string><string>Lada</string></marka_list>
	</GetMarkaAvtoResult></GetMarkaAvtoResponse>`, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p")
	brands, err := c.CarBrands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BMW", "Lada"}, brands)
}

func TestCarModifications(t *testing.T) {
	t.Parallel()

	var body string
	srv := soapServer(t, `<GetModificationAvtoResponse><GetModificationAvtoResult>
		<modification_list><string>2.0 TDI</string></modification_list>
	</GetModificationAvtoResult></GetModificationAvtoResponse>`, &body)
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p")
	mods, err := c.CarModifications(context.Background(), "Audi", "A4", "2015", "2019")
	require.NoError(t, err)
	assert.Equal(t, []string{"2.0 TDI"}, mods)

	assert.Contains(t, body, "<marka>Audi</marka>")
	assert.Contains(t, body, "<year_beg>2015</year_beg>")
	assert.Contains(t, body, "<year_end>2019</year_end>")
}

func TestGoodsByCar(t *testing.T) {
	t.Parallel()

	var body string
	srv := soapServer(t, `<GetGoodsByCarResponse><GetGoodsByCarResult>
		<price_rest_list>
		  <priceRest>
		    <code>555</code><name>Fit 205/55 R16</name><brand>Nokian</brand><price>5000</price>
		    <whpr><wh_price_rest><wrh_id>5</wrh_id><price>5000</price><rest>4</rest></wh_price_rest></whpr>
		  </priceRest>
		</price_rest_list>
	</GetGoodsByCarResult></GetGoodsByCarResponse>`, &body)
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p")
	res, err := c.GoodsByCar(context.Background(), CarQuery{
		Brand: "BMW", Model: "X5", YearBegin: "2018", YearEnd: "2020",
		Modification: "3.0d", ProductType: "tyre",
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "555", res.Items[0].Code)
	require.Len(t, res.Items[0].Offers, 1)
	assert.Equal(t, 4, res.Items[0].Offers[0].Stock)

	assert.Contains(t, body, "<marka>BMW</marka>")
	assert.Contains(t, body, "<modification>3.0d</modification>")
	assert.Contains(t, body, "<type>tyre</type>")
	assert.NotContains(t, body, "<type>disk</type>")
	assert.Contains(t, body, "<podbor_type>1</podbor_type>")
}

func TestGoodsByCarDefaultsToBothTypes(t *testing.T) {
	t.Parallel()

	var body string
	srv := soapServer(t, `<GetGoodsByCarResponse><GetGoodsByCarResult></GetGoodsByCarResult></GetGoodsByCarResponse>`, &body)
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p")
	_, err := c.GoodsByCar(context.Background(), CarQuery{Brand: "BMW", Model: "X5", Modification: "3.0d"})
	require.NoError(t, err)
	assert.Contains(t, body, "<type>tyre</type>")
	assert.Contains(t, body, "<type>disk</type>")
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	var body string
	srv := soapServer(t, `<CreateOrderResponse><CreateOrderResult>
		<order_id>778899</order_id><order_number>N-120</order_number>
	</CreateOrderResult></CreateOrderResponse>`, &body)
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p")
	so, err := c.CreateOrder(context.Background(), []OrderLine{
		{Code: "2329500", Quantity: 4, WarehouseID: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, "778899", so.OrderID)
	assert.Equal(t, "N-120", so.OrderNumber)

	assert.Contains(t, body, "<code>2329500</code>")
	assert.Contains(t, body, "<quantity>4</quantity>")
	assert.Contains(t, body, "<wrh>5</wrh>")
}

func TestSoapFaultIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := soapServer(t, `<soap:Fault><faultcode>soap:Server</faultcode><faultstring>boom</faultstring></soap:Fault>`, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p")
	_, err := c.CarBrands(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
