package fourtochki

import (
	"encoding/xml"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSearchResult(t *testing.T) {
	t.Parallel()

	const body = `
	<GetFindTyreResult>
	  <error><Code></Code><Message></Message></error>
	  <totalPages>3</totalPages>
	  <price_rest_list>
	    <priceRest>
	      <code>2329500</code>
	      <name>Hakkapeliitta R5 205/55 R16</name>
	      <brand>Nokian</brand>
	      <price>7450,50</price>
	      <width>205</width><height>55</height><diameter>16</diameter>
	      <season>w</season>
	      <whpr>
	        <wh_price_rest><wrh_id>5</wrh_id><wrh_name>Moscow</wrh_name><price>7450,50</price><rest>8</rest></wh_price_rest>
	        <wh_price_rest><wrh_id>42</wrh_id><wrh_name>Krasnodar</wrh_name><price>7590</price><rest>2</rest></wh_price_rest>
	        <wh_price_rest><wrh_id>7</wrh_id><wrh_name>Empty</wrh_name><price>7300</price><rest>0</rest></wh_price_rest>
	      </whpr>
	    </priceRest>
	    <priceRest>
	      <code></code>
	      <name>placeholder row</name>
	    </priceRest>
	    <priceRest>
	      <code>999</code>
	      <name>no price row</name>
	      <price></price>
	    </priceRest>
	  </price_rest_list>
	</GetFindTyreResult>`

	var res rawSearchResult
	require.NoError(t, xml.Unmarshal([]byte(body), &res))

	// structurally present but blank error element is not an error
	assert.NoError(t, res.Error.Err())
	assert.Equal(t, 3, res.TotalPages)

	items := normalizeItems(res.PriceRest.List)
	require.Len(t, items, 1, "placeholder and priceless rows are dropped")

	it := items[0]
	assert.Equal(t, "2329500", it.Code)
	assert.Equal(t, "Nokian", it.Brand)
	assert.True(t, it.BasePrice.Equal(decimal.RequireFromString("7450.50")), "got %s", it.BasePrice)

	// zero-rest offer dropped, the rest kept in supplier order
	require.Len(t, it.Offers, 2)
	assert.Equal(t, 5, it.Offers[0].WarehouseID)
	assert.Equal(t, 8, it.Offers[0].Stock)
	assert.Equal(t, 42, it.Offers[1].WarehouseID)
	assert.True(t, it.Offers[1].Price.Equal(decimal.RequireFromString("7590")))
}

func TestNormalizeMissingLists(t *testing.T) {
	t.Parallel()

	var res rawSearchResult
	require.NoError(t, xml.Unmarshal([]byte(`<GetFindTyreResult><totalPages>0</totalPages></GetFindTyreResult>`), &res))

	assert.NoError(t, res.Error.Err())
	assert.Empty(t, normalizeItems(res.PriceRest.List))
}

func TestSupplierError(t *testing.T) {
	t.Parallel()

	var res rawSearchResult
	require.NoError(t, xml.Unmarshal([]byte(
		`<GetFindTyreResult><error><Code>103</Code><Message>login failed</Message></error></GetFindTyreResult>`), &res))

	err := res.Error.Err()
	require.Error(t, err)
	var serr *SupplierError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "103", serr.Code)
	assert.Contains(t, serr.Error(), "login failed")
}

func TestOfferInheritsItemPrice(t *testing.T) {
	t.Parallel()

	raw := rawItem{Code: "77", Price: "1000"}
	raw.Offers.List = []rawOffer{{WarehouseID: 9, Rest: 4}}

	it, ok := normalizeItem(raw)
	require.True(t, ok)
	require.Len(t, it.Offers, 1)
	assert.True(t, it.Offers[0].Price.Equal(decimal.NewFromInt(1000)))
}

func TestSeasonCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "s", SeasonCode("summer"))
	assert.Equal(t, "w", SeasonCode("winter"))
	assert.Equal(t, "ws", SeasonCode("all-season"))
	assert.Equal(t, "", SeasonCode("monsoon"))
}
