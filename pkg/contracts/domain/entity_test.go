package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntity(t *testing.T) {
	for _, e := range Entities() {
		got, err := ParseEntity(string(e))
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	_, err := ParseEntity("returns")
	assert.Error(t, err)
	_, err = ParseEntity("Orders")
	assert.Error(t, err, "names are case sensitive")
}

func TestEntity_QualityKey(t *testing.T) {
	tests := []struct {
		entity Entity
		want   string
	}{
		{EntityCustomers, "invalid_customers_records"},
		{EntityProducts, "invalid_products_records"},
		{EntityOrders, "invalid_orders_records"},
		{EntityShipments, "invalid_shipments_records"},
		{EntityRefunds, "invalid_returns_records"},
	}

	for _, tt := range tests {
		t.Run(string(tt.entity), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entity.QualityKey())
			assert.Equal(t, string(tt.entity)+".csv", tt.entity.FileName())
			assert.NotEmpty(t, tt.entity.RequiredColumns())
		})
	}
	assert.Nil(t, Entity("returns").RequiredColumns())
}

func TestTable_Columns(t *testing.T) {
	table := &Table{
		Entity: EntityShipments,
		Header: []string{"\ufeffID", " Order_ID ", "carrier"},
		Rows:   [][]string{{"a", "b", "c"}},
	}

	assert.Equal(t, 0, table.ColumnIndex("id"))
	assert.Equal(t, 1, table.ColumnIndex("order_id"))
	assert.Equal(t, -1, table.ColumnIndex("delivery_date"))
	assert.Equal(t, []string{"status"}, table.MissingColumns())
	assert.Equal(t, 1, table.Len())

	var nilTable *Table
	assert.Equal(t, 0, nilTable.Len())
}
