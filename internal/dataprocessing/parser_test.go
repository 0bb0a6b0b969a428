package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/errors"
	"retailpulse/internal/shared/testutil"
	"retailpulse/pkg/contracts/domain"
)

func TestDecodeByColumnName(t *testing.T) {
	table := testutil.NewTable(domain.EntityOrders,
		[]string{"\ufeffdate", "Quantity", "product_id", "customer_id", "id", "note"},
		[]string{"2024-01-05", "2", testutil.ProductLaptop, testutil.CustomerAlice, testutil.Order1, "x"},
		[]string{"2024-01-06", "1"},
	)

	orders, err := DecodeOrders(table)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, domain.OrderRecord{
		Row:        0,
		ID:         testutil.Order1,
		CustomerID: testutil.CustomerAlice,
		ProductID:  testutil.ProductLaptop,
		Quantity:   "2",
		Date:       "2024-01-05",
	}, orders[0])

	assert.Equal(t, 1, orders[1].Row)
	assert.Equal(t, "1", orders[1].Quantity)
	assert.Empty(t, orders[1].ID, "short rows decode missing cells as empty")
}

func TestDecodeMissingColumns(t *testing.T) {
	table := testutil.NewTable(domain.EntityRefunds, []string{"id", "order_id", "reason"})

	_, err := DecodeRefunds(table)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeParsing, errors.TypeOf(err))
	assert.Contains(t, err.Error(), "product_id, refund_amount")
}

func TestDecodeWrongEntity(t *testing.T) {
	_, err := DecodeCustomers(testutil.SampleProducts())
	assert.Error(t, err)

	_, err = DecodeCustomers(nil)
	assert.Error(t, err)
}

func TestDecodeShipmentsOptionalDates(t *testing.T) {
	table := testutil.NewTable(domain.EntityShipments,
		[]string{"id", "order_id", "carrier", "status"},
		[]string{testutil.Shipment1, testutil.Order1, "UPS", "Shipped"},
	)

	shipments, err := DecodeShipments(table)
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.Empty(t, shipments[0].DeliveryDate)
	assert.Empty(t, shipments[0].ShipmentDate)
}

func TestDecodeSamples(t *testing.T) {
	customers, err := DecodeCustomers(testutil.SampleCustomers())
	require.NoError(t, err)
	assert.Len(t, customers, 7)

	products, err := DecodeProducts(testutil.SampleProducts())
	require.NoError(t, err)
	assert.Len(t, products, 5)

	refunds, err := DecodeRefunds(testutil.SampleRefunds())
	require.NoError(t, err)
	assert.Equal(t, "1,250.00 USD", refunds[1].RefundAmount)
}
