package dataprocessing

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/shared/testutil"
	"retailpulse/pkg/contracts/domain"
)

type sampleRaw struct {
	customers []domain.CustomerRecord
	products  []domain.ProductRecord
	orders    []domain.OrderRecord
	shipments []domain.ShipmentRecord
	refunds   []domain.RefundRecord
}

func decodeSamples(t *testing.T) sampleRaw {
	t.Helper()

	var raw sampleRaw
	var err error
	raw.customers, err = DecodeCustomers(testutil.SampleCustomers())
	require.NoError(t, err)
	raw.products, err = DecodeProducts(testutil.SampleProducts())
	require.NoError(t, err)
	raw.orders, err = DecodeOrders(testutil.SampleOrders())
	require.NoError(t, err)
	raw.shipments, err = DecodeShipments(testutil.SampleShipments())
	require.NoError(t, err)
	raw.refunds, err = DecodeRefunds(testutil.SampleRefunds())
	require.NoError(t, err)
	return raw
}

func cleanAll(t *testing.T, p Profile) (sampleRaw, CleanedData) {
	t.Helper()

	raw := decodeSamples(t)
	c := NewCleaner(slog.Default(), p)
	ctx := context.Background()

	var d CleanedData
	d.Customers = c.CleanCustomers(ctx, raw.customers)
	d.Products = c.CleanProducts(ctx, raw.products)
	d.Orders = c.CleanOrders(ctx, raw.orders)
	d.Shipments = c.CleanShipments(ctx, raw.shipments)
	d.Refunds = c.CleanRefunds(ctx, raw.refunds, d.Orders, d.Products)
	return raw, d
}

func customerIDs(cs []domain.Customer) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}

func shipmentIDs(ss []domain.Shipment) []string {
	ids := make([]string, len(ss))
	for i, s := range ss {
		ids[i] = s.ID
	}
	return ids
}

func TestCleanCustomers(t *testing.T) {
	_, d := cleanAll(t, StandardProfile())

	assert.Equal(t,
		[]string{testutil.CustomerAlice, testutil.CustomerBob, testutil.CustomerCarol},
		customerIDs(d.Customers))
	assert.Equal(t, "Alice", d.Customers[0].Name, "first occurrence wins")
}

func TestCleanCustomers_InvalidIDExcluded(t *testing.T) {
	c := NewCleaner(nil, StandardProfile())
	raw := []domain.CustomerRecord{
		{Row: 0, ID: "not-a-uuid", Name: "Dave", Email: "dave@example.com"},
		{Row: 1, ID: testutil.CustomerAlice, Name: "Alice", Email: "alice@example.com"},
	}

	got := c.CleanCustomers(context.Background(), raw)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Row)
}

func TestCleanProducts(t *testing.T) {
	_, d := cleanAll(t, StandardProfile())

	require.Len(t, d.Products, 3)
	assert.Equal(t, testutil.ProductLaptop, d.Products[0].ID)
	assert.Equal(t, "Laptop Pro", d.Products[0].Name)
	assert.Equal(t, 1200.5, d.Products[0].Price)
	assert.Equal(t, "Desk", d.Products[1].Name)
	assert.Equal(t, "TShirt", d.Products[2].Name)
}

func TestCleanProducts_Categories(t *testing.T) {
	tests := []struct {
		category string
		kept     bool
	}{
		{"Electronics", true},
		{"Furniture", true},
		{"Clothing", true},
		{"Beauty", true},
		{"Sports", true},
		{"Toys", false},
		{"beauty", false},
		{"", false},
	}

	c := NewCleaner(slog.Default(), StandardProfile())
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got := c.CleanProducts(context.Background(), []domain.ProductRecord{{
				ID:       testutil.ProductChair,
				Name:     "Item",
				Category: tt.category,
				Price:    "10",
				Stock:    "1",
			}})
			if tt.kept {
				require.Len(t, got, 1)
				assert.Equal(t, tt.category, got[0].Category)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestCleanOrders(t *testing.T) {
	_, d := cleanAll(t, StandardProfile())

	require.Len(t, d.Orders, 4)
	assert.Equal(t, testutil.Order1, d.Orders[0].ID)
	assert.Equal(t, 2.0, d.Orders[0].Quantity, "first duplicate survives")
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), d.Orders[2].Date)
	assert.Equal(t, testutil.Order4, d.Orders[3].ID)
}

func TestCleanShipments_EnumMode(t *testing.T) {
	_, d := cleanAll(t, StandardProfile())

	assert.Equal(t,
		[]string{testutil.Shipment1, testutil.Shipment2, testutil.Shipment3, testutil.Shipment4, testutil.Shipment8},
		shipmentIDs(d.Shipments))

	s1 := d.Shipments[0]
	assert.Equal(t, "FedEx", s1.Carrier)
	assert.Equal(t, domain.StatusDelivered, s1.Status, "status text is cleaned then canonicalized")
	assert.Equal(t, "2024-01-05 08:00", s1.ShipmentDate)
	assert.Equal(t, "2024-01-08 12:00", s1.DeliveryDate)
	require.NotNil(t, s1.DeliveredAt)

	assert.Equal(t, "UPS", d.Shipments[2].Carrier)
	assert.Equal(t, "FedEx", d.Shipments[4].Carrier)
	assert.Equal(t, domain.StatusDelivered, d.Shipments[4].Status)
	assert.Nil(t, d.Shipments[4].DeliveredAt)
}

func TestCleanShipments_KeywordMode(t *testing.T) {
	_, d := cleanAll(t, LegacyProfile())

	assert.Equal(t,
		[]string{testutil.Shipment1, testutil.Shipment4, testutil.Shipment7, testutil.Shipment8},
		shipmentIDs(d.Shipments))

	statuses := make([]domain.ShipmentStatus, len(d.Shipments))
	for i, s := range d.Shipments {
		statuses[i] = s.Status
	}
	assert.Equal(t, []domain.ShipmentStatus{
		domain.StatusKeywordDelivered,
		domain.StatusKeywordShipped,
		domain.StatusKeywordInTransit,
		domain.StatusKeywordDelivered,
	}, statuses)
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   domain.ShipmentStatus
		wantOK bool
	}{
		{"Shipped", domain.StatusKeywordShipped, true},
		{"shipped and delivered", domain.StatusKeywordDelivered, true},
		{" IN_TRANSIT ", domain.StatusKeywordInTransit, true},
		{"Delivered!!", domain.StatusKeywordDelivered, true},
		{"Cancelled by user", domain.StatusKeywordCancelled, true},
		{"in transit", "", false},
		{"Delayed", "", false},
	}
	for _, tt := range tests {
		got, ok := ClassifyStatus(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestNormalizeCarrier(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"fedex", "FedEx"},
		{"USPS", "USPS"},
		{"-FedEx", "FedEx"},
		{"-fedex", "fedex"},
		{"Pigeon", "Pigeon"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCarrier(tt.in), "input %q", tt.in)
	}
}

func TestCanonicalStatus(t *testing.T) {
	assert.Equal(t, domain.StatusDelivered, CanonicalStatus("delivered"))
	assert.Equal(t, domain.StatusUnknown, CanonicalStatus(" UNKNOWN "))
	assert.Equal(t, domain.ShipmentStatus("intransit"), CanonicalStatus("intransit"))
}

func TestCleanRefunds_Standard(t *testing.T) {
	_, d := cleanAll(t, StandardProfile())

	require.Len(t, d.Refunds, 2)
	assert.Equal(t, testutil.Refund1, d.Refunds[0].ID)
	assert.Equal(t, 100.5, d.Refunds[0].Amount)
	assert.Equal(t, testutil.Refund2, d.Refunds[1].ID)
	assert.Equal(t, 1250.0, d.Refunds[1].Amount)
}

func TestCleanRefunds_Legacy(t *testing.T) {
	_, d := cleanAll(t, LegacyProfile())

	require.Len(t, d.Refunds, 3, "legacy keeps duplicate refund ids")
	assert.Equal(t, 100.5, d.Refunds[0].Amount)
	assert.Equal(t, 1250.0, d.Refunds[1].Amount)
	assert.Equal(t, "Wrong size", d.Refunds[1].Reason)
	assert.Equal(t, testutil.Refund1, d.Refunds[2].ID)
	assert.Equal(t, 30.0, d.Refunds[2].Amount)
}

func TestCleanRefunds_OrphanExcluded(t *testing.T) {
	_, d := cleanAll(t, StandardProfile())

	orders := make(map[string]bool)
	for _, o := range d.Orders {
		orders[o.ID] = true
	}
	products := make(map[string]bool)
	for _, p := range d.Products {
		products[p.ID] = true
	}

	for _, r := range d.Refunds {
		assert.NotEqual(t, testutil.OrderMissing, r.OrderID)
		assert.True(t, orders[r.OrderID], "refund %s references a cleaned order", r.ID)
		assert.True(t, products[r.ProductID], "refund %s references a cleaned product", r.ID)
	}
}

func TestCleanerLogsDuration(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	c := NewCleaner(logger, StandardProfile())

	raw := decodeSamples(t)
	c.CleanOrders(context.Background(), raw.orders)

	records := logs.FindByMessage("cleaned dataset")
	require.Len(t, records, 1)
	assert.Equal(t, "orders", records[0].Attrs["entity"])
	assert.Equal(t, int64(4), records[0].Attrs["kept"])
	assert.Equal(t, int64(4), records[0].Attrs["dropped"])
	assert.Contains(t, records[0].Attrs, "duration")
	testutil.AssertNoErrors(t, logs)
}

func TestCleanedSubsetOfRaw(t *testing.T) {
	for _, p := range []Profile{StandardProfile(), LegacyProfile()} {
		t.Run(p.Name, func(t *testing.T) {
			raw, d := cleanAll(t, p)

			assert.LessOrEqual(t, len(d.Customers), len(raw.customers))
			assert.LessOrEqual(t, len(d.Shipments), len(raw.shipments))
			for _, c := range d.Customers {
				assert.Equal(t, raw.customers[c.Row].ID, c.ID)
			}
			for _, o := range d.Orders {
				assert.Equal(t, raw.orders[o.Row].ID, o.ID)
			}
			for _, s := range d.Shipments {
				assert.Equal(t, raw.shipments[s.Row].ID, s.ID)
			}
		})
	}
}
