package exporter

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"retailpulse/internal/dataprocessing"
	"retailpulse/internal/shared/testutil"
	"retailpulse/pkg/contracts/domain"
)

func sampleCleaned() dataprocessing.CleanedData {
	delivered := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	return dataprocessing.CleanedData{
		Customers: []domain.Customer{
			{ID: testutil.CustomerAlice, Name: "Alice", Email: "alice@example.com"},
		},
		Products: []domain.Product{
			{ID: testutil.ProductLaptop, Name: "Laptop Pro", Category: "Electronics", Price: 1200.5, Stock: 10},
		},
		Orders: []domain.Order{
			{ID: testutil.Order1, CustomerID: testutil.CustomerAlice, ProductID: testutil.ProductLaptop,
				Quantity: 2, Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		},
		Shipments: []domain.Shipment{
			{ID: testutil.Shipment1, OrderID: testutil.Order1, Carrier: "FedEx", Status: domain.StatusDelivered,
				ShipmentDate: "2024-01-05 08:00", DeliveryDate: "2024-01-08 12:00", DeliveredAt: &delivered},
		},
		Refunds: []domain.Refund{
			{ID: testutil.Refund1, OrderID: testutil.Order1, ProductID: testutil.ProductLaptop, Reason: "Defective", Amount: 100.5},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCleanedExporter_Export(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewCleanedExporter(dir, nil).Export(context.Background(), sampleCleaned())
	require.NoError(t, err)
	require.Len(t, paths, 5)

	for i, e := range domain.Entities() {
		assert.Equal(t, filepath.Join(dir, CleanedFileName(e)), paths[i])
		records := readCSV(t, paths[i])
		require.Len(t, records, 2, string(e))
		assert.Equal(t, CleanedHeaders(e), records[0])
	}

	assert.Equal(t, []string{testutil.ProductLaptop, "Laptop Pro", "Electronics", "1200.50", "10"}, readCSV(t, paths[1])[1])
	assert.Equal(t, []string{testutil.Order1, testutil.CustomerAlice, testutil.ProductLaptop, "2", "2024-01-05"}, readCSV(t, paths[2])[1])
	assert.Equal(t, "Delivered", readCSV(t, paths[3])[1][3])
	assert.Equal(t, "100.50", readCSV(t, paths[4])[1][4])
}

func TestCleanedExporter_EmptyDatasetsWriteHeaderOnly(t *testing.T) {
	paths, err := NewCleanedExporter(t.TempDir(), nil).Export(context.Background(), dataprocessing.CleanedData{})
	require.NoError(t, err)

	for i, e := range domain.Entities() {
		assert.Equal(t, [][]string{CleanedHeaders(e)}, readCSV(t, paths[i]))
	}
}

func TestCleanedExporter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := NewCleanedExporter(t.TempDir(), nil).Export(ctx, sampleCleaned())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, paths)
}

func TestCleanedExporter_UnusableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	paths, err := NewCleanedExporter(filepath.Join(blocker, "cleaned"), nil).Export(context.Background(), sampleCleaned())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output directory")
	assert.Empty(t, paths)
}

func TestCleanedExporter_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "cleaned")

	paths, err := NewCleanedExporter(dir, nil).Export(context.Background(), sampleCleaned())
	require.NoError(t, err)
	assert.Len(t, paths, len(domain.Entities()))
	assert.NoFileExists(t, filepath.Join(dir, ".write_test"))
}

func TestCleanedFileName(t *testing.T) {
	assert.Equal(t, "cleaned_refunds.csv", CleanedFileName(domain.EntityRefunds))
}

func TestWorkbookExporter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	report := &domain.Report{
		ValidNames:         []domain.ValidName{{UUID: testutil.CustomerAlice, Name: "Alice"}},
		DataQualityMetrics: domain.DataQualityMetrics{InvalidOrdersRecords: 4},
		BusinessMetrics: domain.BusinessMetrics{
			ShippingPerformance: []domain.CarrierPerformance{{Carrier: "FedEx", TotalShipments: 2, OnTimeDeliveries: 2}},
		},
	}
	report.Normalize()

	require.NoError(t, NewWorkbookExporter(path, nil).Export(context.Background(), report, sampleCleaned()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetValidNames, SheetDataQuality, SheetTopCustomers, SheetTopProducts, SheetShipping, SheetRefundReasons,
		"customers", "products", "orders", "shipments", "refunds",
	}, f.GetSheetList())

	rows, err := f.GetRows(SheetDataQuality)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"invalid_orders_records", "4"}, rows[3])

	rows, err = f.GetRows(SheetShipping)
	require.NoError(t, err)
	assert.Equal(t, []string{"FedEx", "2", "2", "0", "0"}, rows[1])

	rows, err = f.GetRows("products")
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.ProductLaptop, "Laptop Pro", "Electronics", "1200.50", "10"}, rows[1])
}
