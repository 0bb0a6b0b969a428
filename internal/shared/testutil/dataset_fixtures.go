package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"retailpulse/pkg/contracts/domain"
)

// Identifiers used by the sample datasets
const (
	CustomerAlice = "11111111-1111-4111-8111-111111111111"
	CustomerBob   = "22222222-2222-4222-8222-222222222222"
	CustomerCarol = "33333333-3333-4333-8333-333333333333"
	CustomerBlank = "44444444-4444-4444-8444-444444444444"
	CustomerFrank = "55555555-5555-4555-8555-555555555555"

	ProductLaptop = "a0000000-0000-4000-8000-000000000001"
	ProductDesk   = "a0000000-0000-4000-8000-000000000002"
	ProductShirt  = "a0000000-0000-4000-8000-000000000003"
	ProductRobot  = "a0000000-0000-4000-8000-000000000004"
	ProductChair  = "a0000000-0000-4000-8000-000000000005"

	Order1       = "b0000000-0000-4000-8000-000000000001"
	Order2       = "b0000000-0000-4000-8000-000000000002"
	Order3       = "b0000000-0000-4000-8000-000000000003"
	Order4       = "b0000000-0000-4000-8000-000000000004"
	Order5       = "b0000000-0000-4000-8000-000000000005"
	Order6       = "b0000000-0000-4000-8000-000000000006"
	Order7       = "b0000000-0000-4000-8000-000000000007"
	OrderMissing = "b0000000-0000-4000-8000-000000000099"

	Shipment1 = "c0000000-0000-4000-8000-000000000001"
	Shipment2 = "c0000000-0000-4000-8000-000000000002"
	Shipment3 = "c0000000-0000-4000-8000-000000000003"
	Shipment4 = "c0000000-0000-4000-8000-000000000004"
	Shipment5 = "c0000000-0000-4000-8000-000000000005"
	Shipment6 = "c0000000-0000-4000-8000-000000000006"
	Shipment7 = "c0000000-0000-4000-8000-000000000007"
	Shipment8 = "c0000000-0000-4000-8000-000000000008"

	Refund1 = "d0000000-0000-4000-8000-000000000001"
	Refund2 = "d0000000-0000-4000-8000-000000000002"
	Refund3 = "d0000000-0000-4000-8000-000000000003"
	Refund4 = "d0000000-0000-4000-8000-000000000004"
	Refund5 = "d0000000-0000-4000-8000-000000000005"
	Refund7 = "d0000000-0000-4000-8000-000000000007"
)

// NewTable builds a raw table
func NewTable(entity domain.Entity, header []string, rows ...[]string) *domain.Table {
	if rows == nil {
		rows = [][]string{}
	}
	return &domain.Table{Entity: entity, Header: header, Rows: rows}
}

// SampleCustomers has 7 rows; 3 survive cleaning
func SampleCustomers() *domain.Table {
	return NewTable(domain.EntityCustomers,
		[]string{"id", "name", "email", "phone"},
		[]string{CustomerAlice, "Alice", "alice@example.com", ""},
		[]string{CustomerBob, "Bob", "bob-at-example", "5551234567"},
		[]string{CustomerCarol, "Carol", "carol@example.com", "555"},
		[]string{"not-a-uuid", "Dave", "dave@example.com", ""},
		[]string{CustomerBlank, "   ", "eve@example.com", ""},
		[]string{CustomerAlice, "Alice Again", "alice2@example.com", ""},
		[]string{CustomerFrank, "Frank", "frank@", "12345"},
	)
}

// SampleProducts has 5 rows; 3 survive cleaning
func SampleProducts() *domain.Table {
	return NewTable(domain.EntityProducts,
		[]string{"id", "name", "category", "price", "stock"},
		[]string{ProductLaptop, "Laptop Pro!", "Electronics", "1200.50", "10"},
		[]string{ProductDesk, "Desk", "Furniture", "300", "5"},
		[]string{ProductShirt, "T-Shirt", "Clothing", "20", "100"},
		[]string{ProductRobot, "Robot", "Toys", "50", "1"},
		[]string{ProductChair, "Chair", "Furniture", "abc", "3"},
	)
}

// SampleOrders has 8 rows; 4 survive cleaning. Order1 appears twice.
func SampleOrders() *domain.Table {
	return NewTable(domain.EntityOrders,
		[]string{"id", "customer_id", "product_id", "quantity", "date"},
		[]string{Order1, CustomerAlice, ProductLaptop, "2", "2024-01-05"},
		[]string{Order2, CustomerBob, ProductDesk, "5", "2024-01-06 10:00:00"},
		[]string{Order3, CustomerAlice, ProductShirt, "3", "Order placed 2024-02-01"},
		[]string{Order4, CustomerCarol, ProductLaptop, "1", "2024-02-10"},
		[]string{Order5, CustomerBob, ProductDesk, "1", "yesterday"},
		[]string{Order1, CustomerAlice, ProductLaptop, "9", "2024-01-07"},
		[]string{Order6, CustomerCarol, ProductShirt, "-1", "2024-02-11"},
		[]string{Order7, CustomerAlice, ProductDesk, "4", "2024-02-30"},
	)
}

// SampleShipments has 10 rows. The standard profile keeps 5, the legacy profile 4.
func SampleShipments() *domain.Table {
	return NewTable(domain.EntityShipments,
		[]string{"id", "order_id", "carrier", "status", "shipment_date", "delivery_date"},
		[]string{Shipment1, Order1, "fedex", "  Delivered!! ", "2024-01-05 08:00:00", "2024-01-08 12:00:00"},
		[]string{Shipment2, Order2, "UPS", "Delayed", "2024-01-06", ""},
		[]string{Shipment3, Order3, "ups", "Unknown", "2024-02-01", ""},
		[]string{Shipment4, Order4, "DHL", "Shipped", "2024-02-10", ""},
		[]string{Shipment5, Order1, "Pigeon", "Delivered", "", ""},
		[]string{"bad-shipment-id", Order2, "UPS", "Delivered", "", ""},
		[]string{Shipment1, Order3, "UPS", "Delayed", "", ""},
		[]string{Shipment6, Order2, "USPS", "In Transit", "", ""},
		[]string{Shipment7, Order3, "DHL", "in_transit", "", ""},
		[]string{Shipment8, Order2, "FEDEX", "delivered", "", ""},
	)
}

// SampleRefunds has 7 rows. The standard profile keeps 2, the legacy profile 3.
func SampleRefunds() *domain.Table {
	return NewTable(domain.EntityRefunds,
		[]string{"id", "order_id", "product_id", "reason", "refund_amount"},
		[]string{Refund1, Order1, ProductLaptop, "Defective", "100.50"},
		[]string{Refund2, Order2, ProductDesk, "Wrong size", "1,250.00 USD"},
		[]string{Refund3, OrderMissing, ProductLaptop, "Defective", "20"},
		[]string{Refund4, Order1, ProductLaptop, "   ", "10"},
		[]string{Refund5, Order3, ProductShirt, "Defective", "-5"},
		[]string{Refund1, Order4, ProductLaptop, "Defective", "30.00"},
		[]string{Refund7, Order4, ProductRobot, "Defective", "10"},
	)
}

// SampleTables returns every sample dataset keyed by entity
func SampleTables() map[domain.Entity]*domain.Table {
	return map[domain.Entity]*domain.Table{
		domain.EntityCustomers: SampleCustomers(),
		domain.EntityProducts:  SampleProducts(),
		domain.EntityOrders:    SampleOrders(),
		domain.EntityShipments: SampleShipments(),
		domain.EntityRefunds:   SampleRefunds(),
	}
}

// WriteTableCSV writes a table as <dir>/<entity>.csv
func WriteTableCSV(t *testing.T, dir string, table *domain.Table) string {
	t.Helper()

	path := filepath.Join(dir, table.Entity.FileName())
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	return path
}

// WriteSampleDatasets writes all five sample CSVs into dir and returns dir
func WriteSampleDatasets(t *testing.T, dir string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("create dataset dir: %v", err)
	}
	for _, e := range domain.Entities() {
		WriteTableCSV(t, dir, SampleTables()[e])
	}
	return dir
}
