package domain

import (
	"fmt"
	"strings"
)

// Entity names one of the five commerce datasets handled by a run
type Entity string

const (
	EntityCustomers Entity = "customers"
	EntityProducts  Entity = "products"
	EntityOrders    Entity = "orders"
	EntityShipments Entity = "shipments"
	EntityRefunds   Entity = "refunds"
)

// Entities returns every entity in cleaning dependency order.
// Shipments and refunds come last because they reference orders and products.
func Entities() []Entity {
	return []Entity{
		EntityCustomers,
		EntityProducts,
		EntityOrders,
		EntityShipments,
		EntityRefunds,
	}
}

// ParseEntity converts a dataset name into an Entity
func ParseEntity(name string) (Entity, error) {
	for _, e := range Entities() {
		if string(e) == name {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown entity %q", name)
}

// FileName returns the conventional dataset file name, e.g. "orders.csv"
func (e Entity) FileName() string {
	return string(e) + ".csv"
}

// QualityKey returns the data_quality_metrics key for this entity.
// Refunds are reported as returns, matching the published report format.
func (e Entity) QualityKey() string {
	if e == EntityRefunds {
		return "invalid_returns_records"
	}
	return "invalid_" + string(e) + "_records"
}

// RequiredColumns lists the header columns a raw dataset must carry
func (e Entity) RequiredColumns() []string {
	switch e {
	case EntityCustomers:
		return []string{"id", "name", "email", "phone"}
	case EntityProducts:
		return []string{"id", "name", "category", "price", "stock"}
	case EntityOrders:
		return []string{"id", "customer_id", "product_id", "quantity", "date"}
	case EntityShipments:
		return []string{"id", "order_id", "carrier", "status"}
	case EntityRefunds:
		return []string{"id", "order_id", "product_id", "reason", "refund_amount"}
	default:
		return nil
	}
}

// Table is a raw tabular dataset as loaded: a header row plus text rows
type Table struct {
	Entity Entity     `json:"entity"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Len returns the number of data rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NormalizeColumn lower-cases a header cell and drops surrounding space and a UTF-8 BOM
func NormalizeColumn(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// ColumnIndex returns the position of a named column or -1.
// Header cells are compared after NormalizeColumn.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if NormalizeColumn(h) == name {
			return i
		}
	}
	return -1
}

// MissingColumns reports which required columns the header lacks
func (t *Table) MissingColumns() []string {
	var missing []string
	for _, col := range t.Entity.RequiredColumns() {
		if t.ColumnIndex(col) < 0 {
			missing = append(missing, col)
		}
	}
	return missing
}
