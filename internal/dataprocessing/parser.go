package dataprocessing

import (
	"fmt"
	"strings"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// columnReader resolves cells by column name for one table
type columnReader struct {
	columns map[string]int
}

func newColumnReader(t *domain.Table, want domain.Entity) (*columnReader, error) {
	if t == nil {
		return nil, errors.NewParsingError(fmt.Sprintf("%s dataset is nil", want), nil)
	}
	if t.Entity != "" && t.Entity != want {
		return nil, errors.NewParsingError(fmt.Sprintf("expected %s dataset, got %s", want, t.Entity), nil)
	}

	columns := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		name := domain.NormalizeColumn(h)
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}

	var missing []string
	for _, col := range want.RequiredColumns() {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewParsingError(
			fmt.Sprintf("%s dataset is missing required columns: %s", want, strings.Join(missing, ", ")), nil).
			WithContext("entity", string(want))
	}

	return &columnReader{columns: columns}, nil
}

// cell returns the text at row/column, or "" for absent columns and short rows
func (c *columnReader) cell(row []string, column string) string {
	i, ok := c.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// DecodeCustomers maps a customers table to raw records by column name
func DecodeCustomers(t *domain.Table) ([]domain.CustomerRecord, error) {
	c, err := newColumnReader(t, domain.EntityCustomers)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CustomerRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		out = append(out, domain.CustomerRecord{
			Row:   i,
			ID:    c.cell(row, "id"),
			Name:  c.cell(row, "name"),
			Email: c.cell(row, "email"),
			Phone: c.cell(row, "phone"),
		})
	}
	return out, nil
}

// DecodeProducts maps a products table to raw records by column name
func DecodeProducts(t *domain.Table) ([]domain.ProductRecord, error) {
	c, err := newColumnReader(t, domain.EntityProducts)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ProductRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		out = append(out, domain.ProductRecord{
			Row:      i,
			ID:       c.cell(row, "id"),
			Name:     c.cell(row, "name"),
			Category: c.cell(row, "category"),
			Price:    c.cell(row, "price"),
			Stock:    c.cell(row, "stock"),
		})
	}
	return out, nil
}

// DecodeOrders maps an orders table to raw records by column name
func DecodeOrders(t *domain.Table) ([]domain.OrderRecord, error) {
	c, err := newColumnReader(t, domain.EntityOrders)
	if err != nil {
		return nil, err
	}
	out := make([]domain.OrderRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		out = append(out, domain.OrderRecord{
			Row:        i,
			ID:         c.cell(row, "id"),
			CustomerID: c.cell(row, "customer_id"),
			ProductID:  c.cell(row, "product_id"),
			Quantity:   c.cell(row, "quantity"),
			Date:       c.cell(row, "date"),
		})
	}
	return out, nil
}

// DecodeShipments maps a shipments table to raw records by column name.
// shipment_date and delivery_date are optional.
func DecodeShipments(t *domain.Table) ([]domain.ShipmentRecord, error) {
	c, err := newColumnReader(t, domain.EntityShipments)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ShipmentRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		out = append(out, domain.ShipmentRecord{
			Row:          i,
			ID:           c.cell(row, "id"),
			OrderID:      c.cell(row, "order_id"),
			Carrier:      c.cell(row, "carrier"),
			Status:       c.cell(row, "status"),
			ShipmentDate: c.cell(row, "shipment_date"),
			DeliveryDate: c.cell(row, "delivery_date"),
		})
	}
	return out, nil
}

// DecodeRefunds maps a refunds table to raw records by column name
func DecodeRefunds(t *domain.Table) ([]domain.RefundRecord, error) {
	c, err := newColumnReader(t, domain.EntityRefunds)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RefundRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		out = append(out, domain.RefundRecord{
			Row:          i,
			ID:           c.cell(row, "id"),
			OrderID:      c.cell(row, "order_id"),
			ProductID:    c.cell(row, "product_id"),
			Reason:       c.cell(row, "reason"),
			RefundAmount: c.cell(row, "refund_amount"),
		})
	}
	return out, nil
}
