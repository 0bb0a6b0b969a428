package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"retailpulse/internal/dataprocessing"
	"retailpulse/internal/validation"
	"retailpulse/pkg/contracts/domain"
)

// CleanedFileName returns the export file name of an entity, e.g. "cleaned_orders.csv"
func CleanedFileName(e domain.Entity) string {
	return "cleaned_" + e.FileName()
}

// CleanedHeaders returns the export header of an entity
func CleanedHeaders(e domain.Entity) []string {
	switch e {
	case domain.EntityCustomers:
		return []string{"id", "name", "email", "phone"}
	case domain.EntityProducts:
		return []string{"id", "name", "category", "price", "stock"}
	case domain.EntityOrders:
		return []string{"id", "customer_id", "product_id", "quantity", "date"}
	case domain.EntityShipments:
		return []string{"id", "order_id", "carrier", "status", "shipment_date", "delivery_date"}
	case domain.EntityRefunds:
		return []string{"id", "order_id", "product_id", "reason", "refund_amount"}
	default:
		return nil
	}
}

// CleanedRecords converts an entity's cleaned rows into CSV records
func CleanedRecords(e domain.Entity, data dataprocessing.CleanedData) [][]string {
	var records [][]string
	switch e {
	case domain.EntityCustomers:
		for _, c := range data.Customers {
			records = append(records, []string{c.ID, c.Name, c.Email, c.Phone})
		}
	case domain.EntityProducts:
		for _, p := range data.Products {
			records = append(records, []string{p.ID, p.Name, p.Category, formatFloat(p.Price), formatNumber(p.Stock)})
		}
	case domain.EntityOrders:
		for _, o := range data.Orders {
			records = append(records, []string{o.ID, o.CustomerID, o.ProductID, formatNumber(o.Quantity), formatDate(o.Date)})
		}
	case domain.EntityShipments:
		for _, s := range data.Shipments {
			records = append(records, []string{s.ID, s.OrderID, s.Carrier, string(s.Status), s.ShipmentDate, s.DeliveryDate})
		}
	case domain.EntityRefunds:
		for _, r := range data.Refunds {
			records = append(records, []string{r.ID, r.OrderID, r.ProductID, r.Reason, formatFloat(r.Amount)})
		}
	}
	return records
}

// CleanedExporter writes cleaned_<entity>.csv for every dataset of a run
type CleanedExporter struct {
	writer    *CSVWriter
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewCleanedExporter creates an exporter writing into dir
func NewCleanedExporter(dir string, logger *slog.Logger) *CleanedExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanedExporter{
		writer:    NewCSVWriter(dir, logger),
		validator: validation.NewFileValidator(logger),
		logger:    logger,
	}
}

// Export writes all five cleaned datasets and returns the written paths in entity order
func (e *CleanedExporter) Export(ctx context.Context, data dataprocessing.CleanedData) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.writer.dir != "" {
		if err := e.validator.ValidateOutputDirectory(e.writer.dir); err != nil {
			return nil, fmt.Errorf("export cleaned datasets: %w", err)
		}
	}

	paths := make([]string, 0, len(domain.Entities()))
	for _, entity := range domain.Entities() {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path, err := e.writer.WriteSimpleCSV(CleanedFileName(entity), CleanedHeaders(entity), CleanedRecords(entity, data))
		if err != nil {
			return paths, fmt.Errorf("export cleaned %s: %w", entity, err)
		}
		paths = append(paths, path)
	}

	e.logger.InfoContext(ctx, "Exported cleaned datasets", slog.Int("files", len(paths)))
	return paths, nil
}
