package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"retailpulse/internal/dataprocessing"
	"retailpulse/internal/files"
	"retailpulse/pkg/contracts/domain"
)

// Report sheet names
const (
	SheetValidNames    = "valid_names"
	SheetDataQuality   = "data_quality"
	SheetTopCustomers  = "top_customers"
	SheetTopProducts   = "top_products"
	SheetShipping      = "shipping_performance"
	SheetRefundReasons = "refund_reasons"
)

// WorkbookExporter writes the report and the cleaned datasets into one .xlsx file
type WorkbookExporter struct {
	path    string
	manager *files.Manager
	logger  *slog.Logger
}

// NewWorkbookExporter creates an exporter writing to path
func NewWorkbookExporter(path string, logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{path: path, manager: files.NewManager(logger), logger: logger}
}

type sheet struct {
	name   string
	header []string
	rows   [][]any
}

// Export writes one sheet per report block followed by one sheet per cleaned entity
func (e *WorkbookExporter) Export(ctx context.Context, r *domain.Report, data dataprocessing.CleanedData) error {
	sheets := reportSheets(r)
	for _, entity := range domain.Entities() {
		records := CleanedRecords(entity, data)
		rows := make([][]any, len(records))
		for i, rec := range records {
			rows[i] = toCells(rec)
		}
		sheets = append(sheets, sheet{name: string(entity), header: CleanedHeaders(entity), rows: rows})
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s); err != nil {
			return err
		}
	}

	err := e.manager.WriteWith(e.path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	e.logger.InfoContext(ctx, "Exported report workbook",
		slog.String("path", e.path),
		slog.Int("sheets", len(sheets)))
	return nil
}

func writeSheet(f *excelize.File, s sheet) error {
	header := toCells(s.header)
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", s.name, err)
	}
	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", s.name, i+1, err)
		}
	}
	return nil
}

func reportSheets(r *domain.Report) []sheet {
	names := sheet{name: SheetValidNames, header: []string{"uuid", "name"}}
	for _, v := range r.ValidNames {
		names.rows = append(names.rows, []any{v.UUID, v.Name})
	}

	quality := sheet{name: SheetDataQuality, header: []string{"metric", "invalid_records"}}
	for _, entity := range domain.Entities() {
		quality.rows = append(quality.rows, []any{entity.QualityKey(), r.DataQualityMetrics.Get(entity)})
	}

	customers := sheet{name: SheetTopCustomers, header: []string{"customer_id", "name", "total_spent"}}
	for _, c := range r.BusinessMetrics.TopCustomersBySpend {
		customers.rows = append(customers.rows, []any{c.CustomerID, c.Name, c.TotalSpent})
	}

	products := sheet{name: SheetTopProducts, header: []string{"product_id", "name", "total_revenue"}}
	for _, p := range r.BusinessMetrics.TopProductsByRevenue {
		products.rows = append(products.rows, []any{p.ProductID, p.Name, p.TotalRevenue})
	}

	shipping := sheet{name: SheetShipping, header: []string{
		"carrier", "total_shipments", "on_time_deliveries", "delayed_shipments", "undelivered_shipments",
	}}
	for _, c := range r.BusinessMetrics.ShippingPerformance {
		shipping.rows = append(shipping.rows, []any{
			c.Carrier, c.TotalShipments, c.OnTimeDeliveries, c.DelayedShipments, c.UndeliveredShipments,
		})
	}

	reasons := sheet{name: SheetRefundReasons, header: []string{"reason", "total_returns", "total_refund_amount"}}
	for _, rr := range r.BusinessMetrics.RefundReasonAnalysis {
		reasons.rows = append(reasons.rows, []any{rr.Reason, rr.TotalReturns, rr.TotalRefundAmount})
	}

	return []sheet{names, quality, customers, products, shipping, reasons}
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
