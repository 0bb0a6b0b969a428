package dataprocessing

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// CleanedData is the output of one cleaning pass
type CleanedData struct {
	Customers []domain.Customer
	Products  []domain.Product
	Orders    []domain.Order
	Shipments []domain.Shipment
	Refunds   []domain.Refund
}

// Count returns the cleaned row count of an entity
func (d CleanedData) Count(e domain.Entity) int {
	switch e {
	case domain.EntityCustomers:
		return len(d.Customers)
	case domain.EntityProducts:
		return len(d.Products)
	case domain.EntityOrders:
		return len(d.Orders)
	case domain.EntityShipments:
		return len(d.Shipments)
	case domain.EntityRefunds:
		return len(d.Refunds)
	default:
		return 0
	}
}

// AggregatorConfig holds the ranking limits and shipment scoring mode
type AggregatorConfig struct {
	TopN         int        // customer and product ranking size
	CarrierLimit int        // 0 keeps every carrier
	ReasonLimit  int        // 0 keeps every reason
	StatusMode   StatusMode // how shipments are scored
}

// AggregatorConfigFrom derives aggregation settings from a profile
func AggregatorConfigFrom(p Profile) AggregatorConfig {
	return AggregatorConfig{
		TopN:         p.TopN,
		CarrierLimit: p.CarrierLimit,
		ReasonLimit:  p.ReasonLimit,
		StatusMode:   p.StatusMode,
	}
}

// Aggregator computes data-quality and business metrics from cleaned datasets
type Aggregator struct {
	logger *slog.Logger
	config AggregatorConfig
}

// NewAggregator creates an aggregator
func NewAggregator(logger *slog.Logger, config AggregatorConfig) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TopN <= 0 {
		config.TopN = 5
	}
	if config.StatusMode == "" {
		config.StatusMode = StatusModeEnum
	}
	return &Aggregator{
		logger: logger.With(slog.String("component", "aggregator")),
		config: config,
	}
}

// DataQuality reports |raw| - |cleaned| per entity
func (a *Aggregator) DataQuality(raw map[domain.Entity]int, cleaned CleanedData) domain.DataQualityMetrics {
	var m domain.DataQualityMetrics
	for _, e := range domain.Entities() {
		m.Set(e, raw[e]-cleaned.Count(e))
	}
	return m
}

// BusinessMetrics computes the four business blocks
func (a *Aggregator) BusinessMetrics(ctx context.Context, cleaned CleanedData) domain.BusinessMetrics {
	start := time.Now()

	m := domain.BusinessMetrics{
		TopCustomersBySpend:  a.TopCustomers(cleaned.Orders, cleaned.Customers),
		TopProductsByRevenue: a.TopProducts(cleaned.Orders, cleaned.Products),
		ShippingPerformance:  a.ShippingPerformance(cleaned.Shipments),
		RefundReasonAnalysis: a.RefundReasons(cleaned.Refunds),
	}

	a.logger.InfoContext(ctx, "computed business metrics",
		slog.Int("top_customers", len(m.TopCustomersBySpend)),
		slog.Int("top_products", len(m.TopProductsByRevenue)),
		slog.Int("carriers", len(m.ShippingPerformance)),
		slog.Int("reasons", len(m.RefundReasonAnalysis)),
		slog.Duration("duration", time.Since(start)))

	return m
}

// ValidNames pairs every cleaned customer id with its name, in cleaned order
func (a *Aggregator) ValidNames(customers []domain.Customer) []domain.ValidName {
	names := make([]domain.ValidName, 0, len(customers))
	for _, c := range customers {
		names = append(names, domain.ValidName{UUID: c.ID, Name: c.Name})
	}
	return names
}

// groupKey identifies an (id, name) group
type groupKey struct {
	id   string
	name string
}

// sumGroups accumulates values per key, keeping keys in first-seen order
func sumGroups(keys []groupKey, values []float64) ([]groupKey, []float64) {
	index := make(map[groupKey]int)
	var order []groupKey
	var sums []float64
	for i, k := range keys {
		pos, ok := index[k]
		if !ok {
			pos = len(order)
			index[k] = pos
			order = append(order, k)
			sums = append(sums, 0)
		}
		sums[pos] += values[i]
	}
	return order, sums
}

// topN sorts rows by value descending, keeping equal rows in their current
// order, and truncates to n when n > 0. Values are finite: CoerceFloat maps
// non-finite input to NaN and the range filters drop those rows.
func topN[T any](rows []T, n int, value func(T) float64) []T {
	slices.SortStableFunc(rows, func(x, y T) int {
		return cmp.Compare(value(y), value(x))
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// TopCustomers joins orders to customers and ranks (customer_id, name) groups by summed quantity
func (a *Aggregator) TopCustomers(orders []domain.Order, customers []domain.Customer) []domain.CustomerSpend {
	byID := make(map[string]domain.Customer, len(customers))
	for _, c := range customers {
		if _, ok := byID[c.ID]; !ok {
			byID[c.ID] = c
		}
	}

	var keys []groupKey
	var values []float64
	for _, o := range orders {
		c, ok := byID[o.CustomerID]
		if !ok {
			continue
		}
		keys = append(keys, groupKey{id: o.CustomerID, name: c.Name})
		values = append(values, o.Quantity)
	}

	groups, sums := sumGroups(keys, values)
	rows := make([]domain.CustomerSpend, len(groups))
	for i, g := range groups {
		rows[i] = domain.CustomerSpend{CustomerID: g.id, Name: g.name, TotalSpent: sums[i]}
	}
	return topN(rows, a.config.TopN, func(r domain.CustomerSpend) float64 { return r.TotalSpent })
}

// TopProducts joins orders to products and ranks (product_id, name) groups by quantity × price
func (a *Aggregator) TopProducts(orders []domain.Order, products []domain.Product) []domain.ProductRevenue {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = p
		}
	}

	var keys []groupKey
	var values []float64
	for _, o := range orders {
		p, ok := byID[o.ProductID]
		if !ok {
			continue
		}
		keys = append(keys, groupKey{id: o.ProductID, name: p.Name})
		values = append(values, o.Quantity*p.Price)
	}

	groups, sums := sumGroups(keys, values)
	rows := make([]domain.ProductRevenue, len(groups))
	for i, g := range groups {
		rows[i] = domain.ProductRevenue{ProductID: g.id, Name: g.name, TotalRevenue: sums[i]}
	}
	return topN(rows, a.config.TopN, func(r domain.ProductRevenue) float64 { return r.TotalRevenue })
}

// ShippingPerformance groups shipments by carrier. Carriers are listed in
// name order; with a carrier limit the busiest carriers are kept.
func (a *Aggregator) ShippingPerformance(shipments []domain.Shipment) []domain.CarrierPerformance {
	index := make(map[string]int)
	var rows []domain.CarrierPerformance
	for _, s := range shipments {
		pos, ok := index[s.Carrier]
		if !ok {
			pos = len(rows)
			index[s.Carrier] = pos
			rows = append(rows, domain.CarrierPerformance{Carrier: s.Carrier})
		}
		row := &rows[pos]
		row.TotalShipments++
		a.scoreShipment(row, s)
	}

	slices.SortFunc(rows, func(x, y domain.CarrierPerformance) int {
		return cmp.Compare(x.Carrier, y.Carrier)
	})
	if a.config.CarrierLimit > 0 {
		rows = topN(rows, a.config.CarrierLimit, func(r domain.CarrierPerformance) float64 {
			return float64(r.TotalShipments)
		})
	}
	return rows
}

func (a *Aggregator) scoreShipment(row *domain.CarrierPerformance, s domain.Shipment) {
	if a.config.StatusMode == StatusModeKeyword {
		switch {
		case s.Status != domain.StatusKeywordDelivered:
			row.UndeliveredShipments++
		case s.DeliveredAt != nil:
			row.OnTimeDeliveries++
		default:
			row.DelayedShipments++
		}
		return
	}

	switch s.Status {
	case domain.StatusDelivered:
		row.OnTimeDeliveries++
	case domain.StatusDelayed:
		row.DelayedShipments++
	case domain.StatusUnknown:
		row.UndeliveredShipments++
	}
}

// RefundReasons groups refunds by reason. Reasons are listed in name order;
// with a reason limit the largest refund totals are kept.
func (a *Aggregator) RefundReasons(refunds []domain.Refund) []domain.RefundReasonSummary {
	index := make(map[string]int)
	var rows []domain.RefundReasonSummary
	for _, r := range refunds {
		pos, ok := index[r.Reason]
		if !ok {
			pos = len(rows)
			index[r.Reason] = pos
			rows = append(rows, domain.RefundReasonSummary{Reason: r.Reason})
		}
		rows[pos].TotalReturns++
		rows[pos].TotalRefundAmount += r.Amount
	}

	slices.SortFunc(rows, func(x, y domain.RefundReasonSummary) int {
		return cmp.Compare(x.Reason, y.Reason)
	})
	if a.config.ReasonLimit > 0 {
		rows = topN(rows, a.config.ReasonLimit, func(r domain.RefundReasonSummary) float64 {
			return r.TotalRefundAmount
		})
	}
	return rows
}
