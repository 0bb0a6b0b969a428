package domain

// Report is the structure handed to sinks at the end of a run.
// Field names and nesting are part of the published format.
type Report struct {
	ValidNames         []ValidName        `json:"valid_names" yaml:"valid_names"`
	DataQualityMetrics DataQualityMetrics `json:"data_quality_metrics" yaml:"data_quality_metrics"`
	BusinessMetrics    BusinessMetrics    `json:"business_metrics" yaml:"business_metrics"`
}

// ValidName pairs a cleaned customer id with its name
type ValidName struct {
	UUID string `json:"uuid" yaml:"uuid"`
	Name string `json:"name" yaml:"name"`
}

// DataQualityMetrics counts rows removed from each raw dataset during cleaning
type DataQualityMetrics struct {
	InvalidCustomersRecords int `json:"invalid_customers_records" yaml:"invalid_customers_records"`
	InvalidProductsRecords  int `json:"invalid_products_records" yaml:"invalid_products_records"`
	InvalidOrdersRecords    int `json:"invalid_orders_records" yaml:"invalid_orders_records"`
	InvalidShipmentsRecords int `json:"invalid_shipments_records" yaml:"invalid_shipments_records"`
	InvalidReturnsRecords   int `json:"invalid_returns_records" yaml:"invalid_returns_records"`
}

// Set stores the invalid count for an entity
func (m *DataQualityMetrics) Set(e Entity, invalid int) {
	switch e {
	case EntityCustomers:
		m.InvalidCustomersRecords = invalid
	case EntityProducts:
		m.InvalidProductsRecords = invalid
	case EntityOrders:
		m.InvalidOrdersRecords = invalid
	case EntityShipments:
		m.InvalidShipmentsRecords = invalid
	case EntityRefunds:
		m.InvalidReturnsRecords = invalid
	}
}

// Get returns the invalid count for an entity
func (m DataQualityMetrics) Get(e Entity) int {
	switch e {
	case EntityCustomers:
		return m.InvalidCustomersRecords
	case EntityProducts:
		return m.InvalidProductsRecords
	case EntityOrders:
		return m.InvalidOrdersRecords
	case EntityShipments:
		return m.InvalidShipmentsRecords
	case EntityRefunds:
		return m.InvalidReturnsRecords
	default:
		return 0
	}
}

// BusinessMetrics groups the four aggregate blocks of a report
type BusinessMetrics struct {
	TopCustomersBySpend  []CustomerSpend       `json:"top_5_customers_by_total_spend" yaml:"top_5_customers_by_total_spend"`
	TopProductsByRevenue []ProductRevenue      `json:"top_5_products_by_revenue" yaml:"top_5_products_by_revenue"`
	ShippingPerformance  []CarrierPerformance  `json:"shipping_performance_by_carrier" yaml:"shipping_performance_by_carrier"`
	RefundReasonAnalysis []RefundReasonSummary `json:"refund_reason_analysis" yaml:"refund_reason_analysis"`
}

// CustomerSpend is one row of the top customers block
type CustomerSpend struct {
	CustomerID string  `json:"customer_id" yaml:"customer_id"`
	Name       string  `json:"name" yaml:"name"`
	TotalSpent float64 `json:"total_spent" yaml:"total_spent"`
}

// ProductRevenue is one row of the top products block
type ProductRevenue struct {
	ProductID    string  `json:"product_id" yaml:"product_id"`
	Name         string  `json:"name" yaml:"name"`
	TotalRevenue float64 `json:"total_revenue" yaml:"total_revenue"`
}

// CarrierPerformance is one row of the shipping performance block
type CarrierPerformance struct {
	Carrier              string `json:"carrier" yaml:"carrier"`
	TotalShipments       int    `json:"total_shipments" yaml:"total_shipments"`
	OnTimeDeliveries     int    `json:"on_time_deliveries" yaml:"on_time_deliveries"`
	DelayedShipments     int    `json:"delayed_shipments" yaml:"delayed_shipments"`
	UndeliveredShipments int    `json:"undelivered_shipments" yaml:"undelivered_shipments"`
}

// RefundReasonSummary is one row of the refund reason block
type RefundReasonSummary struct {
	Reason            string  `json:"reason" yaml:"reason"`
	TotalReturns      int     `json:"total_returns" yaml:"total_returns"`
	TotalRefundAmount float64 `json:"total_refund_amount" yaml:"total_refund_amount"`
}

// Normalize replaces nil slices with empty ones so serialized lists are never null
func (r *Report) Normalize() {
	if r.ValidNames == nil {
		r.ValidNames = []ValidName{}
	}
	if r.BusinessMetrics.TopCustomersBySpend == nil {
		r.BusinessMetrics.TopCustomersBySpend = []CustomerSpend{}
	}
	if r.BusinessMetrics.TopProductsByRevenue == nil {
		r.BusinessMetrics.TopProductsByRevenue = []ProductRevenue{}
	}
	if r.BusinessMetrics.ShippingPerformance == nil {
		r.BusinessMetrics.ShippingPerformance = []CarrierPerformance{}
	}
	if r.BusinessMetrics.RefundReasonAnalysis == nil {
		r.BusinessMetrics.RefundReasonAnalysis = []RefundReasonSummary{}
	}
}
