package dataprocessing

import (
	"strings"

	"retailpulse/internal/validation"
	"retailpulse/pkg/contracts/domain"
)

// Fixed enums
var (
	ProductCategories = []string{"Electronics", "Furniture", "Clothing", "Beauty", "Sports"}
	Carriers          = []string{"FedEx", "UPS", "DHL", "USPS"}
	EnumStatuses      = []domain.ShipmentStatus{
		domain.StatusShipped,
		domain.StatusDelivered,
		domain.StatusDelayed,
		domain.StatusUnknown,
	}
)

var carrierMapping = map[string]string{
	"fedex": "FedEx",
	"ups":   "UPS",
	"dhl":   "DHL",
	"usps":  "USPS",
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func nonBlank(v string) bool {
	return strings.TrimSpace(v) != ""
}

// CustomerRules builds the customer rule set
func CustomerRules(p Profile) Rules[domain.CustomerRecord, domain.Customer] {
	var prepare RuleSet[domain.CustomerRecord]
	if p.CommonCleanup[domain.EntityCustomers] {
		prepare = append(prepare, NormalizeStep("clean_common", func(r domain.CustomerRecord) domain.CustomerRecord {
			r.ID = CleanCommon(r.ID)
			r.Name = CleanCommon(r.Name)
			r.Email = CleanCommon(r.Email)
			r.Phone = CleanCommon(r.Phone)
			return r
		}))
	}

	validate := RuleSet[domain.Customer]{
		FilterStep("valid_id", func(c domain.Customer) bool { return validation.IsValidUUID(c.ID) }),
		FilterStep("name_present", func(c domain.Customer) bool { return nonBlank(c.Name) }),
		FilterStep("contact_present", func(c domain.Customer) bool {
			return validation.IsValidEmail(c.Email) || validation.IsValidPhone(c.Phone)
		}),
	}
	if p.Dedupe[domain.EntityCustomers] {
		validate = append(validate, DedupeStep("dedupe_id", func(c domain.Customer) string { return c.ID }))
	}

	return Rules[domain.CustomerRecord, domain.Customer]{
		Prepare: prepare,
		Parse: func(r domain.CustomerRecord) domain.Customer {
			return domain.Customer{Row: r.Row, ID: r.ID, Name: r.Name, Email: r.Email, Phone: r.Phone}
		},
		Validate: validate,
	}
}

// ProductRules builds the product rule set
func ProductRules(p Profile) Rules[domain.ProductRecord, domain.Product] {
	var prepare RuleSet[domain.ProductRecord]
	if p.CommonCleanup[domain.EntityProducts] {
		prepare = append(prepare, NormalizeStep("clean_common", func(r domain.ProductRecord) domain.ProductRecord {
			r.ID = CleanCommon(r.ID)
			r.Name = CleanCommon(r.Name)
			r.Category = CleanCommon(r.Category)
			r.Price = CleanCommon(r.Price)
			r.Stock = CleanCommon(r.Stock)
			return r
		}))
	}

	validate := RuleSet[domain.Product]{
		FilterStep("valid_id", func(pr domain.Product) bool { return validation.IsValidUUID(pr.ID) }),
		FilterStep("name_present", func(pr domain.Product) bool { return nonBlank(pr.Name) }),
		FilterStep("known_category", func(pr domain.Product) bool { return contains(ProductCategories, pr.Category) }),
		FilterStep("price_positive", func(pr domain.Product) bool { return pr.Price > 0 }),
		FilterStep("stock_non_negative", func(pr domain.Product) bool { return pr.Stock >= 0 }),
		NormalizeStep("strip_name_symbols", func(pr domain.Product) domain.Product {
			pr.Name = StripNameSymbols(pr.Name)
			return pr
		}),
	}
	if p.Dedupe[domain.EntityProducts] {
		validate = append(validate, DedupeStep("dedupe_id", func(pr domain.Product) string { return pr.ID }))
	}

	return Rules[domain.ProductRecord, domain.Product]{
		Prepare: prepare,
		Parse: func(r domain.ProductRecord) domain.Product {
			return domain.Product{
				Row:      r.Row,
				ID:       r.ID,
				Name:     r.Name,
				Category: r.Category,
				Price:    CoerceFloat(r.Price),
				Stock:    CoerceFloat(r.Stock),
			}
		},
		Validate: validate,
	}
}

// OrderRules builds the order rule set
func OrderRules(p Profile) Rules[domain.OrderRecord, domain.Order] {
	var prepare RuleSet[domain.OrderRecord]
	if p.CommonCleanup[domain.EntityOrders] {
		prepare = append(prepare, NormalizeStep("clean_common", func(r domain.OrderRecord) domain.OrderRecord {
			r.ID = CleanCommon(r.ID)
			r.CustomerID = CleanCommon(r.CustomerID)
			r.ProductID = CleanCommon(r.ProductID)
			r.Quantity = CleanCommon(r.Quantity)
			r.Date = CleanCommon(r.Date)
			return r
		}))
	}

	validate := RuleSet[domain.Order]{
		FilterStep("valid_id", func(o domain.Order) bool { return validation.IsValidUUID(o.ID) }),
		FilterStep("valid_customer_id", func(o domain.Order) bool { return validation.IsValidUUID(o.CustomerID) }),
		FilterStep("valid_product_id", func(o domain.Order) bool { return validation.IsValidUUID(o.ProductID) }),
		FilterStep("quantity_non_negative", func(o domain.Order) bool { return o.Quantity >= 0 }),
		FilterStep("date_present", func(o domain.Order) bool { return !o.Date.IsZero() }),
	}
	if p.Dedupe[domain.EntityOrders] {
		validate = append(validate, DedupeStep("dedupe_id", func(o domain.Order) string { return o.ID }))
	}

	return Rules[domain.OrderRecord, domain.Order]{
		Prepare: prepare,
		Parse: func(r domain.OrderRecord) domain.Order {
			o := domain.Order{
				Row:        r.Row,
				ID:         r.ID,
				CustomerID: r.CustomerID,
				ProductID:  r.ProductID,
				Quantity:   CoerceFloat(r.Quantity),
			}
			if d, ok := ExtractISODate(r.Date); ok {
				o.Date = d
			}
			return o
		},
		Validate: validate,
	}
}

// NormalizeCarrier maps a carrier name to its canonical casing, falling back
// to the input, then strips leading hyphens
func NormalizeCarrier(v string) string {
	if canonical, ok := carrierMapping[strings.ToLower(v)]; ok {
		v = canonical
	}
	return StripLeadingHyphens(v)
}

// CanonicalStatus matches a status case-insensitively against the enum.
// Unmatched input is returned unchanged.
func CanonicalStatus(v string) domain.ShipmentStatus {
	trimmed := strings.TrimSpace(v)
	for _, s := range EnumStatuses {
		if strings.EqualFold(trimmed, string(s)) {
			return s
		}
	}
	return domain.ShipmentStatus(v)
}

// ClassifyStatus buckets free-text status by keyword. ok is false for text
// that matches no bucket.
func ClassifyStatus(v string) (status domain.ShipmentStatus, ok bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case strings.Contains(v, "shipped") && !strings.Contains(v, "delivered"):
		return domain.StatusKeywordShipped, true
	case strings.Contains(v, "in_transit"):
		return domain.StatusKeywordInTransit, true
	case strings.Contains(v, "delivered"):
		return domain.StatusKeywordDelivered, true
	case strings.Contains(v, "cancel"):
		return domain.StatusKeywordCancelled, true
	default:
		return "", false
	}
}

// ShipmentRules builds the shipment rule set for the profile's status mode.
// In keyword mode the status field is left out of common cleanup because the
// in_transit keyword relies on the underscore.
func ShipmentRules(p Profile) Rules[domain.ShipmentRecord, domain.Shipment] {
	keyword := p.StatusMode == StatusModeKeyword

	var prepare RuleSet[domain.ShipmentRecord]
	if p.CommonCleanup[domain.EntityShipments] {
		prepare = append(prepare,
			NormalizeStep("clean_common", func(r domain.ShipmentRecord) domain.ShipmentRecord {
				r.ID = CleanCommon(r.ID)
				r.OrderID = CleanCommon(r.OrderID)
				r.Carrier = CleanCommon(r.Carrier)
				if !keyword {
					r.Status = CleanCommon(r.Status)
				}
				r.ShipmentDate = CleanCommon(r.ShipmentDate)
				r.DeliveryDate = CleanCommon(r.DeliveryDate)
				return r
			}),
			NormalizeStep("normalize_dates", func(r domain.ShipmentRecord) domain.ShipmentRecord {
				r.ShipmentDate = NormalizeDateText(r.ShipmentDate)
				r.DeliveryDate = NormalizeDateText(r.DeliveryDate)
				return r
			}),
		)
	}
	prepare = append(prepare, NormalizeStep("normalize_carrier", func(r domain.ShipmentRecord) domain.ShipmentRecord {
		r.Carrier = NormalizeCarrier(r.Carrier)
		return r
	}))

	validate := RuleSet[domain.Shipment]{
		FilterStep("valid_id", func(s domain.Shipment) bool { return validation.IsValidUUID(s.ID) }),
		FilterStep("valid_order_id", func(s domain.Shipment) bool { return validation.IsValidUUID(s.OrderID) }),
		FilterStep("known_carrier", func(s domain.Shipment) bool { return contains(Carriers, s.Carrier) }),
	}
	if keyword {
		validate = append(validate, FilterStep("classified_status", func(s domain.Shipment) bool { return s.Status != "" }))
	} else {
		validate = append(validate, FilterStep("known_status", func(s domain.Shipment) bool { return contains(EnumStatuses, s.Status) }))
	}
	if p.Dedupe[domain.EntityShipments] {
		validate = append(validate, DedupeStep("dedupe_id", func(s domain.Shipment) string { return s.ID }))
	}

	return Rules[domain.ShipmentRecord, domain.Shipment]{
		Prepare: prepare,
		Parse: func(r domain.ShipmentRecord) domain.Shipment {
			s := domain.Shipment{
				Row:          r.Row,
				ID:           r.ID,
				OrderID:      r.OrderID,
				Carrier:      r.Carrier,
				ShipmentDate: r.ShipmentDate,
				DeliveryDate: r.DeliveryDate,
			}
			if keyword {
				s.Status, _ = ClassifyStatus(r.Status)
			} else {
				s.Status = CanonicalStatus(r.Status)
			}
			if t, ok := ParseTimestamp(r.DeliveryDate); ok {
				s.DeliveredAt = &t
			}
			return s
		},
		Validate: validate,
	}
}

// ReferenceIndex holds the cleaned ids refunds may point at
type ReferenceIndex struct {
	orders   map[string]struct{}
	products map[string]struct{}
}

// NewReferenceIndex indexes cleaned order and product ids
func NewReferenceIndex(orders []domain.Order, products []domain.Product) ReferenceIndex {
	idx := ReferenceIndex{
		orders:   make(map[string]struct{}, len(orders)),
		products: make(map[string]struct{}, len(products)),
	}
	for _, o := range orders {
		idx.orders[o.ID] = struct{}{}
	}
	for _, p := range products {
		idx.products[p.ID] = struct{}{}
	}
	return idx
}

// HasOrder reports whether id is a cleaned order
func (idx ReferenceIndex) HasOrder(id string) bool {
	_, ok := idx.orders[id]
	return ok
}

// HasProduct reports whether id is a cleaned product
func (idx ReferenceIndex) HasProduct(id string) bool {
	_, ok := idx.products[id]
	return ok
}

// RefundRules builds the refund rule set against already-cleaned orders and products
func RefundRules(p Profile, refs ReferenceIndex) Rules[domain.RefundRecord, domain.Refund] {
	var prepare RuleSet[domain.RefundRecord]
	if p.CommonCleanup[domain.EntityRefunds] {
		prepare = append(prepare, NormalizeStep("clean_common", func(r domain.RefundRecord) domain.RefundRecord {
			r.ID = CleanCommon(r.ID)
			r.OrderID = CleanCommon(r.OrderID)
			r.ProductID = CleanCommon(r.ProductID)
			r.Reason = CleanCommon(r.Reason)
			r.RefundAmount = CleanCommon(r.RefundAmount)
			return r
		}))
	}

	validate := RuleSet[domain.Refund]{
		FilterStep("valid_id", func(r domain.Refund) bool { return validation.IsValidUUID(r.ID) }),
		FilterStep("valid_order_id", func(r domain.Refund) bool { return validation.IsValidUUID(r.OrderID) }),
		FilterStep("valid_product_id", func(r domain.Refund) bool { return validation.IsValidUUID(r.ProductID) }),
		FilterStep("order_exists", func(r domain.Refund) bool { return refs.HasOrder(r.OrderID) }),
		FilterStep("product_exists", func(r domain.Refund) bool { return refs.HasProduct(r.ProductID) }),
		FilterStep("reason_present", func(r domain.Refund) bool { return nonBlank(r.Reason) }),
		FilterStep("amount_positive", func(r domain.Refund) bool { return r.Amount > 0 }),
	}
	if p.Dedupe[domain.EntityRefunds] {
		validate = append(validate, DedupeStep("dedupe_id", func(r domain.Refund) string { return r.ID }))
	}
	if scale := p.RefundScale; scale != 0 && scale != 1 {
		validate = append(validate, NormalizeStep("scale_amount", func(r domain.Refund) domain.Refund {
			r.Amount /= scale
			return r
		}))
	}

	return Rules[domain.RefundRecord, domain.Refund]{
		Prepare: prepare,
		Parse: func(r domain.RefundRecord) domain.Refund {
			return domain.Refund{
				Row:       r.Row,
				ID:        r.ID,
				OrderID:   r.OrderID,
				ProductID: r.ProductID,
				Reason:    r.Reason,
				Amount:    CoerceAmount(r.RefundAmount),
			}
		},
		Validate: validate,
	}
}
