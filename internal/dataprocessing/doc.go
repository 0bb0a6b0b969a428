// Package dataprocessing turns raw commerce datasets into cleaned records and
// business metrics.
//
// # Flow
//
//	Table → Decode* → raw records → Cleaner → CleanedData → Aggregator → metrics
//
// Decoding maps columns by header name, so column order in the source does not
// matter. Missing required columns are a parsing error; everything else about
// a malformed row is handled by dropping it during cleaning.
//
// # Rules
//
// Each entity is cleaned by a Rules value: text-level normalize steps on the
// raw record, a parse into the typed record, then filter, dedupe and final
// normalize steps. A Profile decides which optional steps are present:
//
//	standard  enum shipment statuses, all carriers and reasons, refunds deduplicated
//	legacy    keyword shipment statuses, top 5 carriers and reasons, refund amounts ÷100
//
// Refund cleaning needs the cleaned orders and products, so callers clean
// customers, products and orders before shipments and refunds.
package dataprocessing
