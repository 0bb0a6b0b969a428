// Package services holds the report server's business logic between the HTTP
// handlers and the pipeline.
//
// ReportService runs the pipeline, keeps the latest report in memory, hands
// every report to the configured sinks and answers key-path lookups. Refreshes
// are coalesced so two runs never overlap. HealthService reports uptime and
// whether a report is available.
//
// Example usage:
//
//	svc := services.NewReportService(runner, sinks, archive, logger)
//	snapshot, err := svc.Refresh(ctx)
//	name, err := svc.Lookup("business_metrics.top_5_customers_by_total_spend[0].name")
package services
