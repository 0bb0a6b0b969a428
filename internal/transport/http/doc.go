// Package http exposes the latest pipeline report over HTTP.
//
// Handlers stay thin: they parse the request, call the report or health
// service and render JSON through go-chi/render. Errors are rendered as
// APIError responses.
//
// Routes:
//
//	GET  /api/health
//	GET  /api/report
//	GET  /api/report/lookup?path=business_metrics.top_5_customers_by_total_spend[0].name
//	GET  /api/report/runs?limit=20
//	POST /api/report/refresh
//	GET  /metrics
package http
