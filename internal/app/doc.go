// Package app wires the report server together and manages its lifecycle.
//
// NewApplication builds every component from a loaded configuration: the
// dataset loader, the pipeline runner, the report sinks and run archive,
// the report and health services, and the chi router with its middleware.
// Start runs the first pipeline refresh and begins serving; a failed first
// refresh leaves the server up and reporting itself as not ready.
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then Stop drains in-flight requests
// within Server.ShutdownTimeout, closes the run archive and flushes
// telemetry.
//
// # Usage
//
//	cfg, err := config.Load("")
//	application, err := app.NewApplication(cfg, logger)
//	if err := application.Run(); err != nil {
//	    os.Exit(1)
//	}
package app
