// Package shared holds helpers used across RetailPulse packages that belong
// to no single layer.
//
// The testutil subpackage provides:
//
//   - a buffered slog handler for asserting on log output
//   - sample datasets for all five entities, with the identifiers they use
//   - helpers that write those datasets as CSV files into a temp directory
//
// Example usage:
//
//	func TestRun(t *testing.T) {
//	    dir := testutil.WriteSampleDatasets(t, t.TempDir())
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	}
package shared
