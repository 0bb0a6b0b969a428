// Package pipeline runs one validation-and-aggregation pass over the five
// commerce datasets.
//
// A Runner loads every dataset through a source.Loader, then executes its
// registered stages in dependency order: load, the five cleaning stages,
// aggregate and assemble. A stage only runs once all of its dependencies
// completed. Everything a run produces lives on the RunState it returns.
//
// Example usage:
//
//	runner, err := pipeline.NewRunner(loader, dataprocessing.StandardProfile(), logger)
//	state, err := runner.Run(ctx)
//	err = sink.Write(ctx, report.RunInfo{ID: state.ID}, state.Report)
package pipeline
