package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"retailpulse/internal/dataprocessing"
	"retailpulse/internal/report"
	"retailpulse/internal/shared/testutil"
	"retailpulse/internal/source"
	"retailpulse/pkg/contracts/domain"
)

// sampledTables builds datasets from the sample rows picked by seeds, with repeats
func sampledTables(seeds []int) map[domain.Entity]*domain.Table {
	tables := testutil.SampleTables()
	out := make(map[domain.Entity]*domain.Table, len(tables))
	for i, e := range domain.Entities() {
		src := tables[e]
		var rows [][]string
		for _, n := range seeds {
			if (n+i)%3 == 0 {
				continue
			}
			rows = append(rows, src.Rows[(n*7+i)%len(src.Rows)])
		}
		out[e] = testutil.NewTable(e, src.Header, rows...)
	}
	return out
}

func TestRunnerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	seeds := gen.SliceOf(gen.IntRange(0, 500))
	profiles := gen.OneConstOf(dataprocessing.StandardProfile(), dataprocessing.LegacyProfile())

	run := func(s []int, p dataprocessing.Profile) (*RunState, error) {
		r, err := NewRunner(source.NewMemoryLoader(sampledTables(s)), p, nil)
		if err != nil {
			return nil, err
		}
		return r.Run(context.Background())
	}

	properties.Property("completed runs satisfy every run invariant", prop.ForAll(
		func(s []int, p dataprocessing.Profile) bool {
			state, err := run(s, p)
			return err == nil && state.Verify() == nil
		},
		seeds, profiles,
	))

	properties.Property("top lists never exceed the limit and are descending", prop.ForAll(
		func(s []int, p dataprocessing.Profile) bool {
			state, err := run(s, p)
			if err != nil {
				return false
			}
			customers := state.Report.BusinessMetrics.TopCustomersBySpend
			products := state.Report.BusinessMetrics.TopProductsByRevenue
			if len(customers) > p.TopN || len(products) > p.TopN {
				return false
			}
			for i := 1; i < len(customers); i++ {
				if customers[i].TotalSpent > customers[i-1].TotalSpent {
					return false
				}
			}
			for i := 1; i < len(products); i++ {
				if products[i].TotalRevenue > products[i-1].TotalRevenue {
					return false
				}
			}
			return true
		},
		seeds, profiles,
	))

	properties.Property("same input yields byte-identical reports", prop.ForAll(
		func(s []int, p dataprocessing.Profile) bool {
			a, err := run(s, p)
			if err != nil {
				return false
			}
			b, err := run(s, p)
			if err != nil {
				return false
			}
			x, err := report.Marshal(a.Report)
			if err != nil {
				return false
			}
			y, err := report.Marshal(b.Report)
			return err == nil && bytes.Equal(x, y)
		},
		seeds, profiles,
	))

	properties.TestingRun(t)
}
