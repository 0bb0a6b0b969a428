package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stub(id string, deps ...string) Stage {
	return NewStage(id, id, deps, func(context.Context, *RunState) error { return nil })
}

func stageIDs(stages []Stage) []string {
	ids := make([]string, len(stages))
	for i, s := range stages {
		ids[i] = s.ID()
	}
	return ids
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(stub("a")))
	assert.Error(t, r.Register(stub("a")), "duplicate id")
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(stub("")))
	assert.Equal(t, 1, r.Count())

	got, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID())

	_, err = r.Get("b")
	assert.Error(t, err)
}

func TestRegistry_DependencyOrder(t *testing.T) {
	tests := []struct {
		name    string
		stages  []Stage
		want    []string
		wantErr bool
	}{
		{
			name:   "registration order when independent",
			stages: []Stage{stub("a"), stub("b"), stub("c")},
			want:   []string{"a", "b", "c"},
		},
		{
			name:   "dependencies first",
			stages: []Stage{stub("report", "clean"), stub("clean", "load"), stub("load")},
			want:   []string{"load", "clean", "report"},
		},
		{
			name:   "ready stages keep registration order",
			stages: []Stage{stub("load"), stub("y", "load"), stub("x", "load"), stub("z", "x", "y")},
			want:   []string{"load", "y", "x", "z"},
		},
		{
			name:    "missing dependency",
			stages:  []Stage{stub("a", "ghost")},
			wantErr: true,
		},
		{
			name:    "cycle",
			stages:  []Stage{stub("a", "b"), stub("b", "a")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			for _, s := range tt.stages {
				require.NoError(t, r.Register(s))
			}

			ordered, err := r.DependencyOrder()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, stageIDs(ordered))
		})
	}
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stub("b")))
	require.NoError(t, r.Register(stub("a")))
	assert.Equal(t, []string{"b", "a"}, stageIDs(r.List()))
}
