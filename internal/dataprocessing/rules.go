package dataprocessing

// StepKind classifies a cleaning step
type StepKind string

const (
	// StepNormalize rewrites field values and never drops a row
	StepNormalize StepKind = "normalize"
	// StepFilter drops rows failing a predicate
	StepFilter StepKind = "filter"
	// StepDedupe keeps the first row for each key
	StepDedupe StepKind = "dedupe"
)

// Step is one named cleaning step over records of type T.
// Exactly one of Normalize, Keep or Key is set, matching Kind.
type Step[T any] struct {
	Name      string
	Kind      StepKind
	Normalize func(T) T
	Keep      func(T) bool
	Key       func(T) string
}

// NormalizeStep builds a value-rewriting step
func NormalizeStep[T any](name string, fn func(T) T) Step[T] {
	return Step[T]{Name: name, Kind: StepNormalize, Normalize: fn}
}

// FilterStep builds a row-dropping step
func FilterStep[T any](name string, keep func(T) bool) Step[T] {
	return Step[T]{Name: name, Kind: StepFilter, Keep: keep}
}

// DedupeStep builds a keep-first deduplication step
func DedupeStep[T any](name string, key func(T) string) Step[T] {
	return Step[T]{Name: name, Kind: StepDedupe, Key: key}
}

// RuleSet is an ordered list of steps applied to a slice of records
type RuleSet[T any] []Step[T]

// Apply runs every step in order and returns a new slice. The input is not modified.
func (rs RuleSet[T]) Apply(records []T) []T {
	out := make([]T, len(records))
	copy(out, records)

	for _, step := range rs {
		switch step.Kind {
		case StepNormalize:
			for i := range out {
				out[i] = step.Normalize(out[i])
			}
		case StepFilter:
			kept := out[:0]
			for _, r := range out {
				if step.Keep(r) {
					kept = append(kept, r)
				}
			}
			out = kept
		case StepDedupe:
			seen := make(map[string]struct{}, len(out))
			kept := out[:0]
			for _, r := range out {
				k := step.Key(r)
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				kept = append(kept, r)
			}
			out = kept
		}
	}
	return out
}

// Names lists the step names in order
func (rs RuleSet[T]) Names() []string {
	names := make([]string, len(rs))
	for i, s := range rs {
		names[i] = s.Name
	}
	return names
}

// Rules is the complete cleaning definition of one entity. Prepare runs
// text-level steps on raw records, Parse converts each survivor, and Validate
// runs filters, deduplication and final normalization on the parsed values.
type Rules[R, C any] struct {
	Prepare  RuleSet[R]
	Parse    func(R) C
	Validate RuleSet[C]
}

// Apply runs the full rule set over raw records
func (r Rules[R, C]) Apply(raw []R) []C {
	prepared := r.Prepare.Apply(raw)
	parsed := make([]C, 0, len(prepared))
	for _, rec := range prepared {
		parsed = append(parsed, r.Parse(rec))
	}
	return r.Validate.Apply(parsed)
}

// StepNames lists every step of both phases in execution order
func (r Rules[R, C]) StepNames() []string {
	names := append(r.Prepare.Names(), "parse")
	return append(names, r.Validate.Names()...)
}
