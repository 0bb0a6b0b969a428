// Package report assembles the run report and delivers it to sinks.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"retailpulse/pkg/contracts/domain"
)

// Assemble merges the metric blocks into one report. Lists are never nil.
func Assemble(names []domain.ValidName, quality domain.DataQualityMetrics, business domain.BusinessMetrics) *domain.Report {
	r := &domain.Report{
		ValidNames:         names,
		DataQualityMetrics: quality,
		BusinessMetrics:    business,
	}
	r.Normalize()
	return r
}

// Marshal encodes a report as JSON indented by two spaces, with a trailing newline
func Marshal(r *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a report produced by Marshal
func Unmarshal(data []byte) (*domain.Report, error) {
	var r domain.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	r.Normalize()
	return &r, nil
}

// Lookup resolves a key path such as
// "business_metrics.top_5_customers_by_total_spend[0].name" against the
// report's serialized form. Numbers come back as float64.
func Lookup(r *domain.Report, path string) (any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var node any
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	for i, seg := range segments {
		switch cur := node.(type) {
		case map[string]any:
			next, ok := cur[seg]
			if !ok {
				return nil, fmt.Errorf("key %q not found at %s", seg, strings.Join(segments[:i], "."))
			}
			node = next
		case []any:
			idx, err := cast.ToIntE(seg)
			if err != nil {
				return nil, fmt.Errorf("expected list index at %q: %w", seg, err)
			}
			if idx < 0 || idx >= len(cur) {
				return nil, fmt.Errorf("index %d out of range (len %d)", idx, len(cur))
			}
			node = cur[idx]
		default:
			return nil, fmt.Errorf("cannot descend into %T at %q", node, seg)
		}
	}
	return node, nil
}

// splitPath turns "a.b[0].c" into [a b 0 c]
func splitPath(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	var segments []string
	for _, part := range strings.Split(path, ".") {
		name, rest, hasIndex := strings.Cut(part, "[")
		if name != "" {
			segments = append(segments, name)
		}
		for hasIndex {
			var idx string
			var ok bool
			idx, rest, ok = strings.Cut(rest, "]")
			if !ok {
				return nil, fmt.Errorf("unclosed index in %q", part)
			}
			if _, err := strconv.Atoi(idx); err != nil {
				return nil, fmt.Errorf("invalid index %q in %q", idx, part)
			}
			segments = append(segments, idx)
			if rest == "" {
				break
			}
			if !strings.HasPrefix(rest, "[") {
				return nil, fmt.Errorf("unexpected %q in %q", rest, part)
			}
			rest = rest[1:]
		}
	}
	return segments, nil
}
