package exporter

import (
	"bytes"
	"fmt"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/wlsexporter/wlsexporter/internal/query"
)

// ContentType is the HTTP content type of the rendered exposition.
var ContentType = string(expfmt.NewFormat(expfmt.TypeTextPlain))

// Render encodes samples as Prometheus text exposition. Samples sharing a
// name become one untyped metric family; families are emitted sorted by
// name and labels sorted within each sample, so output is stable across
// scrapes.
func Render(samples []query.Sample) ([]byte, error) {
	families := make(map[string]*dto.MetricFamily)
	var names []string

	for _, s := range samples {
		mf, ok := families[s.Name]
		if !ok {
			mf = &dto.MetricFamily{
				Name: ptr(s.Name),
				Type: dto.MetricType_UNTYPED.Enum(),
			}
			families[s.Name] = mf
			names = append(names, s.Name)
		}
		mf.Metric = append(mf.Metric, metric(s))
	}
	sort.Strings(names)

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, name := range names {
		if err := enc.Encode(families[name]); err != nil {
			return nil, fmt.Errorf("exporter: encode family %q: %w", name, err)
		}
	}
	return buf.Bytes(), nil
}

func metric(s query.Sample) *dto.Metric {
	labelNames := make([]string, 0, len(s.Labels))
	for name := range s.Labels {
		labelNames = append(labelNames, name)
	}
	sort.Strings(labelNames)

	m := &dto.Metric{Untyped: &dto.Untyped{Value: ptr(s.Value)}}
	for _, name := range labelNames {
		m.Label = append(m.Label, &dto.LabelPair{
			Name:  ptr(name),
			Value: ptr(s.Labels[name]),
		})
	}
	return m
}

func ptr[T any](v T) *T { return &v }
