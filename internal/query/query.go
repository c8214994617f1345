package query

import (
	"fmt"

	"github.com/wlsexporter/wlsexporter/internal/config"
)

// Sample is one scraped metric value: the selector prefix plus attribute
// name, the identity labels accumulated from each tree level's key
// attribute, and the numeric value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// SearchBody returns the management-REST search request for one top-level
// query: the server-runtime root asking only for the query's own subtree.
func SearchBody(q *config.MBeanSelector) map[string]any {
	return map[string]any{
		"links":  []string{},
		"fields": []string{},
		"children": map[string]any{
			q.Name(): Request(q),
		},
	}
}

// Request renders one selector level as a search sub-request. Each level
// asks for its key attribute, its type (when filtering) and its value
// attributes, and recurses into nested selectors under their runtime names.
func Request(sel *config.MBeanSelector) map[string]any {
	fields := []string{}
	if sel.Key() != "" {
		fields = append(fields, sel.Key())
	}
	if sel.Type() != "" {
		fields = append(fields, "type")
	}
	fields = append(fields, sel.Values()...)

	req := map[string]any{
		"links":  []string{},
		"fields": fields,
	}

	if names := sel.NestedNames(); len(names) > 0 {
		children := make(map[string]any, len(names))
		for _, name := range names {
			children[name] = Request(sel.NestedSelectors()[name])
		}
		req["children"] = children
	}
	return req
}

// Metrics walks a decoded search response for q and returns its samples in
// tree order. Instances whose type does not match a selector's filter are
// skipped, as are attributes with non-numeric values — the management
// interface reports strings and booleans alongside the counters we want.
func Metrics(q *config.MBeanSelector, resp map[string]any) []Sample {
	var out []Sample
	collectInstances(q, resp[q.Name()], nil, &out)
	return out
}

// collectInstances fans out over the one-or-many instances the REST
// interface returns for a child: either a bare object or {"items": [...]}.
func collectInstances(sel *config.MBeanSelector, raw any, labels map[string]string, out *[]Sample) {
	for _, inst := range instances(raw) {
		collect(sel, inst, labels, out)
	}
}

func collect(sel *config.MBeanSelector, inst map[string]any, labels map[string]string, out *[]Sample) {
	if sel.Type() != "" {
		if t, _ := inst["type"].(string); t != sel.Type() {
			return
		}
	}

	here := make(map[string]string, len(labels)+1)
	for k, v := range labels {
		here[k] = v
	}
	if sel.Key() != "" {
		if kv, ok := inst[sel.Key()]; ok {
			here[sel.Key()] = fmt.Sprint(kv)
		}
	}

	for _, attr := range sel.Values() {
		if v, ok := numeric(inst[attr]); ok {
			*out = append(*out, Sample{Name: sel.Prefix() + attr, Labels: here, Value: v})
		}
	}

	for _, name := range sel.NestedNames() {
		collectInstances(sel.NestedSelectors()[name], inst[name], here, out)
	}
}

// instances normalizes a response child into a list of instance objects.
func instances(raw any) []map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		items, ok := v["items"].([]any)
		if !ok {
			return []map[string]any{v}
		}
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// numeric extracts a float64 from a decoded JSON value.
func numeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
