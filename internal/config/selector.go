package config

import (
	"gopkg.in/yaml.v3"
)

// Reserved selector keys. Any other key in a selector body names a nested
// selector.
const (
	keyType   = "type"
	keyPrefix = "prefix"
	keyKey    = "key"
	keyValues = "values"
)

// MBeanSelector describes one level of the server's managed-object tree:
// which attributes to read at this level, how the resulting metrics are
// prefixed and labeled, and which nested runtimes to descend into.
//
// Selectors form a strict ownership tree — no sharing, no cycles. They are
// built bottom-up during load and immutable afterwards; Append and Replace
// swap whole trees at the query level, never splice into a built tree.
type MBeanSelector struct {
	name   string
	mtype  string
	prefix string
	key    string
	values []string

	nested map[string]*MBeanSelector
	order  []string // nested selector names in document order
}

// Name is the key under which this selector appeared in its parent,
// e.g. "applicationRuntimes".
func (m *MBeanSelector) Name() string { return m.name }

// Type is the optional MBean type filter for instances at this level.
func (m *MBeanSelector) Type() string { return m.mtype }

// Prefix is the optional metric-name prefix for values at this level.
func (m *MBeanSelector) Prefix() string { return m.prefix }

// Key is the optional attribute used as the per-instance identity label.
func (m *MBeanSelector) Key() string { return m.key }

// Values is the ordered list of attribute names to export at this level.
// Callers must not modify the returned slice.
func (m *MBeanSelector) Values() []string { return m.values }

// NestedSelectors maps child name to child selector. Iterate via
// NestedNames to preserve document order; callers must not modify the map.
func (m *MBeanSelector) NestedSelectors() map[string]*MBeanSelector { return m.nested }

// NestedNames returns the nested selector names in document order.
func (m *MBeanSelector) NestedNames() []string { return m.order }

// parseSelector builds a selector named name from a document sub-tree.
// Reserved keys become the selector's own scalars; every remaining key is
// parsed recursively as a nested selector, preserving mapping order. An
// absent or null body yields a selector with nothing set.
func parseSelector(name string, body *yaml.Node) (*MBeanSelector, error) {
	sel := &MBeanSelector{name: name, nested: map[string]*MBeanSelector{}}

	body = resolved(body)
	if isEmpty(body) {
		return sel, nil
	}
	if body.Kind != yaml.MappingNode {
		return nil, &InvalidValueError{Field: name, Value: describe(body)}
	}

	for i := 0; i+1 < len(body.Content); i += 2 {
		k := body.Content[i].Value
		v := body.Content[i+1]

		var err error
		switch k {
		case keyType:
			sel.mtype, err = stringValue(v, name+"."+keyType)
		case keyPrefix:
			sel.prefix, err = stringValue(v, name+"."+keyPrefix)
		case keyKey:
			sel.key, err = stringValue(v, name+"."+keyKey)
		case keyValues:
			sel.values, err = stringList(v, name+"."+keyValues)
		default:
			var child *MBeanSelector
			child, err = parseSelector(k, v)
			if err == nil {
				// Repeated keys should not appear in normal documents;
				// last write wins without duplicating the order entry.
				if _, dup := sel.nested[k]; !dup {
					sel.order = append(sel.order, k)
				}
				sel.nested[k] = child
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return sel, nil
}

// clone returns a deep copy of the selector tree. Append and Replace copy
// rather than alias the argument's trees, keeping ownership strict.
func (m *MBeanSelector) clone() *MBeanSelector {
	c := &MBeanSelector{
		name:   m.name,
		mtype:  m.mtype,
		prefix: m.prefix,
		key:    m.key,
		nested: make(map[string]*MBeanSelector, len(m.nested)),
	}
	if m.values != nil {
		c.values = append([]string(nil), m.values...)
	}
	if m.order != nil {
		c.order = append([]string(nil), m.order...)
	}
	for name, child := range m.nested {
		c.nested[name] = child.clone()
	}
	return c
}

// Equal reports whether two selectors match in name, scalars, value order,
// and nested selectors (same names, same order, recursively equal).
func (m *MBeanSelector) Equal(o *MBeanSelector) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.name != o.name || m.mtype != o.mtype || m.prefix != o.prefix || m.key != o.key {
		return false
	}
	if len(m.values) != len(o.values) || len(m.order) != len(o.order) {
		return false
	}
	for i, v := range m.values {
		if o.values[i] != v {
			return false
		}
	}
	for i, name := range m.order {
		if o.order[i] != name {
			return false
		}
		if !m.nested[name].Equal(o.nested[name]) {
			return false
		}
	}
	return true
}
