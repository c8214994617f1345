package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// InvalidValueError reports a configuration field whose value cannot be
// interpreted as the type the field requires. A load that produces this
// error yields no configuration at all — partial configs would silently
// drop metrics at scrape time.
type InvalidValueError struct {
	// Field is the document path of the offending field, e.g.
	// "startDelaySeconds" or "componentRuntimes.values".
	Field string

	// Value is the raw text (or a structural description) of what was found.
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("config: invalid value %q for %s", e.Value, e.Field)
}

// intValue converts a scalar node to an integer. YAML integers and strings
// holding an optionally signed run of digits are both accepted — document
// sources cannot always distinguish the two. Anything else fails with an
// InvalidValueError naming the field.
func intValue(n *yaml.Node, field string) (int, error) {
	n = resolved(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return 0, &InvalidValueError{Field: field, Value: describe(n)}
	}
	v, err := strconv.Atoi(strings.TrimSpace(n.Value))
	if err != nil {
		return 0, &InvalidValueError{Field: field, Value: n.Value}
	}
	return v, nil
}

// stringValue returns the scalar's text. Numbers coerce to their literal
// form; mappings and sequences are not valid where a string is expected.
func stringValue(n *yaml.Node, field string) (string, error) {
	n = resolved(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return "", &InvalidValueError{Field: field, Value: describe(n)}
	}
	return n.Value, nil
}

// stringList reads an attribute-name list. A bare scalar is accepted as a
// single-element list; duplicates are collapsed keeping first-seen order.
func stringList(n *yaml.Node, field string) ([]string, error) {
	n = resolved(n)
	if n == nil {
		return nil, &InvalidValueError{Field: field, Value: describe(n)}
	}
	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, &InvalidValueError{Field: field, Value: describe(n)}
	}
	var (
		out  []string
		seen = map[string]bool{}
	)
	for _, item := range n.Content {
		s, err := stringValue(item, field)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// resolved follows alias nodes to their anchor target.
func resolved(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// isEmpty reports whether a node carries no content (absent or YAML null).
func isEmpty(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// describe renders a node's shape for error messages.
func describe(n *yaml.Node) string {
	if n == nil {
		return "<absent>"
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value
	case yaml.MappingNode:
		return "<mapping>"
	case yaml.SequenceNode:
		return "<sequence>"
	default:
		return "<document>"
	}
}
