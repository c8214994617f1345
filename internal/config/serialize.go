package config

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// String renders the configuration as a YAML document that parses back to
// an equal configuration. Host and port are always emitted; credentials
// and the start delay only when set. Each selector lists its set scalars
// first (type, prefix, key, values) and then its nested selectors in their
// original document order, so the output mirrors the input modulo
// whitespace.
func (c *ExporterConfig) String() string {
	doc := mappingNode()
	addPair(doc, keyHost, strNode(c.host))
	addPair(doc, keyPort, intNode(c.port))
	if c.userName != "" {
		addPair(doc, keyUserName, strNode(c.userName))
	}
	if c.password != "" {
		addPair(doc, keyPassword, strNode(c.password))
	}
	if c.startDelaySeconds != 0 {
		addPair(doc, keyStartDelay, intNode(c.startDelaySeconds))
	}
	if len(c.queries) > 0 {
		list := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, q := range c.queries {
			entry := mappingNode()
			addPair(entry, q.Name(), q.node())
			list.Content = append(list.Content, entry)
		}
		addPair(doc, keyQueries, list)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return ""
	}
	return string(out)
}

// node renders one selector level as a YAML mapping.
func (m *MBeanSelector) node() *yaml.Node {
	n := mappingNode()
	if m.mtype != "" {
		addPair(n, keyType, strNode(m.mtype))
	}
	if m.prefix != "" {
		addPair(n, keyPrefix, strNode(m.prefix))
	}
	if m.key != "" {
		addPair(n, keyKey, strNode(m.key))
	}
	if len(m.values) > 0 {
		list := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, v := range m.values {
			list.Content = append(list.Content, strNode(v))
		}
		addPair(n, keyValues, list)
	}
	for _, name := range m.order {
		addPair(n, name, m.nested[name].node())
	}
	return n
}

// --- node constructors ------------------------------------------------------

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func intNode(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
}

func addPair(m *yaml.Node, key string, val *yaml.Node) {
	m.Content = append(m.Content, strNode(key), val)
}
