package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the document.
const (
	DefaultHost = "localhost"
	DefaultPort = 7001
)

// Top-level document keys.
const (
	keyHost       = "host"
	keyPort       = "port"
	keyUserName   = "username"
	keyPassword   = "password"
	keyStartDelay = "startDelaySeconds"
	keyQueries    = "queries"
)

// QueryList is an ordered sequence of top-level selector trees, one per
// entry of the document's queries list.
type QueryList []*MBeanSelector

// clone deep-copies every query tree.
func (q QueryList) clone() QueryList {
	if q == nil {
		return nil
	}
	out := make(QueryList, len(q))
	for i, sel := range q {
		out[i] = sel.clone()
	}
	return out
}

// ExporterConfig is the root configuration: the destination server
// (host, port, credentials, start delay) plus the query list.
//
// Instances come only from Load/LoadConfig. Append and Replace mutate the
// receiver in place; nothing here locks — a caller that both mutates and
// reads one instance from multiple goroutines must synchronize externally.
type ExporterConfig struct {
	host              string
	port              int
	userName          string
	password          string
	startDelaySeconds int
	queries           QueryList
}

// Host is the management server host. Defaults to "localhost".
func (c *ExporterConfig) Host() string { return c.host }

// Port is the management server port. Defaults to 7001.
func (c *ExporterConfig) Port() int { return c.port }

// UserName is the management user; empty when unauthenticated.
func (c *ExporterConfig) UserName() string { return c.userName }

// Password for UserName; empty when unauthenticated.
func (c *ExporterConfig) Password() string { return c.password }

// StartDelaySeconds is how long to wait before the first scrape.
func (c *ExporterConfig) StartDelaySeconds() int { return c.startDelaySeconds }

// Queries returns the query list in document order. Callers must not
// modify the returned slice.
func (c *ExporterConfig) Queries() QueryList { return c.queries }

// Load reads and parses the YAML config file at path.
func Load(path string) (*ExporterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return LoadConfig(data)
}

// LoadConfig parses a YAML document into an ExporterConfig. Absent or
// empty input is not an error — it yields a config with every default and
// no queries. A coercion or structure failure aborts the whole load: no
// partially populated config is ever returned.
func LoadConfig(data []byte) (*ExporterConfig, error) {
	cfg := defaults()

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	root := documentRoot(&doc)
	if isEmpty(root) {
		return cfg, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &InvalidValueError{Field: "configuration", Value: describe(root)}
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		k := root.Content[i].Value
		v := root.Content[i+1]

		var err error
		switch k {
		case keyHost:
			cfg.host, err = stringValue(v, keyHost)
		case keyPort:
			cfg.port, err = intValue(v, keyPort)
		case keyUserName:
			cfg.userName, err = stringValue(v, keyUserName)
		case keyPassword:
			cfg.password, err = stringValue(v, keyPassword)
		case keyStartDelay:
			cfg.startDelaySeconds, err = intValue(v, keyStartDelay)
			if err == nil && cfg.startDelaySeconds < 0 {
				err = &InvalidValueError{Field: keyStartDelay, Value: resolved(v).Value}
			}
		case keyQueries:
			cfg.queries, err = parseQueries(v)
		default:
			// Unknown top-level keys are ignored; the document may carry
			// sections consumed by other tooling.
		}
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// defaults returns an ExporterConfig pre-populated with default values.
func defaults() *ExporterConfig {
	return &ExporterConfig{
		host: DefaultHost,
		port: DefaultPort,
	}
}

// parseQueries builds the query list. Each entry must be a mapping with
// exactly one key: the key names the top-level selector, the value is its
// body. Anything else indicates a misread selector structure and fails
// the load rather than losing metrics silently.
func parseQueries(n *yaml.Node) (QueryList, error) {
	n = resolved(n)
	if isEmpty(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, &InvalidValueError{Field: keyQueries, Value: describe(n)}
	}

	var queries QueryList
	for _, entry := range n.Content {
		entry = resolved(entry)
		if entry == nil || entry.Kind != yaml.MappingNode || len(entry.Content) != 2 {
			return nil, &InvalidValueError{Field: keyQueries, Value: describe(entry)}
		}
		sel, err := parseSelector(entry.Content[0].Value, entry.Content[1])
		if err != nil {
			return nil, err
		}
		queries = append(queries, sel)
	}
	return queries, nil
}

// documentRoot unwraps the document node produced by yaml.Unmarshal.
func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	return resolved(doc.Content[0])
}

// Append extends the receiver's query list with every query from other,
// after the receiver's own and in other's order. Duplicate top-level names
// are kept as separate query roots — there is no merging below the query
// list. Connection fields (host, port, credentials, start delay) are not
// touched: the receiver's destination stays authoritative.
func (c *ExporterConfig) Append(other *ExporterConfig) {
	c.queries = append(c.queries, other.queries.clone()...)
}

// Replace discards the receiver's query list in favor of other's, in
// other's order. Connection fields are left unchanged, as with Append.
func (c *ExporterConfig) Replace(other *ExporterConfig) {
	c.queries = other.queries.clone()
}

// Equal reports whether two configs match field for field, including
// structurally equal query lists in the same order.
func (c *ExporterConfig) Equal(o *ExporterConfig) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.host != o.host || c.port != o.port ||
		c.userName != o.userName || c.password != o.password ||
		c.startDelaySeconds != o.startDelaySeconds ||
		len(c.queries) != len(o.queries) {
		return false
	}
	for i, q := range c.queries {
		if !q.Equal(o.queries[i]) {
			return false
		}
	}
	return true
}
