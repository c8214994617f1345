// Package config models the exporter's configuration: which management
// server to scrape and, as a tree of MBean selectors, which runtime
// attributes to turn into metrics.
//
// Top-level types:
//   - ExporterConfig — host, port, username/password, startDelaySeconds,
//     plus an ordered QueryList of selector trees
//   - MBeanSelector — one level of the managed-object tree: optional type
//     filter, metric prefix, identity key, ordered value attributes, and
//     nested selectors under their runtime names (document order kept)
//   - InvalidValueError — a field whose value cannot be coerced to its
//     required type; any such failure aborts the whole load
//
// LoadConfig parses a YAML document; absent or empty input yields the
// defaults (localhost:7001, no queries) rather than an error. Within a
// selector body the keys type, prefix, key and values are reserved; every
// other key names a nested selector. Parsing goes through yaml.Node rather
// than struct tags because nested-selector names are open-ended and their
// document order is part of the model.
//
// Append(other) concatenates other's queries after the receiver's own —
// duplicate top-level names stay separate roots, nothing is merged below
// the query list. Replace(other) swaps the query list wholesale. Neither
// touches the receiver's connection fields, and neither locks: callers
// that mutate and read one instance concurrently synchronize externally.
//
// String() serializes back to YAML such that LoadConfig(cfg.String()) is
// structurally equal to cfg; the output is also what the diagnostics page
// shows.
//
// Watch(ctx, path, onChange) uses fsnotify to reload the file on change,
// keeping the previous config when a reload fails.
package config
