// Package server is the exporter's HTTP surface.
//
// Routes:
//   - GET /metrics — scrape every configured query against the management
//     server and render Prometheus text exposition
//   - PUT /configuration?effect=append|replace — parse the YAML body and
//     combine its queries with the live config (append concatenates,
//     replace swaps; neither touches the live destination fields)
//   - GET / — plain-text diagnostics page showing the live configuration
//
// The Handler owns the live ExporterConfig behind an RWMutex, since the
// config's own mutation operations do no locking of their own. Update()
// swaps in a whole new config on file reload.
package server
