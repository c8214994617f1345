// Package exporter renders scraped samples as Prometheus text exposition.
// Samples are grouped into untyped metric families by name and encoded
// with expfmt; ordering is made deterministic (families by name, labels
// by name) so consecutive scrapes of identical state produce identical
// output.
package exporter
