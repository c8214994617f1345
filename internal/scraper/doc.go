// Package scraper performs the HTTP round trip to the management server.
// A Client is built from an ExporterConfig's destination fields and POSTs
// each query's search body (built by the query package) to the
// serverRuntime search resource with basic auth, then decodes the JSON
// response. Scrape runs the whole query list and flattens the responses
// into samples for the exporter package to render.
package scraper
