// Package query translates between MBean selector trees and the server's
// management REST interface.
//
// SearchBody(sel) builds the JSON body for a POST to the serverRuntime
// search resource: each selector level contributes a fields list (its key,
// optional type, and value attributes) and a children map keyed by nested
// runtime name. Metrics(sel, resp) walks the decoded response along the
// same tree and flattens it into Samples — metric name is the selector's
// prefix plus the attribute name, and each level's key attribute becomes
// a label inherited by everything beneath it.
//
// Both directions are pure transformations; the HTTP round trip lives in
// the scraper package.
package query
