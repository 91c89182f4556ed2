// Package api serves data-quality diagnostics over HTTP.
//
// Routes:
//
//	GET  /health                  liveness probe
//	POST /quality-from-csv        per-column dataset summary of an uploaded CSV
//	POST /quality-flags-from-csv  quality flags and score of an uploaded CSV
//	GET  /metrics                 request counters in Prometheus text format
//
// Uploads are multipart forms with the CSV in the "file" field. The flags
// endpoint accepts min_missing_share and high_cardinality_threshold query
// parameters that override the server defaults for one request.
package api
