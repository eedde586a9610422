// Package server is the inbound HTTP surface.
//
// Routes:
//
//	GET  /             empty analysis form
//	POST /             analyze the form's url and render the report
//	POST /ask_ai       forward a question and report JSON to the assistant
//	POST /api/analyze  analyze {"url": ...} and return the report JSON
//	GET  /healthz      liveness
//	GET  /metrics      Prometheus exposition
//
// Every response carries an X-Request-ID. The costly endpoints are rate
// limited per client IP, and responses are gzip-compressed when the
// client accepts it.
package server
