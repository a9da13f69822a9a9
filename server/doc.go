// Package server is the pipegen HTTP server: a Gin engine behind an h2c
// handler, the standard middleware stack from server/middleware and the
// health, liveness, readiness, version and runtime endpoints from
// server/endpoint.
//
// Handlers answer with DataResponse on success and with the
// errors.ErrorResponse envelope on failure (RespondWithError).
package server
