// Package api is the HTTP surface of pipegen. Every route maps onto one
// extension operation; errors are answered with the AppError envelope and
// also land in the notice inbox served at /api/v1/notices.
package api
