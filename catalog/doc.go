// Package catalog discovers pipelines from a Swagger-described service.
//
// A user-supplied root URL is normalized (a trailing doc/index.html and
// trailing slashes are removed), the discovery endpoint
// <base>/v1/pipelines/params is fetched, and the body is checked against the
// pipeline shape contract before being transformed into Pipelines.
package catalog
