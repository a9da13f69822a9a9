// Package errors provides the structured error type shared by the catalog
// fetcher, the microflow generator and the host integration layer.
//
// Every failure carries a machine-readable code, an HTTP status for the API
// surface, and maps to the severity it is shown to the user with.
package errors
