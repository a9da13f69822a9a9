// Package extension is the boundary between user triggers and the
// generator. It holds the current catalog and naming prefix, keeps each
// trigger to one run at a time and reports every failure as a Notice.
package extension
