// Package graph resolves a target registry into an executable plan.
//
// A Plan is the validated, immutable, topologically ordered closure of the
// requested targets. Validation runs entirely at build time: unknown
// dependency names and cycles are terminal configuration errors surfaced
// before any command runs.
package graph
