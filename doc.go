// Package selectest implements a selective test-runner engine: given a
// working copy of source and a persisted baseline of previously-passing
// tests, it determines the minimum set of tests that could have been
// affected by source changes.
//
// The engine composes a static symbol dependency graph (internal/
// symbolgraph, internal/depgraph), content-addressed fingerprints
// (internal/hash) that ignore cosmetic differences, and two persistent
// caches (internal/cache) that separate "current state" from
// "last-known-good state". Selection itself lives in internal/selector.
//
// Source analysis is an external collaborator: Engine consumes anything
// implementing fact.Analyzer. internal/analyzer/goref ships a reference
// implementation for Go source so the pipeline is runnable end to end.
package selectest
