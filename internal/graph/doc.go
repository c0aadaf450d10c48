// Package graph validates proposed dependency edges against the
// existing document dependency graph.
//
// The validator is pure over a Source interface so it can run against
// the SQLite store or an in-memory fixture. Checks, in order:
//
//  1. self-reference is rejected
//  2. every proposed dependency must exist and share the project
//  3. cycle check: the transitive closure of each proposed dependency
//     must not contain the origin document
//  4. priority inversion: a higher-priority document depending on a
//     lower-priority one produces a warning, never an error
//
// Traversal is iterative with an explicit work list and a hard depth
// bound of 50. The bound is a correctness guard against corrupted or
// adversarial graphs, not a performance tuning.
package graph
