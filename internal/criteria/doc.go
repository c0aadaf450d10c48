// Package criteria extracts acceptance-criteria checklist items from
// document bodies and tracks their identity across versions.
//
// Identity is the hash of the normalized criterion text
// (model.CriterionHash). Lineage across versions is established by
// exact hash match against the immediately preceding version's rows:
// matched items carry forward their met state and link to the prior
// row, unmatched items become new rows with no lineage.
//
// Extraction is a pure computation; this package plans row operations
// and leaves persistence to the engine. Re-planning against unchanged
// inputs is idempotent.
package criteria
