// Package store provides SQLite-backed durable storage for documents,
// versions, acceptance criteria, dependency edges, work items and the
// audit history.
//
// Invariants enforced at the schema level:
//   - UNIQUE(document_id, version_number): contiguity is the engine's
//     job, uniqueness is the database's
//   - UNIQUE(version_id, ordinal) on acceptance criteria
//   - UNIQUE(document_id, depends_on_id) on dependency edges
//   - epics have no parent, everything else has exactly one (CHECK)
//
// The store is deliberately mechanical: it reads and writes rows and
// leaves version resolution, transition validation and graph checks to
// the layers above. The transaction boundary is a single document's
// state change; cross-document operations are best-effort multi-step
// sequences whose partial failure is observable.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: referential integrity and cascades
package store
