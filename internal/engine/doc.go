// Package engine orchestrates the document core: it composes the
// codec, the lifecycle tables, the criteria extractor, the dependency
// validator and the store into the operations an API layer calls.
//
// Invariants the engine upholds:
//   - Versions are immutable; every content edit appends a new version
//     with the next contiguous number.
//   - Version resolution follows deployed pointer, then latest
//     approved, then latest, and is the single read path for "current
//     content".
//   - Blocked lifecycle transitions are recorded in history before the
//     error is returned.
//   - System-managed frontmatter fields are injected at render time
//     only; stored content carries authored fields exclusively.
package engine
