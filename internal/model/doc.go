// Package model provides the canonical entity types for specledger.
//
// This package contains type definitions and content hashing only. All
// other internal packages import model; model imports nothing internal.
// This keeps it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Version rows are immutable once created: content and content_hash
//     never change. Only a version's status moves.
//   - Version numbers per document are contiguous and monotonic from 1.
//   - Documents never carry content; content lives only on versions.
package model
