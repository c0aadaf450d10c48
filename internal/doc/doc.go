// Package doc implements the document codec: conversion between the
// stored text form of a document (YAML frontmatter + markdown body)
// and structured fields.
//
// The codec draws a hard line between authored fields and
// system-managed fields:
//
//   - Authored: type, title, parent, depends_on, adheres_to. These
//     persist inside the stored document body.
//   - System-managed: status, tags, human_readable_id. These live only
//     in database columns and are injected into the document text when
//     it is returned to a reader, never stored.
//
// The separation means changing an operational tag or status never
// looks like a content edit: ContentHasChanged compares only the
// authored-field view of two documents.
//
// The parser is strict and single-path. Legacy serialization artifacts
// are normalized by a one-time store migration, not tolerated here.
package doc
