package model

import "time"

// DocType is the fixed document hierarchy, top-level first.
type DocType string

const (
	TypeEpic        DocType = "epic"        // top-level, no parent
	TypeComponent   DocType = "component"   // container
	TypeFeature     DocType = "feature"     // feature
	TypeRequirement DocType = "requirement" // leaf
)

// ValidDocTypes defines the allowed document types.
var ValidDocTypes = map[DocType]bool{
	TypeEpic:        true,
	TypeComponent:   true,
	TypeFeature:     true,
	TypeRequirement: true,
}

// HRIDCode returns the short code used in human-readable IDs.
func (t DocType) HRIDCode() string {
	switch t {
	case TypeEpic:
		return "EPIC"
	case TypeComponent:
		return "COMP"
	case TypeFeature:
		return "FEAT"
	case TypeRequirement:
		return "REQ"
	}
	return "DOC"
}

// Document is a hierarchical specification item. The row itself never
// stores content; content lives on versions and is selected at read
// time by version resolution.
type Document struct {
	ID                  string    `json:"id"`
	HumanReadableID     string    `json:"human_readable_id"`
	Type                DocType   `json:"type"`
	ParentID            string    `json:"parent_id,omitempty"` // empty only for epics
	ProjectID           string    `json:"project_id"`
	DeployedVersionID   string    `json:"deployed_version_id,omitempty"`
	DeployedByReleaseID string    `json:"deployed_by_release_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// Version is an immutable content snapshot of a document.
type Version struct {
	ID               string       `json:"id"`
	DocumentID       string       `json:"document_id"`
	VersionNumber    int          `json:"version_number"` // contiguous from 1 per document
	Status           Status       `json:"status"`
	Content          string       `json:"content"`
	ContentHash      string       `json:"content_hash"`
	Title            string       `json:"title"`
	Description      string       `json:"description,omitempty"`
	Tags             []string     `json:"tags,omitempty"`
	CrossRefs        []string     `json:"cross_refs,omitempty"` // work item IDs linked to this version
	Length           int          `json:"length"`
	QualityScore     QualityScore `json:"quality_score"`
	SourceWorkItemID string       `json:"source_work_item_id,omitempty"`
	ChangeReason     string       `json:"change_reason,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// WorkItemType categorizes units of implementation work.
type WorkItemType string

const (
	WorkItemChangeRequest WorkItemType = "change_request"
	WorkItemDefect        WorkItemType = "defect"
	WorkItemDebt          WorkItemType = "debt"
	WorkItemRelease       WorkItemType = "release"
)

// ValidWorkItemTypes defines the allowed work item types.
var ValidWorkItemTypes = map[WorkItemType]bool{
	WorkItemChangeRequest: true,
	WorkItemDefect:        true,
	WorkItemDebt:          true,
	WorkItemRelease:       true,
}

// WorkItem is a unit of implementation tracking with its own lifecycle.
//
// For change requests, ProposedContent maps document ID to the full
// replacement content, and BaselineHashes maps document ID to the
// resolved content hash captured when the change request was authored.
// The merge executor compares baselines against current hashes to
// detect concurrent modification.
type WorkItem struct {
	ID               string            `json:"id"`
	HumanReadableID  string            `json:"human_readable_id"`
	Type             WorkItemType      `json:"type"`
	Status           WorkItemStatus    `json:"status"`
	Title            string            `json:"title"`
	Assignee         string            `json:"assignee,omitempty"`
	ProjectID        string            `json:"project_id"`
	AffectedDocs     []string          `json:"affected_docs,omitempty"`
	TargetVersionIDs []string          `json:"target_version_ids,omitempty"` // version pins for drift detection
	ProposedContent  map[string]string `json:"proposed_content,omitempty"`
	BaselineHashes   map[string]string `json:"baseline_hashes,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Criterion is one acceptance-criteria checklist item owned by a
// version. Criteria text is immutable; the met flag, its met-by/met-at
// pair (both set or both null) and the category are mutable.
type Criterion struct {
	ID                string     `json:"id"`
	VersionID         string     `json:"version_id"`
	Ordinal           int        `json:"ordinal"` // unique within a version
	Text              string     `json:"text"`
	Hash              string     `json:"hash"`
	Met               bool       `json:"met"`
	MetAt             *time.Time `json:"met_at,omitempty"`
	MetBy             string     `json:"met_by,omitempty"`
	Category          string     `json:"category,omitempty"`
	SourceCriterionID string     `json:"source_criterion_id,omitempty"` // lineage to the prior version's row
}

// HistoryEntry records one change (or blocked attempt) against a
// document or work item. Blocked transitions are written with a
// "BLOCKED: " reason before the error is raised.
type HistoryEntry struct {
	ID           int64     `json:"id"`
	DocumentID   string    `json:"document_id,omitempty"`
	WorkItemID   string    `json:"work_item_id,omitempty"`
	ChangeType   string    `json:"change_type"`
	FieldName    string    `json:"field_name,omitempty"`
	OldValue     string    `json:"old_value,omitempty"`
	NewValue     string    `json:"new_value,omitempty"`
	ChangeReason string    `json:"change_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// History change types.
const (
	ChangeCreated       = "created"
	ChangeUpdated       = "updated"
	ChangeStatusChanged = "status_changed"
	ChangeDeleted       = "deleted"
	ChangeMerged        = "merged"
)

// QualityScore is a coarse content-length quality signal.
type QualityScore string

const (
	QualityOK          QualityScore = "ok"
	QualityNeedsReview QualityScore = "needs_review"
	QualityLow         QualityScore = "low_quality"
)
