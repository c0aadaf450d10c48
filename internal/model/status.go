package model

// Status is the lifecycle status of a document version. Documents
// themselves carry no status column; a document's effective status is
// the status of its resolved version.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusReview      Status = "review"
	StatusApproved    Status = "approved"
	StatusInProgress  Status = "in_progress"
	StatusImplemented Status = "implemented"
	StatusValidated   Status = "validated"
	StatusDeployed    Status = "deployed"
	StatusDeprecated  Status = "deprecated"
)

// ValidStatuses defines the allowed document lifecycle statuses.
var ValidStatuses = map[Status]bool{
	StatusDraft:       true,
	StatusReview:      true,
	StatusApproved:    true,
	StatusInProgress:  true,
	StatusImplemented: true,
	StatusValidated:   true,
	StatusDeployed:    true,
	StatusDeprecated:  true,
}

// WorkItemStatus is the lifecycle status of a work item.
type WorkItemStatus string

const (
	WorkCreated     WorkItemStatus = "created"
	WorkInProgress  WorkItemStatus = "in_progress"
	WorkImplemented WorkItemStatus = "implemented"
	WorkValidated   WorkItemStatus = "validated"
	WorkDeployed    WorkItemStatus = "deployed"
	WorkCompleted   WorkItemStatus = "completed"
	WorkCancelled   WorkItemStatus = "cancelled"
)

// ValidWorkItemStatuses defines the allowed work item statuses.
var ValidWorkItemStatuses = map[WorkItemStatus]bool{
	WorkCreated:     true,
	WorkInProgress:  true,
	WorkImplemented: true,
	WorkValidated:   true,
	WorkDeployed:    true,
	WorkCompleted:   true,
	WorkCancelled:   true,
}
