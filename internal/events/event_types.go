package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDirectoryChanged EventType = "directory_changed"
	EventOrgRebuilt       EventType = "org_rebuilt"
)

// DirectoryAction names the write that changed the directory.
type DirectoryAction string

const (
	DirectoryImported DirectoryAction = "import"
	DirectoryCreated  DirectoryAction = "create"
	DirectoryUpdated  DirectoryAction = "update"
	DirectoryDeleted  DirectoryAction = "delete"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DirectoryChangedPayload payload.
type DirectoryChangedPayload struct {
	Action     DirectoryAction `json:"action"`
	EmployeeID string          `json:"employee_id,omitempty"`
	Count      int             `json:"count"`
}

// OrgRebuiltPayload payload.
type OrgRebuiltPayload struct {
	TotalEmployees int   `json:"total_employees"`
	Branches       int   `json:"branches"`
	DurationMs     int64 `json:"duration_ms"`
}
