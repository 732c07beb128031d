package domain

import "time"

// CurrentSnapshotKey identifies the single live org chart snapshot.
const CurrentSnapshotKey = "current"

// OrgSnapshot is a persisted, immutable rendering of the org chart.
type OrgSnapshot struct {
	Key            string
	Data           []byte
	TotalEmployees int
	UpdatedAt      time.Time
}
