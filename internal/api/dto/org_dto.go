package dto

import "time"

// OrgMeta describes a persisted org chart.
type OrgMeta struct {
	TotalEmployees int       `json:"totalEmployees"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
