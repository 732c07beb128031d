package orgchart

import "errors"

var (
	// ErrNoEmployees is returned when no record with a usable name was given.
	ErrNoEmployees = errors.New("no employees found; import the employee directory first")
	// ErrNoRootFound is returned when no record qualifies as the chart root.
	ErrNoRootFound = errors.New("no root employee found")
)
