package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/intranet-directory/internal/domain"
)

// EmployeeRequest payload for creating, replacing and importing employees.
type EmployeeRequest struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Title                string   `json:"title"`
	Department           string   `json:"department"`
	SubTeam              string   `json:"subTeam"`
	Email                string   `json:"email"`
	Phone                string   `json:"phone"`
	ReportingManagerName string   `json:"reportingManagerName"`
	PrimarySkills        []string `json:"primarySkills"`
	SecondarySkills      []string `json:"secondarySkills"`
	Certifications       []string `json:"certifications"`
}

// ToDomain converts the payload.
func (r EmployeeRequest) ToDomain() domain.Employee {
	return domain.Employee{
		ID:                   r.ID,
		Name:                 r.Name,
		Title:                r.Title,
		Department:           r.Department,
		SubTeam:              r.SubTeam,
		Email:                r.Email,
		Phone:                r.Phone,
		ReportingManagerName: r.ReportingManagerName,
		PrimarySkills:        r.PrimarySkills,
		SecondarySkills:      r.SecondarySkills,
		Certifications:       r.Certifications,
	}
}

// SkillsRequest replaces an employee's skill lists. An omitted list is
// cleared. Entries may hold comma separated values.
type SkillsRequest struct {
	PrimarySkills   []string `json:"primarySkills"`
	SecondarySkills []string `json:"secondarySkills"`
	Certifications  []string `json:"certifications"`
}

// ToProfile converts the payload.
func (r SkillsRequest) ToProfile() domain.SkillProfile {
	return domain.SkillProfile{
		PrimarySkills:   r.PrimarySkills,
		SecondarySkills: r.SecondarySkills,
		Certifications:  r.Certifications,
	}.Clean()
}

// ImportRequest wraps an import when it is not sent as a bare array.
type ImportRequest struct {
	Employees []EmployeeRequest `json:"employees"`
}

// ImportResponse reports how many rows replaced the directory.
type ImportResponse struct {
	Imported int64 `json:"imported"`
}

// EmployeeResponse is the public view of a directory entry.
type EmployeeResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Title                string    `json:"title"`
	Department           string    `json:"department"`
	SubTeam              string    `json:"subTeam"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone"`
	ReportingManagerName string    `json:"reportingManagerName"`
	PrimarySkills        []string  `json:"primarySkills"`
	SecondarySkills      []string  `json:"secondarySkills"`
	Certifications       []string  `json:"certifications"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// NewEmployeeResponse maps a domain employee. Skill lists are never null.
func NewEmployeeResponse(e domain.Employee) EmployeeResponse {
	skills := e.Skills().Clean()
	return EmployeeResponse{
		ID:                   e.ID,
		Name:                 e.Name,
		Title:                e.Title,
		Department:           e.Department,
		SubTeam:              e.SubTeam,
		Email:                e.Email,
		Phone:                e.Phone,
		ReportingManagerName: e.ReportingManagerName,
		PrimarySkills:        skills.PrimarySkills,
		SecondarySkills:      skills.SecondarySkills,
		Certifications:       skills.Certifications,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

// ErrInvalidImport reports a body that is neither an employee array nor an
// object with an "employees" array.
var ErrInvalidImport = errors.New("import payload must be a JSON array of employees or an object with an \"employees\" array")

// DecodeImport parses an import body, keeping row order.
func DecodeImport(body []byte) ([]domain.Employee, error) {
	body = bytes.TrimSpace(body)
	var rows []EmployeeRequest
	switch {
	case len(body) > 0 && body[0] == '[':
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
	case len(body) > 0 && body[0] == '{':
		var req ImportRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		rows = req.Employees
	default:
		return nil, ErrInvalidImport
	}

	employees := make([]domain.Employee, 0, len(rows))
	for _, r := range rows {
		employees = append(employees, r.ToDomain())
	}
	return employees, nil
}
