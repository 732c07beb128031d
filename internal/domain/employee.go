package domain

import (
	"strings"
	"time"
)

// Employee is one row of the employee directory.
type Employee struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Title                string    `json:"title,omitempty"`
	Department           string    `json:"department,omitempty"`
	SubTeam              string    `json:"subTeam,omitempty"`
	Email                string    `json:"email,omitempty"`
	Phone                string    `json:"phone,omitempty"`
	ReportingManagerName string    `json:"reportingManagerName,omitempty"`
	PrimarySkills        []string  `json:"primarySkills,omitempty"`
	SecondarySkills      []string  `json:"secondarySkills,omitempty"`
	Certifications       []string  `json:"certifications,omitempty"`
	Position             int64     `json:"-"`
	CreatedAt            time.Time `json:"createdAt,omitempty"`
	UpdatedAt            time.Time `json:"updatedAt,omitempty"`
}

// SkillProfile is the learning-and-development view of an employee.
type SkillProfile struct {
	PrimarySkills   []string
	SecondarySkills []string
	Certifications  []string
}

// Skills returns the employee's skill profile.
func (e Employee) Skills() SkillProfile {
	return SkillProfile{
		PrimarySkills:   e.PrimarySkills,
		SecondarySkills: e.SecondarySkills,
		Certifications:  e.Certifications,
	}
}

// Clean returns the profile with every list passed through CleanSkillList.
func (p SkillProfile) Clean() SkillProfile {
	return SkillProfile{
		PrimarySkills:   CleanSkillList(p.PrimarySkills),
		SecondarySkills: CleanSkillList(p.SecondarySkills),
		Certifications:  CleanSkillList(p.Certifications),
	}
}

// CleanSkillList splits comma separated entries, trims them and drops blanks,
// keeping order. The result is never nil.
func CleanSkillList(items []string) []string {
	out := []string{}
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
