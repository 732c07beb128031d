package orgchart

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// RulesSpec is the YAML form of the builder rules.
type RulesSpec struct {
	CEOTitlePatterns        []string           `yaml:"ceo_title_patterns"`
	AssistantTitlePatterns  []string           `yaml:"assistant_title_patterns"`
	ExecutiveOfficePatterns []string           `yaml:"executive_office_patterns"`
	DefaultSubTeam          string             `yaml:"default_sub_team"`
	PlaceholderHeadName     string             `yaml:"placeholder_head_name"`
	KeyAbbreviations        []AbbreviationSpec `yaml:"key_abbreviations"`
	BranchColor             string             `yaml:"branch_color"`
	DefaultDepartmentColor  string             `yaml:"default_department_color"`
	DepartmentColors        map[string]string  `yaml:"department_colors"`
	SubTeamPalette          []string           `yaml:"sub_team_palette"`
}

// AbbreviationSpec expands a whole-word abbreviation when deriving keys.
type AbbreviationSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type abbreviation struct {
	re *regexp.Regexp
	to string
}

// Rules holds the compiled classification and presentation rules.
type Rules struct {
	spec            RulesSpec
	ceoTitle        []*regexp.Regexp
	assistantTitle  []*regexp.Regexp
	executiveOffice []*regexp.Regexp
	abbreviations   []abbreviation
}

// DefaultRules returns the embedded rule set.
func DefaultRules() *Rules {
	rules, err := ParseRules(nil)
	if err != nil {
		panic(fmt.Sprintf("orgchart: embedded rules invalid: %v", err))
	}
	return rules
}

// LoadRules reads a YAML override file. An empty path yields the defaults.
func LoadRules(path string) (*Rules, error) {
	if strings.TrimSpace(path) == "" {
		return ParseRules(nil)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(b)
}

// ParseRules decodes override on top of the embedded defaults. Keys present in
// override replace the default value; department_colors entries are merged.
func ParseRules(override []byte) (*Rules, error) {
	var spec RulesSpec
	if err := yaml.Unmarshal(defaultRulesYAML, &spec); err != nil {
		return nil, fmt.Errorf("decode default rules: %w", err)
	}
	if len(override) > 0 {
		if err := yaml.Unmarshal(override, &spec); err != nil {
			return nil, fmt.Errorf("decode rules: %w", err)
		}
	}
	return compileRules(spec)
}

func compileRules(spec RulesSpec) (*Rules, error) {
	if strings.TrimSpace(spec.DefaultSubTeam) == "" {
		return nil, errors.New("rules: default_sub_team is required")
	}
	if strings.TrimSpace(spec.PlaceholderHeadName) == "" {
		return nil, errors.New("rules: placeholder_head_name is required")
	}
	if len(spec.SubTeamPalette) == 0 {
		return nil, errors.New("rules: sub_team_palette must not be empty")
	}

	r := &Rules{spec: spec}
	var err error
	if r.ceoTitle, err = compilePatterns("ceo_title_patterns", spec.CEOTitlePatterns); err != nil {
		return nil, err
	}
	if r.assistantTitle, err = compilePatterns("assistant_title_patterns", spec.AssistantTitlePatterns); err != nil {
		return nil, err
	}
	if r.executiveOffice, err = compilePatterns("executive_office_patterns", spec.ExecutiveOfficePatterns); err != nil {
		return nil, err
	}
	for _, a := range spec.KeyAbbreviations {
		from := strings.ToLower(strings.TrimSpace(a.From))
		if from == "" {
			return nil, errors.New("rules: key_abbreviations entry with empty from")
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(from) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("rules: key_abbreviations %q: %w", a.From, err)
		}
		r.abbreviations = append(r.abbreviations, abbreviation{re: re, to: strings.ToLower(a.To)})
	}
	return r, nil
}

func compilePatterns(field string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("rules: %s %q: %w", field, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Spec returns a copy of the decoded rule values.
func (r *Rules) Spec() RulesSpec {
	return r.spec
}

// Key derives a department or sub-team identifier from a display name.
func (r *Rules) Key(name string) string {
	return normalizeKey(name, r.abbreviations)
}

// DepartmentColor looks up the display color of a department.
func (r *Rules) DepartmentColor(name string) string {
	if c, ok := r.spec.DepartmentColors[r.Key(name)]; ok {
		return c
	}
	return r.spec.DefaultDepartmentColor
}

// SubTeamColor cycles through the sub-team palette.
func (r *Rules) SubTeamColor(index int) string {
	if index < 0 {
		index = -index
	}
	return r.spec.SubTeamPalette[index%len(r.spec.SubTeamPalette)]
}

func (r *Rules) isCEOTitle(title string) bool {
	return matchAny(r.ceoTitle, NormalizeName(title))
}

func (r *Rules) isSeniorAssistant(title, department string) bool {
	return matchAny(r.assistantTitle, NormalizeName(title)) &&
		matchAny(r.executiveOffice, NormalizeName(department))
}

func (r *Rules) subTeamName(raw string) string {
	if name := strings.TrimSpace(raw); name != "" {
		return name
	}
	return r.spec.DefaultSubTeam
}

func (r *Rules) departmentName(raw string) string {
	return r.subTeamName(raw)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	if s == "" {
		return false
	}
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
