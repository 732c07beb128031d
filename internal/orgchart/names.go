package orgchart

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/spec-kit/intranet-directory/internal/domain"
)

var nonKeyRe = regexp.MustCompile(`[^a-z0-9]`)

// NormalizeName returns the join key used to match employee names against
// reporting-manager names: case folded, trimmed, inner whitespace collapsed.
func NormalizeName(s string) string {
	if s == "" {
		return ""
	}
	// cases.Caser is stateful, so one per call.
	folded := cases.Fold().String(norm.NFC.String(s))
	return strings.Join(strings.Fields(folded), " ")
}

// normalizeKey derives an identifier from a display name: lowercase,
// abbreviations expanded, everything outside [a-z0-9] removed.
func normalizeKey(s string, abbreviations []abbreviation) string {
	if s == "" {
		return ""
	}
	key := strings.ToLower(s)
	for _, a := range abbreviations {
		key = a.re.ReplaceAllString(key, a.to)
	}
	return nonKeyRe.ReplaceAllString(key, "")
}

// NameIndex resolves names to directory records using NormalizeName.
// When two records share a name the later one wins.
type NameIndex struct {
	records []domain.Employee
	byName  map[string]int
}

// NewNameIndex indexes records by normalized name. Blank names are skipped.
func NewNameIndex(records []domain.Employee) *NameIndex {
	idx := &NameIndex{
		records: records,
		byName:  make(map[string]int, len(records)),
	}
	for i := range records {
		key := NormalizeName(records[i].Name)
		if key == "" {
			continue
		}
		idx.byName[key] = i
	}
	return idx
}

// Lookup returns the record whose name matches name.
func (x *NameIndex) Lookup(name string) (domain.Employee, bool) {
	i, ok := x.position(name)
	if !ok {
		return domain.Employee{}, false
	}
	return x.records[i], true
}

// Has reports whether name resolves to a record.
func (x *NameIndex) Has(name string) bool {
	_, ok := x.position(name)
	return ok
}

// Len returns the number of distinct normalized names.
func (x *NameIndex) Len() int {
	return len(x.byName)
}

func (x *NameIndex) position(name string) (int, bool) {
	key := NormalizeName(name)
	if key == "" {
		return 0, false
	}
	i, ok := x.byName[key]
	return i, ok
}
