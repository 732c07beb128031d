package orgchart

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intranet-directory/internal/domain"
)

func emp(id, name, title, dept, subTeam, manager string) domain.Employee {
	return domain.Employee{
		ID:                   id,
		Name:                 name,
		Title:                title,
		Department:           dept,
		SubTeam:              subTeam,
		Email:                id + "@example.com",
		ReportingManagerName: manager,
	}
}

func build(t *testing.T, employees []domain.Employee) *Tree {
	t.Helper()
	tree, err := NewBuilder(nil).Build(employees)
	require.NoError(t, err)
	return tree
}

type placement struct {
	name    string
	manager string
	role    Role
}

func placements(tree *Tree) []placement {
	var out []placement
	tree.Walk(func(n, mgr *Node, role Role) {
		p := placement{name: n.Name, role: role}
		if mgr != nil {
			p.manager = mgr.Name
		}
		out = append(out, p)
	})
	return out
}

func TestBuild_MinimalBranch(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("1", "Alice", "CEO", "", "", ""),
		emp("2", "Bob", "VP Sales", "Sales", "", "Alice"),
		emp("3", "Carl", "Rep", "Sales", "East", "Bob"),
	})

	assert.Equal(t, "Alice", tree.CEO.Name)
	assert.Empty(t, tree.CEO.Children)
	assert.Nil(t, tree.SeniorAssistant)
	require.Len(t, tree.Branches, 1)

	branch := tree.Branches[0]
	assert.Equal(t, "Bob", branch.Executive.Name)
	assert.Equal(t, "bob", branch.ID)
	assert.False(t, branch.Detached)
	require.Len(t, branch.Departments, 1)

	dept := branch.Departments[0]
	assert.Equal(t, "Sales", dept.Name)
	assert.Equal(t, "sales", dept.ID)
	assert.True(t, dept.Placeholder)
	assert.Equal(t, "TBD", dept.Head.Name)
	assert.Equal(t, "Head of Sales", dept.Head.Title)
	assert.Equal(t, "tbd-bob-sales", dept.Head.ID)
	require.Len(t, dept.SubTeams, 1)
	assert.Equal(t, "East", dept.SubTeams[0].Name)
	require.Len(t, dept.SubTeams[0].Members, 1)
	assert.Equal(t, "Carl", dept.SubTeams[0].Members[0].Name)
	assert.Equal(t, 3, tree.TotalEmployees)
}

func TestBuild_UnmatchedManagerIsPromoted(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("1", "Alice", "", "", "", ""),
		emp("2", "Dave", "Engineer", "R&D", "", "Alise"),
	})

	assert.Equal(t, "Alice", tree.CEO.Name)
	require.Len(t, tree.Branches, 1)
	assert.Equal(t, "Dave", tree.Branches[0].Executive.Name)
	assert.True(t, tree.Branches[0].Detached)
}

func TestBuild_NoEmployees(t *testing.T) {
	_, err := NewBuilder(nil).Build(nil)
	assert.ErrorIs(t, err, ErrNoEmployees)

	_, err = NewBuilder(nil).Build([]domain.Employee{{ID: "1", Name: "  "}, {ID: "2"}})
	assert.ErrorIs(t, err, ErrNoEmployees)
}

func TestBuild_FirstCEOWins(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("x", "X", "CEO", "", "", ""),
		emp("y", "Y", "CEO", "", "", ""),
	})

	assert.Equal(t, "X", tree.CEO.Name)
	require.Len(t, tree.Branches, 1)
	assert.Equal(t, "Y", tree.Branches[0].Executive.Name)
	assert.True(t, tree.Branches[0].Detached)
}

func TestBuild_CEOTitlePreferredOverInputOrder(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("1", "Orphan", "Consultant", "", "", "Nobody"),
		emp("2", "Alice", "Chief Executive Officer", "", "", ""),
	})

	assert.Equal(t, "Alice", tree.CEO.Name)
	require.Len(t, tree.Branches, 1)
	assert.Equal(t, "Orphan", tree.Branches[0].Executive.Name)
}

func TestBuild_NameNormalization(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("1", "Alice", "CEO", "", "", ""),
		emp("2", "Bob Smith ", "VP", "Ops", "", "  alice "),
	})

	require.Len(t, tree.Branches, 1)
	assert.Equal(t, "Bob Smith", tree.Branches[0].Executive.Name)
	assert.False(t, tree.Branches[0].Detached)
}

func TestBuild_SeniorAssistant(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("1", "Alice", "CEO", "", "", ""),
		emp("2", "Lena", "Team Lead", "Office", "", "Alice"),
		emp("3", "Eve", "EA", "CEO Office", "", "Alice"),
		emp("4", "Ivy", "Executive Assistant", "CEO Office", "", "Alice"),
		emp("5", "Finn", "Office Runner", "CEO Office", "", "Eve"),
	})

	require.NotNil(t, tree.SeniorAssistant)
	assert.Equal(t, "Eve", tree.SeniorAssistant.Name)
	require.Len(t, tree.SeniorAssistant.Children, 1)
	assert.Equal(t, "Finn", tree.SeniorAssistant.Children[0].Name)

	var execs []string
	for _, b := range tree.Branches {
		execs = append(execs, b.Executive.Name)
	}
	assert.Equal(t, []string{"Lena", "Ivy"}, execs)
}

func TestBuild_DepartmentsAndSubTeams(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("1", "Alice", "CEO", "", "", ""),
		emp("2", "Bob", "CTO", "Technology", "", "Alice"),
		emp("3", "Dana", "Engineering Manager", "Engineering", "", "Bob"),
		emp("4", "Eli", "Engineer", "Engineering", "Backend", "Dana"),
		emp("5", "Fay", "Engineer", "Engineering", "Frontend", "Dana"),
		emp("6", "Gus", "Engineer", "Engineering", "backend ", "Dana"),
		emp("7", "Hal", "Intern", "Engineering", "Backend", "Eli"),
		emp("8", "Ida", "Analyst", "I.T. Admin.", "", "Bob"),
		emp("9", "Jon", "Analyst", "Finance", "", "Bob"),
		emp("10", "Kim", "Analyst", "it admin", "Desk", "Bob"),
	})

	require.Len(t, tree.Branches, 1)
	depts := tree.Branches[0].Departments
	require.Len(t, depts, 3)

	eng := depts[0]
	assert.Equal(t, "Engineering", eng.Name)
	assert.False(t, eng.Placeholder)
	assert.Equal(t, "Dana", eng.Head.Name)
	assert.Empty(t, eng.Head.Children)
	require.Len(t, eng.SubTeams, 2)

	palette := DefaultRules().Spec().SubTeamPalette
	backend, frontend := eng.SubTeams[0], eng.SubTeams[1]
	assert.Equal(t, "Backend", backend.Name)
	assert.Equal(t, "backend", backend.ID)
	assert.Equal(t, palette[0], backend.Color)
	require.Len(t, backend.Members, 2)
	assert.Equal(t, "Eli", backend.Members[0].Name)
	assert.Equal(t, "Gus", backend.Members[1].Name)
	require.Len(t, backend.Members[0].Children, 1)
	assert.Equal(t, "Hal", backend.Members[0].Children[0].Name)
	assert.Equal(t, "Frontend", frontend.Name)
	assert.Equal(t, palette[1], frontend.Color)

	itAdmin := depts[1]
	assert.Equal(t, "I.T. Admin.", itAdmin.Name)
	assert.Equal(t, "itadmin", itAdmin.ID)
	assert.True(t, itAdmin.Placeholder)
	assert.Equal(t, "bg-gray-100", itAdmin.Color)
	require.Len(t, itAdmin.SubTeams, 2)
	assert.Equal(t, "General", itAdmin.SubTeams[0].Name)
	assert.Equal(t, "Ida", itAdmin.SubTeams[0].Members[0].Name)
	assert.Equal(t, "Desk", itAdmin.SubTeams[1].Name)
	assert.Equal(t, "Kim", itAdmin.SubTeams[1].Members[0].Name)

	finance := depts[2]
	assert.Equal(t, "Finance", finance.Name)
	assert.Equal(t, "bg-green-100", finance.Color)
	assert.Equal(t, "Jon", finance.SubTeams[0].Members[0].Name)
}

func TestBuild_MissingDepartmentFallsBackToDefault(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("1", "Alice", "CEO", "", "", ""),
		emp("2", "Bob", "VP", "", "", "Alice"),
		emp("3", "Cy", "Lead", "", "", "Bob"),
		emp("4", "Di", "Dev", "", "", "Cy"),
		emp("5", "Ed", "Dev", "", "", "Bob"),
	})

	depts := tree.Branches[0].Departments
	require.Len(t, depts, 2)
	assert.Equal(t, "General", depts[0].Name)
	assert.Equal(t, "Cy", depts[0].Head.Name)
	assert.Equal(t, "General", depts[1].Name)
	assert.True(t, depts[1].Placeholder)
	assert.Equal(t, "Ed", depts[1].SubTeams[0].Members[0].Name)
}

func TestBuild_ManagerCyclesAreNotDropped(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("c", "Cleo", "CEO", "", "", ""),
		emp("a", "Ann", "Lead", "Ops", "", "Ben"),
		emp("b", "Ben", "Lead", "Ops", "", "Ann"),
		emp("s", "Sol", "Solo", "Ops", "", "Sol"),
	})

	assert.Equal(t, "Cleo", tree.CEO.Name)
	require.Len(t, tree.Branches, 2)
	assert.Equal(t, "Ann", tree.Branches[0].Executive.Name)
	assert.True(t, tree.Branches[0].Detached)
	assert.Equal(t, "Ben", tree.Branches[0].Departments[0].SubTeams[0].Members[0].Name)
	assert.Equal(t, "Sol", tree.Branches[1].Executive.Name)
	assert.Empty(t, tree.Branches[1].Departments)
}

func TestBuild_OnlyCyclesFallsBackToFirstRecord(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("a", "Ann", "", "", "", "Ben"),
		emp("b", "Ben", "", "", "", "Ann"),
	})

	assert.Equal(t, "Ann", tree.CEO.Name)
	require.Len(t, tree.Branches, 1)
	assert.Equal(t, "Ben", tree.Branches[0].Executive.Name)
	assert.False(t, tree.Branches[0].Detached)
}

func TestBuild_DuplicateNamesKeepBothRecords(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("1", "Alice", "CEO", "", "", ""),
		emp("2", "Sam", "VP", "Sales", "", "Alice"),
		emp("3", "Sam", "VP", "Support", "", "Alice"),
		emp("4", "Tia", "Rep", "Sales", "", "Sam"),
	})

	var names []string
	for _, p := range placements(tree) {
		names = append(names, p.name)
	}
	assert.ElementsMatch(t, []string{"Alice", "Sam", "Sam", "TBD", "Tia"}, names)
}

func TestBuild_DepartmentIDsUniqueWithinBranch(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("1", "Ann", "CEO", "", "", ""),
		emp("2", "Bob", "VP Sales", "Sales", "", "Ann"),
		emp("3", "Dana", "Sales Manager", "Sales", "", "Bob"),
		emp("4", "Eve", "Rep", "Sales", "", "Dana"),
		emp("5", "Gus", "Sales Manager", "sales", "", "Bob"),
		emp("6", "Hal", "Rep", "Sales", "", "Gus"),
		emp("7", "Ivy", "Rep", "Sales", "West", "Bob"),
	})

	require.Len(t, tree.Branches, 1)
	depts := tree.Branches[0].Departments
	require.Len(t, depts, 3)

	var ids []string
	for _, d := range depts {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"sales", "sales-2", "sales-3"}, ids)
	assert.Equal(t, "Dana", depts[0].Head.Name)
	assert.Equal(t, "Gus", depts[1].Head.Name)
	assert.True(t, depts[2].Placeholder)
	assert.Equal(t, "tbd-bob-sales-3", depts[2].Head.ID)
}

func TestBuild_BranchIDsUniqueForSameNamedExecutives(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("1", "Ann", "CEO", "", "", ""),
		emp("2", "Lee", "VP Sales", "Sales", "", "Ann"),
		emp("3", "Lee", "VP Support", "Support", "", "Ann"),
		emp("4", "Max", "Founder", "", "", "Nobody"),
		emp("5", "Max", "Advisor", "", "", "Nobody"),
	})

	var ids []string
	for _, b := range tree.Branches {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"lee", "lee-2", "max", "max-2"}, ids)
}

func TestIDSet_Claim(t *testing.T) {
	ids := idSet{}
	assert.Equal(t, "ops", ids.claim("ops"))
	assert.Equal(t, "ops-2", ids.claim("ops"))
	assert.Equal(t, "ops-3", ids.claim("ops"))
	assert.Equal(t, "ops-2-2", ids.claim("ops-2"))
}

func TestBuild_SyntheticIDsAreStable(t *testing.T) {
	input := []domain.Employee{
		{Name: "Alice", Title: "CEO"},
		{Name: "Bob", ReportingManagerName: "Alice"},
		{Name: "Bob", ReportingManagerName: "Alice"},
	}

	first := build(t, input)
	second := build(t, input)

	assert.NotEmpty(t, first.CEO.ID)
	assert.Equal(t, first.CEO.ID, second.CEO.ID)
	require.Len(t, first.Branches, 2)
	assert.NotEqual(t, first.Branches[0].Executive.ID, first.Branches[1].Executive.ID)
}

// sampleDirectory builds a directory with an assistant, several branches,
// managers, individual contributors, nested reports and one orphan.
func sampleDirectory() []domain.Employee {
	out := []domain.Employee{
		emp("ceo", "Grace Hopper", "CEO", "Leadership", "", ""),
		emp("ea", "Alan Turing", "Executive Assistant", "CEO Office", "", "grace hopper"),
	}
	for v := 0; v < 3; v++ {
		vp := fmt.Sprintf("VP %d", v)
		out = append(out, emp(vp, vp, "Vice President", fmt.Sprintf("Line %d", v), "", "Grace Hopper"))
		for m := 0; m < 2; m++ {
			mgr := fmt.Sprintf("Manager %d-%d", v, m)
			out = append(out, emp(mgr, mgr, "Manager", fmt.Sprintf("Dept %d-%d", v, m), "", vp))
			for i := 0; i < 4; i++ {
				ic := fmt.Sprintf("IC %d-%d-%d", v, m, i)
				out = append(out, emp(ic, ic, "Engineer", "", fmt.Sprintf("Team %d", i%2), mgr))
			}
		}
		solo := fmt.Sprintf("Solo %d", v)
		out = append(out, emp(solo, solo, "Analyst", "Analytics", "", vp))
	}
	out = append(out,
		emp("nest", "Nested Report", "Junior", "", "", "IC 1-1-2"),
		emp("orphan", "Orphan", "Contractor", "", "", "Former Employee"),
	)
	return out
}

func TestBuild_EveryEmployeePlacedOnce(t *testing.T) {
	input := sampleDirectory()
	tree := build(t, input)

	seen := make(map[string]int)
	for _, p := range placements(tree) {
		if p.role == RolePlaceholder {
			continue
		}
		seen[p.name]++
	}
	assert.Len(t, seen, len(input))
	for _, e := range input {
		assert.Equal(t, 1, seen[e.Name], "employee %s", e.Name)
	}
}

func TestBuild_ParentChildFidelity(t *testing.T) {
	input := sampleDirectory()
	idx := NewNameIndex(input)
	tree := build(t, input)

	managers := make(map[string]string)
	for _, p := range placements(tree) {
		if p.role != RolePlaceholder {
			managers[p.name] = p.manager
		}
	}
	for _, e := range input {
		mgr, ok := idx.Lookup(e.ReportingManagerName)
		if !ok {
			assert.Empty(t, managers[e.Name], "unresolved manager for %s", e.Name)
			continue
		}
		assert.Equal(t, mgr.Name, managers[e.Name], "manager of %s", e.Name)
	}
}

func TestBuild_SubTeamGrouping(t *testing.T) {
	tree := build(t, sampleDirectory())

	for _, b := range tree.Branches {
		for _, d := range b.Departments {
			seen := make(map[string]bool)
			for _, st := range d.SubTeams {
				assert.False(t, seen[st.ID], "sub-team %s repeated in %s", st.ID, d.Name)
				seen[st.ID] = true
			}
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	input := sampleDirectory()
	first := build(t, input)
	second := build(t, input)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("builds differ (-first +second):\n%s", diff)
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	input := []domain.Employee{
		emp("1", " Alice ", "CEO", "", "", ""),
	}
	build(t, input)
	assert.Equal(t, " Alice ", input[0].Name)
}

func TestTree_JSONShape(t *testing.T) {
	tree := build(t, []domain.Employee{
		emp("1", "Alice", "CEO", "", "", ""),
		emp("2", "Bob", "VP", "Sales", "", "Alice"),
		emp("3", "Carl", "Rep", "Sales", "East", "Bob"),
	})

	raw, err := json.Marshal(tree)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "ceo")
	assert.Contains(t, decoded, "seniorAssistant")
	assert.Nil(t, decoded["seniorAssistant"])
	assert.Equal(t, float64(3), decoded["totalEmployees"])

	branches := decoded["branches"].([]any)
	branch := branches[0].(map[string]any)
	assert.Equal(t, "bg-orange-500", branch["color"])
	dept := branch["departments"].([]any)[0].(map[string]any)
	assert.Equal(t, true, dept["placeholder"])
	sub := dept["subTeams"].([]any)[0].(map[string]any)
	member := sub["members"].([]any)[0].(map[string]any)
	assert.Equal(t, "Carl", member["name"])
	assert.Equal(t, []any{}, member["children"])
}
