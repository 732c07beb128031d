package orgchart

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/intranet-directory/internal/domain"
)

// syntheticIDSpace namespaces ids generated for records that arrive without one.
var syntheticIDSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:intranet-directory:orgchart:employee"))

// Builder turns a flat employee directory into a Tree. It holds no state
// between calls and is safe for concurrent use.
type Builder struct {
	rules *Rules
}

// NewBuilder creates a builder. A nil rules value selects DefaultRules.
func NewBuilder(rules *Rules) *Builder {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Builder{rules: rules}
}

// Rules returns the rules the builder classifies with.
func (b *Builder) Rules() *Rules {
	return b.rules
}

// member is a placed record with its placed direct reports.
type member struct {
	id       string
	rec      *domain.Employee
	children []*member
}

// graph holds the per-call indexes over one directory snapshot.
type graph struct {
	records []domain.Employee
	ids     []string
	names   *NameIndex
	reports map[string][]int
	placed  []bool
}

// Build derives the org chart from employees. Input order drives every
// ordering decision in the output.
func (b *Builder) Build(employees []domain.Employee) (*Tree, error) {
	g := newGraph(employees)
	if len(g.records) == 0 {
		return nil, ErrNoEmployees
	}

	roots := g.roots()
	ceo, err := b.selectCEO(g, roots)
	if errors.Is(err, ErrNoRootFound) {
		// Every record sits on a manager cycle; anchor on the first one.
		ceo, err = 0, nil
	}
	if err != nil {
		return nil, err
	}

	top := g.expand(ceo)

	var detached []*member
	for _, i := range roots {
		if !g.placed[i] {
			detached = append(detached, g.expand(i))
		}
	}
	// Records left over are only reachable through a manager cycle.
	for i := range g.records {
		if !g.placed[i] {
			detached = append(detached, g.expand(i))
		}
	}

	tree := &Tree{
		CEO:            g.node(top),
		Branches:       []*Branch{},
		TotalEmployees: len(g.records),
	}

	assistant := -1
	for i, kid := range top.children {
		if b.rules.isSeniorAssistant(kid.rec.Title, kid.rec.Department) {
			assistant = i
			tree.SeniorAssistant = g.subtree(kid)
			break
		}
	}
	branchIDs := idSet{}
	for i, kid := range top.children {
		if i == assistant {
			continue
		}
		tree.Branches = append(tree.Branches, b.branch(g, kid, false, branchIDs))
	}
	for _, m := range detached {
		tree.Branches = append(tree.Branches, b.branch(g, m, true, branchIDs))
	}
	return tree, nil
}

func newGraph(employees []domain.Employee) *graph {
	g := &graph{
		records: make([]domain.Employee, 0, len(employees)),
		reports: make(map[string][]int),
	}
	for _, e := range employees {
		e.Name = strings.TrimSpace(e.Name)
		if NormalizeName(e.Name) == "" {
			continue
		}
		g.records = append(g.records, e)
	}
	g.ids = make([]string, len(g.records))
	g.placed = make([]bool, len(g.records))
	g.names = NewNameIndex(g.records)

	for i := range g.records {
		rec := &g.records[i]
		g.ids[i] = recordID(rec, i)
		if mgr := NormalizeName(rec.ReportingManagerName); mgr != "" {
			g.reports[mgr] = append(g.reports[mgr], i)
		}
	}
	return g
}

func recordID(rec *domain.Employee, position int) string {
	if id := strings.TrimSpace(rec.ID); id != "" {
		return id
	}
	seed := strconv.Itoa(position) + ":" + NormalizeName(rec.Name)
	return uuid.NewSHA1(syntheticIDSpace, []byte(seed)).String()
}

// roots lists records without a manager or whose manager is not in the
// directory, in input order.
func (g *graph) roots() []int {
	var roots []int
	for i := range g.records {
		mgr := g.records[i].ReportingManagerName
		if NormalizeName(mgr) == "" || !g.names.Has(mgr) {
			roots = append(roots, i)
		}
	}
	return roots
}

func (b *Builder) selectCEO(g *graph, roots []int) (int, error) {
	if len(roots) == 0 {
		return 0, ErrNoRootFound
	}
	for _, i := range roots {
		if b.rules.isCEOTitle(g.records[i].Title) {
			return i, nil
		}
	}
	return roots[0], nil
}

// expand places record i and, recursively, its not yet placed reports.
func (g *graph) expand(i int) *member {
	g.placed[i] = true
	m := &member{id: g.ids[i], rec: &g.records[i]}
	for _, c := range g.reports[NormalizeName(m.rec.Name)] {
		if g.placed[c] {
			continue
		}
		m.children = append(m.children, g.expand(c))
	}
	return m
}

// node renders a member without its reports.
func (g *graph) node(m *member) *Node {
	return &Node{
		ID:       m.id,
		Name:     m.rec.Name,
		Title:    strings.TrimSpace(m.rec.Title),
		Email:    strings.TrimSpace(m.rec.Email),
		Phone:    strings.TrimSpace(m.rec.Phone),
		Children: []*Node{},
	}
}

// subtree renders a member with all of its reports.
func (g *graph) subtree(m *member) *Node {
	n := g.node(m)
	for _, c := range m.children {
		n.Children = append(n.Children, g.subtree(c))
	}
	return n
}

func (b *Builder) branch(g *graph, exec *member, detached bool, ids idSet) *Branch {
	execNode := g.node(exec)
	base := b.rules.Key(exec.rec.Name)
	if base == "" {
		base = execNode.ID
	}
	id := ids.claim(base)
	return &Branch{
		ID:          id,
		Color:       b.rules.spec.BranchColor,
		Executive:   execNode,
		Detached:    detached,
		Departments: b.departments(g, exec, id),
	}
}

// departments turns every report of the executive who manages people into a
// department, then gathers the remaining individual contributors into
// departments with placeholder heads. Department ids are unique within the
// branch; repeats of a name get a numeric suffix in document order.
func (b *Builder) departments(g *graph, exec *member, branchID string) []*Department {
	depts := []*Department{}
	ids := idSet{}
	var contributors []*member
	for _, c := range exec.children {
		if len(c.children) == 0 {
			contributors = append(contributors, c)
			continue
		}
		name := b.rules.departmentName(c.rec.Department)
		depts = append(depts, &Department{
			ID:       ids.claim(b.groupKey(name)),
			Name:     name,
			Color:    b.rules.DepartmentColor(name),
			Head:     g.node(c),
			SubTeams: b.subTeams(g, c.children),
		})
	}

	for _, grp := range b.group(contributors, func(m *member) string {
		return b.rules.departmentName(m.rec.Department)
	}) {
		id := ids.claim(b.groupKey(grp.name))
		depts = append(depts, &Department{
			ID:    id,
			Name:  grp.name,
			Color: b.rules.DepartmentColor(grp.name),
			Head: &Node{
				ID:       "tbd-" + branchID + "-" + id,
				Name:     b.rules.spec.PlaceholderHeadName,
				Title:    "Head of " + grp.name,
				Children: []*Node{},
			},
			Placeholder: true,
			SubTeams:    b.subTeams(g, grp.members),
		})
	}
	return depts
}

func (b *Builder) subTeams(g *graph, members []*member) []*SubTeam {
	groups := b.group(members, func(m *member) string {
		return b.rules.subTeamName(m.rec.SubTeam)
	})
	out := make([]*SubTeam, 0, len(groups))
	for i, grp := range groups {
		st := &SubTeam{
			ID:      b.groupKey(grp.name),
			Name:    grp.name,
			Color:   b.rules.SubTeamColor(i),
			Members: make([]*Node, 0, len(grp.members)),
		}
		for _, m := range grp.members {
			st.Members = append(st.Members, g.subtree(m))
		}
		out = append(out, st)
	}
	return out
}

type memberGroup struct {
	name    string
	members []*member
}

// group buckets members by the key of label(m), keeping first-seen order of
// groups and input order within each group. The first label seen names the group.
func (b *Builder) group(members []*member, label func(*member) string) []*memberGroup {
	var groups []*memberGroup
	byKey := make(map[string]*memberGroup)
	for _, m := range members {
		name := label(m)
		key := b.groupKey(name)
		grp, ok := byKey[key]
		if !ok {
			grp = &memberGroup{name: name}
			byKey[key] = grp
			groups = append(groups, grp)
		}
		grp.members = append(grp.members, m)
	}
	return groups
}

func (b *Builder) groupKey(name string) string {
	if key := b.rules.Key(name); key != "" {
		return key
	}
	return NormalizeName(name)
}

// idSet hands out ids that are unique within one scope.
type idSet map[string]struct{}

// claim returns base, or base with the lowest free "-N" suffix from 2 up.
func (s idSet) claim(base string) string {
	id := base
	for n := 2; ; n++ {
		if _, taken := s[id]; !taken {
			break
		}
		id = base + "-" + strconv.Itoa(n)
	}
	s[id] = struct{}{}
	return id
}
