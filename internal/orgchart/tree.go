package orgchart

// Node is one person in the rendered org chart.
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Title    string  `json:"title"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Children []*Node `json:"children"`
}

// SubTeam groups members of a department that share a sub-team tag.
type SubTeam struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Color   string  `json:"color"`
	Members []*Node `json:"members"`
}

// Department groups the reports of one manager inside a branch. When nobody
// manages the group, Head is a placeholder and Placeholder is set.
type Department struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Color       string     `json:"color"`
	Head        *Node      `json:"head"`
	Placeholder bool       `json:"placeholder,omitempty"`
	SubTeams    []*SubTeam `json:"subTeams"`
}

// Branch is a line of business headed by an executive. Detached branches are
// headed by people whose reporting manager could not be resolved.
type Branch struct {
	ID          string        `json:"id"`
	Color       string        `json:"color"`
	Executive   *Node         `json:"executive"`
	Detached    bool          `json:"detached,omitempty"`
	Departments []*Department `json:"departments"`
}

// Tree is the full org chart.
type Tree struct {
	CEO             *Node     `json:"ceo"`
	SeniorAssistant *Node     `json:"seniorAssistant"`
	Branches        []*Branch `json:"branches"`
	TotalEmployees  int       `json:"totalEmployees"`
}

// Role describes where a node sits in the tree.
type Role string

const (
	RoleCEO             Role = "ceo"
	RoleSeniorAssistant Role = "senior_assistant"
	RoleExecutive       Role = "executive"
	RoleHead            Role = "head"
	RolePlaceholder     Role = "placeholder"
	RoleMember          Role = "member"
)

// WalkFunc receives each node together with the node of its manager in the
// chart (nil for the CEO and detached executives).
type WalkFunc func(n *Node, manager *Node, role Role)

// Walk visits every node once in document order.
func (t *Tree) Walk(fn WalkFunc) {
	if t == nil || t.CEO == nil {
		return
	}
	fn(t.CEO, nil, RoleCEO)
	if t.SeniorAssistant != nil {
		fn(t.SeniorAssistant, t.CEO, RoleSeniorAssistant)
		walkChildren(t.SeniorAssistant, fn)
	}
	for _, b := range t.Branches {
		var mgr *Node
		if !b.Detached {
			mgr = t.CEO
		}
		fn(b.Executive, mgr, RoleExecutive)
		for _, d := range b.Departments {
			membersMgr := d.Head
			if d.Placeholder {
				fn(d.Head, b.Executive, RolePlaceholder)
				membersMgr = b.Executive
			} else {
				fn(d.Head, b.Executive, RoleHead)
			}
			for _, st := range d.SubTeams {
				for _, m := range st.Members {
					fn(m, membersMgr, RoleMember)
					walkChildren(m, fn)
				}
			}
		}
	}
}

func walkChildren(n *Node, fn WalkFunc) {
	for _, c := range n.Children {
		fn(c, n, RoleMember)
		walkChildren(c, fn)
	}
}
