package diagram

import "fmt"

// Resolver finds a child's parent among a snapshot of visible nodes.
type Resolver interface {
	// Parent returns the parent of child, or false when child is a root or
	// no visible node matches its reference.
	Parent(child Node, nodes []Node) (Node, bool)
}

// Resolve modes accepted by [ParseResolveMode].
const (
	ModeID        = "id"
	ModeShortName = "short-name"
)

// ResolveByID matches ParentID against node IDs exactly.
type ResolveByID struct{}

func (ResolveByID) Parent(child Node, nodes []Node) (Node, bool) {
	if child.IsRoot() {
		return Node{}, false
	}
	for _, n := range nodes {
		if n.ID == child.ParentID && n.ID != child.ID {
			return n, true
		}
	}
	return Node{}, false
}

// ResolveByShortName matches the short name of ParentID against the short
// names of visible nodes. The first match in insertion order wins, so two
// classes that share a short name cannot be told apart.
type ResolveByShortName struct{}

func (ResolveByShortName) Parent(child Node, nodes []Node) (Node, bool) {
	if child.IsRoot() {
		return Node{}, false
	}
	want := ShortName(child.ParentID)
	for _, n := range nodes {
		if n.ID != child.ID && n.ShortName() == want {
			return n, true
		}
	}
	return Node{}, false
}

// ParseResolveMode returns the resolver for a configuration value.
// An empty mode selects [ResolveByID].
func ParseResolveMode(mode string) (Resolver, error) {
	switch mode {
	case "", ModeID:
		return ResolveByID{}, nil
	case ModeShortName:
		return ResolveByShortName{}, nil
	default:
		return nil, fmt.Errorf("unknown resolve mode %q (must be %q or %q)", mode, ModeID, ModeShortName)
	}
}
