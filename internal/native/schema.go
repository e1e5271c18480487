package native

import "strings"

// Cube is a multidimensional data set.
type Cube struct {
	Name       string
	Dimensions []*Dimension
}

// UniqueName returns the bracketed cube name.
func (c *Cube) UniqueName() string {
	return QuoteName(c.Name)
}

// Dimension is a named axis of analysis, made of one or more hierarchies.
type Dimension struct {
	Name        string
	UniqueName  string
	Hierarchies []*Hierarchy
}

// Hierarchy is a tree of members organised in levels.
type Hierarchy struct {
	Name       string
	UniqueName string
	Dimension  *Dimension
	Levels     []*Level
}

// Level is one depth of a hierarchy.
type Level struct {
	Name       string
	UniqueName string
	Depth      int
	Hierarchy  *Hierarchy
}

// Dimension returns the dimension owning the level's hierarchy, or nil.
func (l *Level) Dimension() *Dimension {
	if l == nil || l.Hierarchy == nil {
		return nil
	}
	return l.Hierarchy.Dimension
}

// Member is a node of a hierarchy. Parent and children are resolved through
// a SchemaReader, not stored on the member.
type Member struct {
	Name       string
	UniqueName string
	Level      *Level

	// Ordinal is the position of the member among its siblings.
	Ordinal int
}

// Depth returns the depth of the member's level (roots are at depth 0).
func (m *Member) Depth() int {
	if m.Level == nil {
		return 0
	}
	return m.Level.Depth
}

// Hierarchy returns the member's hierarchy, or nil.
func (m *Member) Hierarchy() *Hierarchy {
	if m.Level == nil {
		return nil
	}
	return m.Level.Hierarchy
}

// Dimension returns the member's dimension, or nil.
func (m *Member) Dimension() *Dimension {
	return m.Level.Dimension()
}

func (m *Member) String() string {
	return m.UniqueName
}

// QuoteName brackets a name, doubling any closing bracket.
func QuoteName(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// SchemaReader is the engine's navigation callback surface.
//
// Implementations are read-only for the duration of a statement. A lookup
// that finds nothing returns (nil, nil); errors are reserved for engine
// failures.
type SchemaReader interface {
	// MemberParent returns m's parent, or nil for a root member.
	MemberParent(m *Member) (*Member, error)

	// MemberChildren returns m's children in natural order.
	MemberChildren(m *Member) ([]*Member, error)

	// HierarchyRootMembers returns the root members of h in natural order.
	HierarchyRootMembers(h *Hierarchy) ([]*Member, error)

	// HierarchyDefaultMember returns the member used when h is not constrained.
	HierarchyDefaultMember(h *Hierarchy) (*Member, error)

	// LookupMember resolves a member by name segments within a cube.
	LookupMember(c *Cube, segments []Segment) (*Member, error)
}
