package convert

import (
	"github.com/roach88/mdxbridge/internal/native"
	"github.com/roach88/mdxbridge/internal/portable"
)

// Wrapper translates engine schema objects into portable handles.
// Implementations must be pure: the same object always yields an equal handle.
type Wrapper interface {
	Cube(c *native.Cube) portable.Cube
	Dimension(d *native.Dimension) portable.Dimension
	Hierarchy(h *native.Hierarchy) portable.Hierarchy
	Level(l *native.Level) portable.Level
	Member(m *native.Member) portable.Member
}

// NameWrapper copies names and unique names into portable handles.
type NameWrapper struct{}

var _ Wrapper = NameWrapper{}

func (NameWrapper) Cube(c *native.Cube) portable.Cube {
	if c == nil {
		return portable.Cube{}
	}
	return portable.Cube{Name: c.Name, UniqueName: c.UniqueName()}
}

func (NameWrapper) Dimension(d *native.Dimension) portable.Dimension {
	if d == nil {
		return portable.Dimension{}
	}
	return portable.Dimension{Name: d.Name, UniqueName: d.UniqueName}
}

func (NameWrapper) Hierarchy(h *native.Hierarchy) portable.Hierarchy {
	if h == nil {
		return portable.Hierarchy{}
	}
	out := portable.Hierarchy{Name: h.Name, UniqueName: h.UniqueName}
	if h.Dimension != nil {
		out.Dimension = h.Dimension.UniqueName
	}
	return out
}

func (NameWrapper) Level(l *native.Level) portable.Level {
	if l == nil {
		return portable.Level{}
	}
	out := portable.Level{Name: l.Name, UniqueName: l.UniqueName, Depth: l.Depth}
	if l.Hierarchy != nil {
		out.Hierarchy = l.Hierarchy.UniqueName
	}
	return out
}

func (NameWrapper) Member(m *native.Member) portable.Member {
	if m == nil {
		return portable.Member{}
	}
	out := portable.Member{Name: m.Name, UniqueName: m.UniqueName, Depth: m.Depth()}
	if m.Level != nil {
		out.Level = m.Level.UniqueName
	}
	if h := m.Hierarchy(); h != nil {
		out.Hierarchy = h.UniqueName
	}
	if d := m.Dimension(); d != nil {
		out.Dimension = d.UniqueName
	}
	return out
}
