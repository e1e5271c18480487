// Package axis exposes evaluated query axes as random-access position
// sequences of portable members.
//
// Positions are translated on access. Only the axis metadata is computed up
// front. Every call takes the owning statement's handle and fails once the
// statement is closed.
//
// The filter (slicer) axis always has exactly one position holding one
// member per hierarchy its type declares. Hierarchies the evaluated tuple
// leaves out get their default member.
package axis

import (
	"fmt"
	"log/slog"

	"github.com/roach88/mdxbridge/internal/convert"
	"github.com/roach88/mdxbridge/internal/fault"
	"github.com/roach88/mdxbridge/internal/native"
	"github.com/roach88/mdxbridge/internal/portable"
	"github.com/roach88/mdxbridge/internal/session"
)

// Position is one coordinate of an axis.
type Position struct {
	Ordinal int
	Members []portable.Member
}

// Axis is a materialized axis.
type Axis struct {
	meta *Metadata
	wrap convert.Wrapper

	// positions is the evaluated axis for ordinary axes.
	positions []native.Position

	// filter marks the slicer axis: one position resolved through reader.
	filter bool
	tuple  native.Position
	reader native.SchemaReader
}

// Materialize builds the view of an ordinary axis. qa is the query axis
// the positions were evaluated from; ev may be nil for an axis with no
// positions.
func Materialize(h session.Handle, conv *convert.Converter, qa *native.QueryAxis, ev *native.Axis) (*Axis, error) {
	if err := h.Err(); err != nil {
		return nil, err
	}
	if qa == nil {
		return nil, fmt.Errorf("materialize axis: nil query axis")
	}
	meta, err := deriveMetadata(conv, qa.Ordinal, qa, axisHierarchies(qa, ev))
	if err != nil {
		return nil, err
	}
	a := &Axis{meta: meta, wrap: conv.Wrapper()}
	if ev != nil {
		a.positions = ev.Positions
	}
	return a, nil
}

// MaterializeFilter builds the view of the filter axis. qa is the query's
// slicer (nil when the query has no WHERE clause) and ev the evaluated
// tuple as an axis of zero or one position.
func MaterializeFilter(h session.Handle, conv *convert.Converter, r native.SchemaReader, qa *native.QueryAxis, ev *native.Axis) (*Axis, error) {
	if err := h.Err(); err != nil {
		return nil, err
	}
	hierarchies, err := filterHierarchies(qa)
	if err != nil {
		return nil, err
	}
	meta, err := deriveMetadata(conv, native.AxisSlicer, qa, hierarchies)
	if err != nil {
		return nil, err
	}
	a := &Axis{meta: meta, wrap: conv.Wrapper(), filter: true, reader: r}
	if ev != nil && len(ev.Positions) > 0 {
		a.tuple = ev.Positions[0]
	}
	return a, nil
}

// Metadata returns the axis shape.
func (a *Axis) Metadata() *Metadata {
	return a.meta
}

// PositionCount returns the number of positions. It is always 1 for the
// filter axis.
func (a *Axis) PositionCount(h session.Handle) (int, error) {
	if err := h.Err(); err != nil {
		return 0, err
	}
	return a.count(), nil
}

func (a *Axis) count() int {
	if a.filter {
		return 1
	}
	return len(a.positions)
}

// Position returns position i, translating its members.
func (a *Axis) Position(h session.Handle, i int) (*Position, error) {
	if err := h.Err(); err != nil {
		return nil, err
	}
	if n := a.count(); i < 0 || i >= n {
		return nil, fault.OutOfBounds(i, n)
	}

	var members []*native.Member
	if a.filter {
		var err error
		if members, err = a.filterMembers(); err != nil {
			return nil, err
		}
	} else {
		members = a.positions[i]
	}

	pos := &Position{Ordinal: i, Members: make([]portable.Member, len(members))}
	for j, m := range members {
		pos.Members[j] = a.wrap.Member(m)
	}
	return pos, nil
}

// Positions returns every position in order.
func (a *Axis) Positions(h session.Handle) ([]*Position, error) {
	n, err := a.PositionCount(h)
	if err != nil {
		return nil, err
	}
	out := make([]*Position, 0, n)
	for i := 0; i < n; i++ {
		p, err := a.Position(h, i)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// filterMembers resolves one member per declared hierarchy, matching the
// evaluated tuple by hierarchy identity.
func (a *Axis) filterMembers() ([]*native.Member, error) {
	out := make([]*native.Member, len(a.meta.hierarchies))
	for i, h := range a.meta.hierarchies {
		if m := memberOf(a.tuple, h); m != nil {
			out[i] = m
			continue
		}
		m, err := a.reader.HierarchyDefaultMember(h)
		if err != nil {
			return nil, fmt.Errorf("default member of %s: %w", h.UniqueName, err)
		}
		if m == nil {
			return nil, fmt.Errorf("hierarchy %s has no default member", h.UniqueName)
		}
		slog.Debug("filter axis default member", "hierarchy", h.UniqueName, "member", m.UniqueName)
		out[i] = m
	}
	return out, nil
}

func memberOf(tuple native.Position, h *native.Hierarchy) *native.Member {
	for _, m := range tuple {
		mh := m.Hierarchy()
		if mh == h || (mh != nil && mh.UniqueName == h.UniqueName) {
			return m
		}
	}
	return nil
}
