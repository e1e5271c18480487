// Package drill expands a focal member into the ordered member list a
// metadata drill request asks for.
//
// Output order for a full request is: ancestors root-first (or the parent
// alone), siblings before the member, the member, its children or its
// descendants in pre-order, then siblings after the member.
package drill

import (
	"fmt"
	"log/slog"

	"github.com/roach88/mdxbridge/internal/native"
	"github.com/roach88/mdxbridge/internal/session"
)

// Expand returns the members selected by ops relative to m, in hierarchy
// order. An empty set or a nil member yields an empty, non-nil slice.
//
// Errors from the schema reader are wrapped. A closed statement fails
// before the reader is touched.
func Expand(h session.Handle, r native.SchemaReader, m *native.Member, ops TreeOpSet) ([]*native.Member, error) {
	if err := h.Err(); err != nil {
		return nil, err
	}
	out := []*native.Member{}
	if m == nil || ops.IsEmpty() {
		return out, nil
	}

	var parent *native.Member
	if ops.Has(Ancestors) || ops.Has(Parent) || ops.Has(Siblings) {
		p, err := r.MemberParent(m)
		if err != nil {
			return nil, fmt.Errorf("parent of %s: %w", m.UniqueName, err)
		}
		parent = p
	}

	if ops.Has(Ancestors) {
		ancestors, err := ancestorsOf(r, m, parent)
		if err != nil {
			return nil, err
		}
		out = append(out, ancestors...)
	} else if ops.Has(Parent) && parent != nil {
		out = append(out, parent)
	}

	var after []*native.Member
	if ops.Has(Siblings) {
		siblings, err := siblingsOf(r, m, parent)
		if err != nil {
			return nil, err
		}
		before, rest := partition(siblings, m)
		out = append(out, before...)
		after = rest
	}

	if ops.Has(Self) {
		out = append(out, m)
	}

	if ops.Has(Descendants) {
		var err error
		if out, err = appendDescendants(r, out, m); err != nil {
			return nil, err
		}
	} else if ops.Has(Children) {
		children, err := r.MemberChildren(m)
		if err != nil {
			return nil, fmt.Errorf("children of %s: %w", m.UniqueName, err)
		}
		out = append(out, children...)
	}

	return append(out, after...), nil
}

// LookupMembers resolves the focal member by name and expands it. A name
// that does not resolve yields an empty, non-nil slice and no error.
func LookupMembers(h session.Handle, r native.SchemaReader, cube *native.Cube, ops TreeOpSet, segments []native.Segment) ([]*native.Member, error) {
	if err := h.Err(); err != nil {
		return nil, err
	}
	m, err := r.LookupMember(cube, segments)
	if err != nil {
		return nil, fmt.Errorf("lookup member: %w", err)
	}
	if m == nil {
		slog.Debug("drill focal member not found", "segments", len(segments))
		return []*native.Member{}, nil
	}
	return Expand(h, r, m, ops)
}

// ancestorsOf returns the ancestors of m root-first. parent is m's parent,
// already fetched.
func ancestorsOf(r native.SchemaReader, m, parent *native.Member) ([]*native.Member, error) {
	var chain []*native.Member
	for p := parent; p != nil; {
		chain = append(chain, p)
		next, err := r.MemberParent(p)
		if err != nil {
			return nil, fmt.Errorf("parent of %s: %w", p.UniqueName, err)
		}
		p = next
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// siblingsOf returns the sibling list m belongs to, m included: the
// parent's children, or the hierarchy roots for a root member.
func siblingsOf(r native.SchemaReader, m, parent *native.Member) ([]*native.Member, error) {
	if parent != nil {
		children, err := r.MemberChildren(parent)
		if err != nil {
			return nil, fmt.Errorf("children of %s: %w", parent.UniqueName, err)
		}
		return children, nil
	}
	h := m.Hierarchy()
	if h == nil {
		return nil, nil
	}
	roots, err := r.HierarchyRootMembers(h)
	if err != nil {
		return nil, fmt.Errorf("root members of %s: %w", h.UniqueName, err)
	}
	return roots, nil
}

// partition splits siblings around m. When m is not in the list both
// groups are empty.
func partition(siblings []*native.Member, m *native.Member) (before, after []*native.Member) {
	for i, s := range siblings {
		if s == m || s.UniqueName == m.UniqueName {
			return siblings[:i:i], siblings[i+1:]
		}
	}
	return nil, nil
}

func appendDescendants(r native.SchemaReader, out []*native.Member, m *native.Member) ([]*native.Member, error) {
	children, err := r.MemberChildren(m)
	if err != nil {
		return nil, fmt.Errorf("children of %s: %w", m.UniqueName, err)
	}
	for _, c := range children {
		out = append(out, c)
		if out, err = appendDescendants(r, out, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}
