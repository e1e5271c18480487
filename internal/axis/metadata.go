package axis

import (
	"github.com/roach88/mdxbridge/internal/convert"
	"github.com/roach88/mdxbridge/internal/fault"
	"github.com/roach88/mdxbridge/internal/native"
	"github.com/roach88/mdxbridge/internal/portable"
)

// Metadata is the shape of an axis: which hierarchies each position spans
// and which dimension properties were requested. It is derived once per
// axis and shared by every position lookup.
type Metadata struct {
	Axis portable.Axis

	// Hierarchies are in declaration order, one per position member.
	Hierarchies []portable.Hierarchy

	Properties []*portable.IdentifierNode

	hierarchies []*native.Hierarchy
}

func deriveMetadata(conv *convert.Converter, ordinal native.AxisOrdinal, qa *native.QueryAxis, hierarchies []*native.Hierarchy) (*Metadata, error) {
	axis, err := convert.AxisOf(ordinal)
	if err != nil {
		return nil, err
	}
	meta := &Metadata{Axis: axis, hierarchies: hierarchies}
	for _, h := range hierarchies {
		meta.Hierarchies = append(meta.Hierarchies, conv.Wrapper().Hierarchy(h))
	}
	if qa != nil {
		for _, p := range qa.Properties {
			id, err := conv.Identifier(p)
			if err != nil {
				return nil, err
			}
			meta.Properties = append(meta.Properties, id)
		}
	}
	return meta, nil
}

// hierarchiesOf lists the hierarchies an axis type spans. It accepts a
// member, level or hierarchy type, a tuple of those, or a set of either.
func hierarchiesOf(t native.Type) ([]*native.Hierarchy, bool) {
	switch x := t.(type) {
	case *native.SetType:
		if _, nested := x.Element.(*native.SetType); nested {
			return nil, false
		}
		return hierarchiesOf(x.Element)
	case *native.TupleType:
		if len(x.Elements) == 0 {
			return nil, false
		}
		var out []*native.Hierarchy
		for _, e := range x.Elements {
			h := hierarchyOf(e)
			if h == nil {
				return nil, false
			}
			out = append(out, h)
		}
		return out, true
	}
	if h := hierarchyOf(t); h != nil {
		return []*native.Hierarchy{h}, true
	}
	return nil, false
}

func hierarchyOf(t native.Type) *native.Hierarchy {
	switch x := t.(type) {
	case *native.MemberType:
		if x.Hierarchy != nil {
			return x.Hierarchy
		}
		if x.Member != nil {
			return x.Member.Hierarchy()
		}
	case *native.LevelType:
		if x.Hierarchy != nil {
			return x.Hierarchy
		}
		if x.Level != nil {
			return x.Level.Hierarchy
		}
	case *native.HierarchyType:
		return x.Hierarchy
	}
	return nil
}

// filterHierarchies derives the filter axis hierarchies. An absent WHERE
// clause declares none; any other shape than hierarchy-typed expressions is
// a defect.
func filterHierarchies(qa *native.QueryAxis) ([]*native.Hierarchy, error) {
	if qa == nil || qa.Set == nil {
		return nil, nil
	}
	t := qa.Type()
	hs, ok := hierarchiesOf(t)
	if !ok {
		return nil, fault.Defect(fault.ErrCodeMalformedAxisType,
			"filter axis type %T does not declare hierarchies", t)
	}
	return hs, nil
}

// axisHierarchies derives an ordinary axis's hierarchies from its type,
// falling back to the members of the first evaluated position when the
// type is absent or not hierarchy-shaped.
func axisHierarchies(qa *native.QueryAxis, ev *native.Axis) []*native.Hierarchy {
	if hs, ok := hierarchiesOf(qa.Type()); ok {
		return hs
	}
	if ev == nil || len(ev.Positions) == 0 {
		return nil
	}
	var out []*native.Hierarchy
	for _, m := range ev.Positions[0] {
		out = append(out, m.Hierarchy())
	}
	return out
}
