// Package memengine is an in-memory engine built from a schema spec.
//
// It owns the native schema objects (cubes, dimensions, hierarchies, levels
// and members) and answers the navigation callbacks of native.SchemaReader.
// An Engine is immutable after New and safe for concurrent readers.
//
// Unique names follow the usual MDX form:
//
//	dimension  [Product]
//	hierarchy  [Product]            (named like its dimension)
//	           [Time].[Weekly]      (otherwise)
//	level      [Product].[Product Family]
//	member     [Product].[Drink].[Beverages]
//
// Member lookup compares names after NFC normalization.
package memengine

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/mdxbridge/internal/native"
	"github.com/roach88/mdxbridge/internal/schema"
)

// Engine is the in-memory reference engine.
type Engine struct {
	name    string
	cubes   []*native.Cube
	indexes map[*native.Cube]*cubeIndex

	// links holds parent and children for every member of every cube.
	links map[*native.Member]*memberLinks

	roots    map[*native.Hierarchy][]*native.Member
	defaults map[*native.Hierarchy]*native.Member
}

var _ native.SchemaReader = (*Engine)(nil)

type memberLinks struct {
	parent   *native.Member
	children []*native.Member
}

// cubeIndex resolves unique names within one cube. Keys are NFC-normalized.
type cubeIndex struct {
	dimensions  map[string]*native.Dimension
	hierarchies map[string]*native.Hierarchy
	levels      map[string]*native.Level
	members     map[string]*native.Member
}

// New validates spec and builds its schema objects.
func New(spec *schema.Spec) (*Engine, error) {
	if err := schema.Validate(spec); err != nil {
		return nil, err
	}

	e := &Engine{
		name:     spec.Name,
		indexes:  make(map[*native.Cube]*cubeIndex),
		links:    make(map[*native.Member]*memberLinks),
		roots:    make(map[*native.Hierarchy][]*native.Member),
		defaults: make(map[*native.Hierarchy]*native.Member),
	}

	for _, cs := range spec.Cubes {
		cube := &native.Cube{Name: cs.Name}
		idx := &cubeIndex{
			dimensions:  make(map[string]*native.Dimension),
			hierarchies: make(map[string]*native.Hierarchy),
			levels:      make(map[string]*native.Level),
			members:     make(map[string]*native.Member),
		}
		for _, ds := range cs.Dimensions {
			cube.Dimensions = append(cube.Dimensions, e.buildDimension(idx, ds))
		}
		e.cubes = append(e.cubes, cube)
		e.indexes[cube] = idx
	}

	slog.Debug("engine built", "schema", spec.Name, "cubes", len(e.cubes), "members", len(e.links))
	return e, nil
}

func (e *Engine) buildDimension(idx *cubeIndex, ds schema.DimensionSpec) *native.Dimension {
	dim := &native.Dimension{Name: ds.Name, UniqueName: native.QuoteName(ds.Name)}
	idx.dimensions[key(dim.UniqueName)] = dim

	for _, hs := range ds.Hierarchies {
		name := hs.HierarchyName(ds.Name)
		h := &native.Hierarchy{Name: name, UniqueName: dim.UniqueName, Dimension: dim}
		if name != ds.Name {
			h.UniqueName = dim.UniqueName + "." + native.QuoteName(name)
		}
		idx.hierarchies[key(h.UniqueName)] = h

		for depth, ln := range hs.Levels {
			l := &native.Level{
				Name:       ln,
				UniqueName: h.UniqueName + "." + native.QuoteName(ln),
				Depth:      depth,
				Hierarchy:  h,
			}
			h.Levels = append(h.Levels, l)
			idx.levels[key(l.UniqueName)] = l
		}

		e.roots[h] = e.buildMembers(idx, h, nil, h.UniqueName, hs.Members, 0)
		e.defaults[h] = e.resolveDefault(h, hs.Default)
		dim.Hierarchies = append(dim.Hierarchies, h)
	}
	return dim
}

func (e *Engine) buildMembers(idx *cubeIndex, h *native.Hierarchy, parent *native.Member, prefix string, specs []schema.MemberSpec, depth int) []*native.Member {
	members := make([]*native.Member, 0, len(specs))
	for ordinal, ms := range specs {
		m := &native.Member{
			Name:       ms.Name,
			UniqueName: prefix + "." + native.QuoteName(ms.Name),
			Level:      h.Levels[depth],
			Ordinal:    ordinal,
		}
		idx.members[key(m.UniqueName)] = m
		links := &memberLinks{parent: parent}
		e.links[m] = links
		links.children = e.buildMembers(idx, h, m, m.UniqueName, ms.Children, depth+1)
		members = append(members, m)
	}
	return members
}

func (e *Engine) resolveDefault(h *native.Hierarchy, path []string) *native.Member {
	level := e.roots[h]
	if len(path) == 0 {
		return level[0]
	}
	var found *native.Member
	for _, name := range path {
		found = nil
		for _, m := range level {
			if m.Name == name {
				found = m
				break
			}
		}
		// Validate guarantees the path resolves.
		level = e.links[found].children
	}
	return found
}

// Name returns the schema name.
func (e *Engine) Name() string {
	return e.name
}

// Cubes returns the cubes in declaration order.
func (e *Engine) Cubes() []*native.Cube {
	return e.cubes
}

// Cube returns the cube with the given name.
func (e *Engine) Cube(name string) (*native.Cube, bool) {
	for _, c := range e.cubes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Dimension resolves a dimension by unique name within c.
func (e *Engine) Dimension(c *native.Cube, uniqueName string) (*native.Dimension, bool) {
	idx, ok := e.indexes[c]
	if !ok {
		return nil, false
	}
	d, ok := idx.dimensions[key(uniqueName)]
	return d, ok
}

// Hierarchy resolves a hierarchy by unique name within c.
func (e *Engine) Hierarchy(c *native.Cube, uniqueName string) (*native.Hierarchy, bool) {
	idx, ok := e.indexes[c]
	if !ok {
		return nil, false
	}
	h, ok := idx.hierarchies[key(uniqueName)]
	return h, ok
}

// Level resolves a level by unique name within c.
func (e *Engine) Level(c *native.Cube, uniqueName string) (*native.Level, bool) {
	idx, ok := e.indexes[c]
	if !ok {
		return nil, false
	}
	l, ok := idx.levels[key(uniqueName)]
	return l, ok
}

// Member resolves a member by unique name within c.
func (e *Engine) Member(c *native.Cube, uniqueName string) (*native.Member, bool) {
	idx, ok := e.indexes[c]
	if !ok {
		return nil, false
	}
	m, ok := idx.members[key(uniqueName)]
	return m, ok
}

// MemberParent implements native.SchemaReader.
func (e *Engine) MemberParent(m *native.Member) (*native.Member, error) {
	links, err := e.linksOf(m)
	if err != nil {
		return nil, err
	}
	return links.parent, nil
}

// MemberChildren implements native.SchemaReader.
func (e *Engine) MemberChildren(m *native.Member) ([]*native.Member, error) {
	links, err := e.linksOf(m)
	if err != nil {
		return nil, err
	}
	return links.children, nil
}

// HierarchyRootMembers implements native.SchemaReader.
func (e *Engine) HierarchyRootMembers(h *native.Hierarchy) ([]*native.Member, error) {
	roots, ok := e.roots[h]
	if !ok {
		return nil, e.foreign("hierarchy", h)
	}
	return roots, nil
}

// HierarchyDefaultMember implements native.SchemaReader.
func (e *Engine) HierarchyDefaultMember(h *native.Hierarchy) (*native.Member, error) {
	m, ok := e.defaults[h]
	if !ok {
		return nil, e.foreign("hierarchy", h)
	}
	return m, nil
}

// LookupMember implements native.SchemaReader. Segments must spell the
// member's full unique name; quoting is ignored.
func (e *Engine) LookupMember(c *native.Cube, segments []native.Segment) (*native.Member, error) {
	idx, ok := e.indexes[c]
	if !ok {
		return nil, e.foreign("cube", c)
	}
	names := make([]string, len(segments))
	for i, seg := range segments {
		names[i] = native.QuoteName(seg.Name)
	}
	name := strings.Join(names, ".")
	if m, ok := idx.members[key(name)]; ok {
		return m, nil
	}
	slog.Debug("member lookup miss", "cube", c.Name, "member", name)
	return nil, nil
}

func (e *Engine) linksOf(m *native.Member) (*memberLinks, error) {
	links, ok := e.links[m]
	if !ok {
		return nil, e.foreign("member", m)
	}
	return links, nil
}

func (e *Engine) foreign(kind string, obj any) error {
	name := "<nil>"
	switch x := obj.(type) {
	case *native.Cube:
		if x != nil {
			name = x.UniqueName()
		}
	case *native.Hierarchy:
		if x != nil {
			name = x.UniqueName
		}
	case *native.Member:
		if x != nil {
			name = x.UniqueName
		}
	}
	return fmt.Errorf("%s %s is not part of schema %q", kind, name, e.name)
}

func key(uniqueName string) string {
	return norm.NFC.String(uniqueName)
}
