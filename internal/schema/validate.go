package schema

import (
	"fmt"
	"strings"
)

// ValidationError lists every problem found in a spec.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid schema: %s", strings.Join(e.Problems, "; "))
}

// Validate checks structural rules:
//  1. Schema, cube, dimension and member names are non-empty
//  2. Names are unique among siblings (cubes, dimensions, hierarchies, members)
//  3. Every hierarchy has at least one level and one member
//  4. No member tree is deeper than the hierarchy's levels
//  5. A default member path, when given, resolves
//
// Validate is a pure function. It returns nil or a *ValidationError.
func Validate(spec *Spec) error {
	v := &validator{}
	v.validateSpec(spec)
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateSpec(spec *Spec) {
	if spec == nil {
		v.addProblem("nil schema")
		return
	}
	if spec.Name == "" {
		v.addProblem("schema name is required")
	}
	if len(spec.Cubes) == 0 {
		v.addProblem("schema %q has no cubes", spec.Name)
	}
	seen := map[string]bool{}
	for _, c := range spec.Cubes {
		if seen[c.Name] {
			v.addProblem("duplicate cube %q", c.Name)
		}
		seen[c.Name] = true
		v.validateCube(c)
	}
}

func (v *validator) validateCube(c CubeSpec) {
	if c.Name == "" {
		v.addProblem("cube name is required")
	}
	seen := map[string]bool{}
	for _, d := range c.Dimensions {
		if d.Name == "" {
			v.addProblem("cube %q: dimension name is required", c.Name)
			continue
		}
		if seen[d.Name] {
			v.addProblem("cube %q: duplicate dimension %q", c.Name, d.Name)
		}
		seen[d.Name] = true
		v.validateDimension(c.Name, d)
	}
}

func (v *validator) validateDimension(cube string, d DimensionSpec) {
	if len(d.Hierarchies) == 0 {
		v.addProblem("dimension %q has no hierarchies", d.Name)
	}
	seen := map[string]bool{}
	for _, h := range d.Hierarchies {
		name := h.HierarchyName(d.Name)
		if seen[name] {
			v.addProblem("dimension %q: duplicate hierarchy %q", d.Name, name)
		}
		seen[name] = true

		where := fmt.Sprintf("cube %q hierarchy %q", cube, name)
		if len(h.Levels) == 0 {
			v.addProblem("%s: at least one level is required", where)
		}
		if len(h.Members) == 0 {
			v.addProblem("%s: at least one member is required", where)
		}
		if height := Height(h.Members); height > len(h.Levels) {
			v.addProblem("%s: member tree is %d deep but only %d levels are declared",
				where, height, len(h.Levels))
		}
		v.validateMembers(where, h.Members)
		if len(h.Default) > 0 && !resolves(h.Members, h.Default) {
			v.addProblem("%s: default member %v not found", where, h.Default)
		}
	}
}

func (v *validator) validateMembers(where string, ms []MemberSpec) {
	seen := map[string]bool{}
	for _, m := range ms {
		if m.Name == "" {
			v.addProblem("%s: member name is required", where)
			continue
		}
		if seen[m.Name] {
			v.addProblem("%s: duplicate sibling member %q", where, m.Name)
		}
		seen[m.Name] = true
		v.validateMembers(where, m.Children)
	}
}

func resolves(ms []MemberSpec, path []string) bool {
	for _, m := range ms {
		if m.Name != path[0] {
			continue
		}
		if len(path) == 1 {
			return true
		}
		return resolves(m.Children, path[1:])
	}
	return false
}
