// Package schema defines the declarative description of cubes, dimensions,
// hierarchies and members that the reference engine is built from.
//
// Specs are written in YAML or CUE and can be persisted in the SQLite
// catalog. Member order in a spec is the natural (sibling) order.
//
// Example (YAML):
//
//	name: FoodMart
//	cubes:
//	  - name: Sales
//	    dimensions:
//	      - name: Product
//	        hierarchies:
//	          - levels: [Product Family, Product Department]
//	            members:
//	              - name: Drink
//	                children:
//	                  - name: Beverages
package schema

// Spec is a complete schema.
type Spec struct {
	Name  string     `yaml:"name" json:"name"`
	Cubes []CubeSpec `yaml:"cubes" json:"cubes"`
}

// CubeSpec describes one cube.
type CubeSpec struct {
	Name       string          `yaml:"name" json:"name"`
	Dimensions []DimensionSpec `yaml:"dimensions" json:"dimensions"`
}

// DimensionSpec describes one dimension.
type DimensionSpec struct {
	Name        string          `yaml:"name" json:"name"`
	Hierarchies []HierarchySpec `yaml:"hierarchies" json:"hierarchies"`
}

// HierarchySpec describes one hierarchy and its member tree.
type HierarchySpec struct {
	// Name defaults to the dimension name when empty.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Levels names each depth, root level first.
	Levels []string `yaml:"levels" json:"levels"`

	// Default is the name path of the default member from a root, e.g.
	// [USA, CA]. Empty means the first root member.
	Default []string `yaml:"default,omitempty" json:"default,omitempty"`

	Members []MemberSpec `yaml:"members" json:"members"`
}

// MemberSpec describes a member and its children, in natural order.
type MemberSpec struct {
	Name     string       `yaml:"name" json:"name"`
	Children []MemberSpec `yaml:"children,omitempty" json:"children,omitempty"`
}

// HierarchyName returns the hierarchy's effective name.
func (h HierarchySpec) HierarchyName(dimension string) string {
	if h.Name == "" {
		return dimension
	}
	return h.Name
}

// Height returns the depth of the deepest member tree below ms, counting ms
// itself as one level. An empty list has height 0.
func Height(ms []MemberSpec) int {
	height := 0
	for _, m := range ms {
		if h := 1 + Height(m.Children); h > height {
			height = h
		}
	}
	return height
}

// CountMembers returns the number of members in the trees rooted at ms.
func CountMembers(ms []MemberSpec) int {
	n := len(ms)
	for _, m := range ms {
		n += CountMembers(m.Children)
	}
	return n
}
