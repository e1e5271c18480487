package drill

import (
	"fmt"
	"strings"
)

// TreeOp is a hierarchical navigation relative to a focal member.
type TreeOp int

const (
	Ancestors TreeOp = iota
	Parent
	Siblings
	Self
	Children
	Descendants
)

var treeOpNames = [...]string{
	Ancestors:   "ANCESTORS",
	Parent:      "PARENT",
	Siblings:    "SIBLINGS",
	Self:        "SELF",
	Children:    "CHILDREN",
	Descendants: "DESCENDANTS",
}

func (op TreeOp) String() string {
	if op < 0 || int(op) >= len(treeOpNames) {
		return fmt.Sprintf("TreeOp(%d)", int(op))
	}
	return treeOpNames[op]
}

// TreeOpSet is a set of TreeOps. The zero value is empty.
type TreeOpSet uint8

// NewTreeOpSet returns the set holding ops.
func NewTreeOpSet(ops ...TreeOp) TreeOpSet {
	var s TreeOpSet
	for _, op := range ops {
		s |= 1 << uint(op)
	}
	return s
}

// Has reports whether op is in the set.
func (s TreeOpSet) Has(op TreeOp) bool {
	return s&(1<<uint(op)) != 0
}

// IsEmpty reports whether the set holds no ops.
func (s TreeOpSet) IsEmpty() bool {
	return s == 0
}

// Ops returns the members of the set in declaration order.
func (s TreeOpSet) Ops() []TreeOp {
	var ops []TreeOp
	for op := Ancestors; op <= Descendants; op++ {
		if s.Has(op) {
			ops = append(ops, op)
		}
	}
	return ops
}

func (s TreeOpSet) String() string {
	names := make([]string, 0, len(treeOpNames))
	for _, op := range s.Ops() {
		names = append(names, op.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// ParseTreeOps builds a set from names such as "self" or "SIBLINGS".
// Entries may themselves be comma-separated lists.
func ParseTreeOps(names []string) (TreeOpSet, error) {
	var s TreeOpSet
	for _, entry := range names {
		for _, name := range strings.Split(entry, ",") {
			name = strings.ToUpper(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			op, ok := lookupTreeOp(name)
			if !ok {
				return 0, fmt.Errorf("unknown tree op %q", name)
			}
			s |= NewTreeOpSet(op)
		}
	}
	return s, nil
}

func lookupTreeOp(name string) (TreeOp, bool) {
	for i, n := range treeOpNames {
		if n == name {
			return TreeOp(i), true
		}
	}
	return 0, false
}
