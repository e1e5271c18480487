package portable

// Cube is a client-facing handle on a cube.
type Cube struct {
	Name       string
	UniqueName string
}

// Dimension is a client-facing handle on a dimension.
type Dimension struct {
	Name       string
	UniqueName string
}

// Hierarchy is a client-facing handle on a hierarchy.
type Hierarchy struct {
	Name       string
	UniqueName string

	// Dimension is the unique name of the owning dimension.
	Dimension string
}

// Level is a client-facing handle on a level.
type Level struct {
	Name       string
	UniqueName string
	Depth      int

	// Hierarchy is the unique name of the owning hierarchy.
	Hierarchy string
}

// Member is a client-facing handle on a member.
type Member struct {
	Name       string
	UniqueName string
	Depth      int

	// Level, Hierarchy and Dimension are unique names of the owners.
	Level     string
	Hierarchy string
	Dimension string
}
