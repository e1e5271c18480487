// Package portable is the engine-agnostic, client-facing query tree.
//
// It mirrors the engine's parsed tree node for node: a converted tree has the
// same node count, branching and argument order as its source. Nothing is
// simplified or folded on the way in.
//
// Node kinds:
//   - SelectNode, AxisNode, WithMemberNode, WithSetNode, PropertyValueNode:
//     statement structure
//   - CallNode: function, operator and property calls, tagged with a Syntax
//   - IdentifierNode: ordered (name, quoting) segments
//   - CubeNode, DimensionNode, HierarchyNode, LevelNode, MemberNode: plain-value
//     handles on schema objects
//   - LiteralNode: null, string, symbol, or exact-decimal numeric constants
//
// Node and Type are sealed interfaces. Schema handles are plain values with
// no reference back to a session or connection.
//
// Two encodings are provided: MarshalCanonical produces deterministic JSON
// for golden files and tooling, and Unparse writes MDX text.
package portable
