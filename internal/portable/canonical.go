package portable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical encodes a portable tree as deterministic JSON.
//
// Output rules:
//  1. Object keys sorted by UTF-16 code units (RFC 8785 ordering)
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Numeric literals are exact decimal strings, never JSON numbers
//
// Identical trees always produce identical bytes, which makes the encoding
// suitable for golden files.
func MarshalCanonical(n Node) ([]byte, error) {
	v, err := nodeValue(n)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nodeValue(n Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	switch x := n.(type) {
	case *SelectNode:
		with, err := nodeList(x.With)
		if err != nil {
			return nil, fmt.Errorf("with: %w", err)
		}
		axes := make([]any, len(x.Axes))
		for i, a := range x.Axes {
			if axes[i], err = nodeValue(a); err != nil {
				return nil, fmt.Errorf("axes[%d]: %w", i, err)
			}
		}
		from, err := nodeValue(x.From)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		m := map[string]any{
			"kind":            "select",
			"with":            with,
			"axes":            axes,
			"from":            from,
			"cell_properties": identifierList(x.CellProperties),
		}
		if x.Filter != nil {
			if m["filter"], err = nodeValue(x.Filter); err != nil {
				return nil, fmt.Errorf("filter: %w", err)
			}
		}
		return m, nil
	case *AxisNode:
		expr, err := nodeValue(x.Expression)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"kind":       "axis",
			"axis":       x.Axis.String(),
			"non_empty":  x.NonEmpty,
			"expression": expr,
			"properties": identifierList(x.DimensionProperties),
		}, nil
	case *WithMemberNode:
		expr, err := nodeValue(x.Expression)
		if err != nil {
			return nil, err
		}
		props := make([]any, len(x.MemberProperties))
		for i, p := range x.MemberProperties {
			if props[i], err = nodeValue(p); err != nil {
				return nil, fmt.Errorf("property %q: %w", p.Name, err)
			}
		}
		return map[string]any{
			"kind":       "with_member",
			"identifier": identifierValue(x.Identifier),
			"expression": expr,
			"properties": props,
		}, nil
	case *WithSetNode:
		expr, err := nodeValue(x.Expression)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"kind":       "with_set",
			"identifier": identifierValue(x.Identifier),
			"expression": expr,
		}, nil
	case *PropertyValueNode:
		expr, err := nodeValue(x.Expression)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"kind":       "property_value",
			"name":       x.Name,
			"expression": expr,
		}, nil
	case *CallNode:
		args, err := nodeList(x.Args)
		if err != nil {
			return nil, fmt.Errorf("call %q: %w", x.Name, err)
		}
		m := map[string]any{
			"kind":   "call",
			"name":   x.Name,
			"syntax": x.Syntax.String(),
			"args":   args,
		}
		if x.Type != nil {
			m["type"] = typeValue(x.Type)
		}
		return m, nil
	case *IdentifierNode:
		return identifierValue(x), nil
	case *CubeNode:
		return map[string]any{"kind": "cube", "unique_name": x.Cube.UniqueName}, nil
	case *DimensionNode:
		return map[string]any{"kind": "dimension", "unique_name": x.Dimension.UniqueName}, nil
	case *HierarchyNode:
		return map[string]any{"kind": "hierarchy", "unique_name": x.Hierarchy.UniqueName}, nil
	case *LevelNode:
		return map[string]any{"kind": "level", "unique_name": x.Level.UniqueName}, nil
	case *MemberNode:
		return map[string]any{"kind": "member", "unique_name": x.Member.UniqueName}, nil
	case *LiteralNode:
		m := map[string]any{"kind": "literal", "literal": x.Kind.String()}
		switch x.Kind {
		case LiteralNull:
			m["value"] = nil
		case LiteralNumeric:
			if x.Number == nil {
				return nil, fmt.Errorf("numeric literal without value")
			}
			m["value"] = x.Number.String()
		default:
			m["value"] = x.Text
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported node type: %T", n)
	}
}

func nodeList(nodes []Node) ([]any, error) {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		v, err := nodeValue(n)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func identifierValue(id *IdentifierNode) any {
	if id == nil {
		return nil
	}
	segs := make([]any, len(id.Segments))
	for i, s := range id.Segments {
		segs[i] = map[string]any{"name": s.Name, "quoting": s.Quoting.String()}
	}
	return map[string]any{"kind": "identifier", "segments": segs}
}

func identifierList(ids []*IdentifierNode) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = identifierValue(id)
	}
	return out
}

func typeValue(t Type) any {
	m := map[string]any{"type": TypeName(t)}
	switch x := t.(type) {
	case DecimalType:
		m["precision"] = x.Precision
		m["scale"] = x.Scale
	case *DimensionType:
		if x.Dimension != nil {
			m["dimension"] = x.Dimension.UniqueName
		}
	case *MemberType:
		if x.Dimension != nil {
			m["dimension"] = x.Dimension.UniqueName
		}
		if x.Hierarchy != nil {
			m["hierarchy"] = x.Hierarchy.UniqueName
		}
		if x.Level != nil {
			m["level"] = x.Level.UniqueName
		}
		if x.Member != nil {
			m["member"] = x.Member.UniqueName
		}
	case *SetType:
		if x.Element != nil {
			m["element"] = typeValue(x.Element)
		}
	case *TupleType:
		elems := make([]any, len(x.Elements))
		for i, e := range x.Elements {
			elems[i] = typeValue(e)
		}
		m["elements"] = elems
	}
	return m
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case string:
		return writeCanonicalString(buf, val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareUTF16)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// writeCanonicalString writes an NFC-normalized JSON string without HTML
// escaping. U+2028 and U+2029 are written literally.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	out = unescapeLineSeparators(out)
	buf.Write(out)
	return nil
}

// unescapeLineSeparators turns the encoder's \u2028 and \u2029 escapes back
// into literal characters, leaving an escaped backslash followed by "u2028"
// untouched.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+1 < len(data) {
			if data[i+1] == 'u' && i+5 < len(data) &&
				string(data[i+2:i+5]) == "202" && (data[i+5] == '8' || data[i+5] == '9') {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
			// Any other escape: copy both bytes so an escaped backslash is
			// never mistaken for the start of a sequence.
			out = append(out, data[i], data[i+1])
			i++
			continue
		}
		out = append(out, data[i])
	}
	return out
}

// compareUTF16 orders strings by UTF-16 code units, as RFC 8785 requires.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
