package native

import (
	"fmt"
	"strings"
)

// ParseIdentifier parses a compound name such as [Store].USA.&[1997].
//
// Bracketed segments may contain "]]" for a literal closing bracket.
// Unquoted segments end at the next dot.
func ParseIdentifier(s string) (*Identifier, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty identifier")
	}

	var segs []Segment
	i := 0
	for {
		q := Unquoted
		if strings.HasPrefix(s[i:], "&[") {
			q = Key
			i++
		} else if i < len(s) && s[i] == '[' {
			q = Quoted
		}

		var name string
		if q == Unquoted {
			end := strings.IndexByte(s[i:], '.')
			if end < 0 {
				end = len(s) - i
			}
			name = strings.TrimSpace(s[i : i+end])
			if name == "" {
				return nil, fmt.Errorf("identifier %q: empty segment at offset %d", s, i)
			}
			i += end
		} else {
			var err error
			name, i, err = scanBracketed(s, i)
			if err != nil {
				return nil, err
			}
		}
		segs = append(segs, Segment{Name: name, Quoting: q})

		if i == len(s) {
			return &Identifier{Segments: segs}, nil
		}
		if s[i] != '.' {
			return nil, fmt.Errorf("identifier %q: expected '.' at offset %d", s, i)
		}
		i++
		if i == len(s) {
			return nil, fmt.Errorf("identifier %q: trailing '.'", s)
		}
	}
}

// scanBracketed reads a [name] starting at s[i] == '[' and returns the name
// and the offset just past the closing bracket.
func scanBracketed(s string, i int) (string, int, error) {
	var sb strings.Builder
	for j := i + 1; j < len(s); j++ {
		if s[j] != ']' {
			sb.WriteByte(s[j])
			continue
		}
		if j+1 < len(s) && s[j+1] == ']' {
			sb.WriteByte(']')
			j++
			continue
		}
		return sb.String(), j + 1, nil
	}
	return "", 0, fmt.Errorf("identifier %q: unterminated '['", s)
}

// String renders the identifier in MDX form.
func (id *Identifier) String() string {
	parts := make([]string, len(id.Segments))
	for i, seg := range id.Segments {
		switch seg.Quoting {
		case Quoted:
			parts[i] = QuoteName(seg.Name)
		case Key:
			parts[i] = "&" + QuoteName(seg.Name)
		default:
			parts[i] = seg.Name
		}
	}
	return strings.Join(parts, ".")
}
