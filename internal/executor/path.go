package executor

import (
	"slices"
	"strconv"
	"strings"
)

// Path locates a value in the response: field response names and list indexes.
type Path []PathElement

// PathElement is a string response name or an int list index.
type PathElement any

// String renders p as "a.b[0].c".
func (p Path) String() string {
	var sb strings.Builder
	for _, elem := range p {
		switch v := elem.(type) {
		case string:
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(v)
		case int:
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(v))
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// with returns a copy of p extended by elem. The receiver is never aliased.
func (p Path) with(elem PathElement) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, elem)
}

func (p Path) hasPrefix(prefix Path) bool {
	return len(prefix) <= len(p) && slices.Equal(p[:len(prefix)], prefix)
}

// rootField is the path of the top-level field p descends from.
func (p Path) rootField() Path {
	for _, elem := range p {
		if name, ok := elem.(string); ok {
			return Path{name}
		}
	}
	return Path{}
}

// setAt writes value at path inside root, creating intermediate objects.
// Writes through a missing list element or a null parent are dropped.
func setAt(root map[string]any, path Path, value any) {
	if len(path) == 0 {
		return
	}
	var cur any = root
	for _, elem := range path[:len(path)-1] {
		switch e := elem.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return
			}
			next, exists := m[e]
			if !exists {
				next = make(map[string]any)
				m[e] = next
			}
			cur = next
		case int:
			list, ok := cur.([]any)
			if !ok || e >= len(list) {
				return
			}
			if list[e] == nil {
				list[e] = make(map[string]any)
			}
			cur = list[e]
		}
	}
	switch e := path[len(path)-1].(type) {
	case string:
		if m, ok := cur.(map[string]any); ok {
			m[e] = value
		}
	case int:
		if list, ok := cur.([]any); ok && e < len(list) {
			list[e] = value
		}
	}
}
