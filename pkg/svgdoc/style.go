package svgdoc

import "strings"

// StyleProperty is one "name:value" pair of an inline style attribute.
type StyleProperty struct {
	Name  string
	Value string
}

// ParseStyle splits an inline style string into its properties. Entries
// without a colon are dropped. Names and values are trimmed.
func ParseStyle(style string) []StyleProperty {
	var props []StyleProperty
	for _, rule := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(rule, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		props = append(props, StyleProperty{Name: name, Value: strings.TrimSpace(value)})
	}
	return props
}

// FormatStyle joins properties back into an inline style string.
func FormatStyle(props []StyleProperty) string {
	parts := make([]string, 0, len(props))
	for _, p := range props {
		parts = append(parts, p.Name+":"+p.Value)
	}
	return strings.Join(parts, ";")
}

// lookupStyle returns the value of the last property called name.
func lookupStyle(props []StyleProperty, name string) (string, bool) {
	value, found := "", false
	for _, p := range props {
		if p.Name == name {
			value, found = p.Value, true
		}
	}
	return value, found
}

// setStyle replaces every property called name with a single one holding
// value, keeping the position of the first occurrence. The property is
// appended when absent.
func setStyle(props []StyleProperty, name, value string) []StyleProperty {
	out := props[:0:0]
	placed := false
	for _, p := range props {
		if p.Name != name {
			out = append(out, p)
			continue
		}
		if !placed {
			out = append(out, StyleProperty{Name: name, Value: value})
			placed = true
		}
	}
	if !placed {
		out = append(out, StyleProperty{Name: name, Value: value})
	}
	return out
}
