package vals

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Reprer wraps the Repr method.
type Reprer interface {
	// Repr returns a string that represents a Value. The string should be
	// parseable as an expression that evaluates to an equivalent value, when
	// that is possible.
	Repr() string
}

// Stringer wraps the String method; it is the same as fmt.Stringer.
type Stringer interface {
	// String converts the receiver to a string.
	String() string
}

// Repr returns the representation of a value, like the repr function in
// Python. Lists, maps, strings, numbers, booleans and None are represented
// with the syntax of the expression language.
func Repr(v any) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case string:
		return Quote(v)
	case Reprer:
		return v.Repr()
	case Func:
		return "<function>"
	}
	if items, ok := listItems(v); ok {
		return reprItems(items)
	}
	if m, ok := asMapper(v); ok {
		return reprMap(m)
	}
	return fmt.Sprint(v)
}

func reprItems(items []any) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(Repr(item))
	}
	sb.WriteByte(']')
	return sb.String()
}

func reprMap(m Mapper) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		v, _ := m.Get(k)
		sb.WriteString(Repr(k))
		sb.WriteString(": ")
		sb.WriteString(Repr(v))
	}
	sb.WriteByte('}')
	return sb.String()
}

// ToString converts a value to a string, like the str function in Python.
// Strings are returned unchanged, and values implementing Stringer are
// converted with their String method; everything else uses Repr.
func ToString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case Stringer:
		return v.String()
	}
	return Repr(v)
}

// ReprList and ReprMap are exported for container types in other packages
// that implement Reprer.

// ReprList returns the representation of a list with the given items.
func ReprList(items []any) string { return reprItems(items) }

// ReprMap returns the representation of a map.
func ReprMap(m Mapper) string { return reprMap(m) }

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(e[strings.LastIndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Quote quotes a string the way Python's repr does: with single quotes,
// unless the string contains single quotes but no double quotes.
func Quote(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var sb strings.Builder
	sb.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == rune(quote):
			sb.WriteByte('\\')
			sb.WriteByte(quote)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}
