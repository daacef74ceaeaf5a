package query

import (
	"reflect"
	"regexp"
	"strings"
)

// Eval reports whether the document value matches the filter. A nil
// filter matches everything. Errors surface only for patterns that fail
// to compile; every other mismatch (missing path, wrong type) evaluates
// to false so filters stay total over heterogeneous documents.
func Eval(f Filter, value any) (bool, error) {
	if f == nil {
		return true, nil
	}

	switch node := f.(type) {
	case And:
		for _, child := range node.Filters {
			ok, err := Eval(child, value)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case Or:
		for _, child := range node.Filters {
			ok, err := Eval(child, value)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case Not:
		ok, err := Eval(node.Filter, value)
		if err != nil {
			return false, err
		}
		return !ok, nil

	case Compare:
		leaf, found := Lookup(value, node.Path)
		return evalCompare(node.Op, leaf, found, node.Value), nil

	case Exists:
		_, found := Lookup(value, node.Path)
		return found, nil

	case IsNull:
		leaf, found := Lookup(value, node.Path)
		return found && leaf == nil, nil

	case Match:
		leaf, found := Lookup(value, node.Path)
		if !found {
			return false, nil
		}
		s, ok := leaf.(string)
		if !ok {
			return false, nil
		}
		pattern := node.Pattern
		if node.IgnoreCase {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, invalidf("matches: bad pattern %q: %v", node.Pattern, err)
		}
		return re.MatchString(s), nil

	case HasPrefix:
		leaf, found := Lookup(value, node.Path)
		if !found {
			return false, nil
		}
		s, ok := leaf.(string)
		if !ok {
			return false, nil
		}
		return strings.HasPrefix(s, node.Prefix), nil

	default:
		// Unreachable: Filter is sealed to this package.
		return false, invalidf("unknown filter node %T", f)
	}
}

// evalCompare applies a comparison operator to the leaf value.
func evalCompare(op CompareOp, leaf any, found bool, operand any) bool {
	switch op {
	case OpEq:
		return found && structurallyEqual(leaf, operand)
	case OpNe:
		return !found || !structurallyEqual(leaf, operand)
	case OpGt, OpGte, OpLt, OpLte:
		if !found {
			return false
		}
		cmp, ok := compareOrdered(leaf, operand)
		if !ok {
			return false
		}
		switch op {
		case OpGt:
			return cmp > 0
		case OpGte:
			return cmp >= 0
		case OpLt:
			return cmp < 0
		default:
			return cmp <= 0
		}
	default:
		return false
	}
}

// Lookup walks a path into a document value. Returns the value found
// and whether the full path resolved. Objects are walked by field name,
// arrays by index; any other pairing fails the walk.
func Lookup(value any, path Path) (any, bool) {
	current := value
	for _, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}
			next, ok := obj[key]
			if !ok {
				return nil, false
			}
			current = next
		case int:
			arr, ok := current.([]any)
			if !ok {
				return nil, false
			}
			if key < 0 || key >= len(arr) {
				return nil, false
			}
			current = arr[key]
		default:
			return nil, false
		}
	}
	return current, true
}

// structurallyEqual compares two values after JSON normalization, so a
// native int operand equals the float64 the codec decodes.
func structurallyEqual(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// compareOrdered compares two values of the same primitive type.
// Numbers compare numerically, strings byte-wise. Any other pairing
// (mixed types, booleans, composites) is not ordered.
func compareOrdered(a, b any) (int, bool) {
	na, aNum := asNumber(a)
	nb, bNum := asNumber(b)
	if aNum && bNum {
		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		default:
			return 0, true
		}
	}

	sa, aStr := a.(string)
	sb, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(sa, sb), true
	}

	return 0, false
}

// asNumber widens any numeric type to float64.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// normalize rewrites a value into the shapes encoding/json decodes to:
// numbers become float64, slices []any, maps map[string]any. Structs
// and other exotic types are left as-is; callers only compare values
// that originated as JSON.
func normalize(v any) any {
	if n, ok := asNumber(v); ok {
		return n
	}
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = normalize(e)
		}
		return out
	default:
		return v
	}
}
