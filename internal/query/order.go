package query

import (
	"bytes"
	"encoding/json"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Type ranks for cross-type ordering. Missing values sort before
// everything; otherwise values order by kind, then within the kind.
// The rank is arbitrary but total and stable.
const (
	rankMissing = iota
	rankNull
	rankBool
	rankNumber
	rankString
	rankArray
	rankObject
)

// Sort orders documents in place by the orderBy sequence. The sort is
// stable and lexicographic: earlier orderings dominate later ones. An
// empty orderBy leaves the slice untouched.
func Sort(docs []Document, orderBy []Order) {
	if len(orderBy) == 0 {
		return
	}
	cmp := NewComparator(orderBy)
	sort.SliceStable(docs, func(i, j int) bool {
		return cmp(docs[i], docs[j]) < 0
	})
}

// NewComparator builds a three-way comparator for the orderBy sequence.
// The returned function is not safe for concurrent use: it captures a
// collator, which reuses an internal buffer.
func NewComparator(orderBy []Order) func(a, b Document) int {
	coll := collate.New(language.Und)
	return func(a, b Document) int {
		for _, o := range orderBy {
			va, foundA := Lookup(a.Value, o.Path)
			vb, foundB := Lookup(b.Value, o.Path)
			cmp := compareForOrder(coll, va, foundA, vb, foundB)
			if cmp == 0 {
				continue
			}
			if o.Direction == DESC {
				return -cmp
			}
			return cmp
		}
		return 0
	}
}

// compareForOrder is the total ordering used by sorts: rank first, then
// within-kind comparison.
func compareForOrder(coll *collate.Collator, a any, foundA bool, b any, foundB bool) int {
	ra := orderRank(a, foundA)
	rb := orderRank(b, foundB)
	if ra != rb {
		return ra - rb
	}

	switch ra {
	case rankMissing, rankNull:
		return 0
	case rankBool:
		ba := a.(bool)
		bb := b.(bool)
		switch {
		case ba == bb:
			return 0
		case bb: // false < true
			return -1
		default:
			return 1
		}
	case rankNumber:
		na, _ := asNumber(a)
		nb, _ := asNumber(b)
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	case rankString:
		return coll.CompareString(a.(string), b.(string))
	default:
		// Arrays and objects compare by their canonical JSON bytes:
		// arbitrary, but total, stable, and consistent with equality.
		return bytes.Compare(canonicalBytes(a), canonicalBytes(b))
	}
}

// orderRank classifies a value for cross-type ordering.
func orderRank(v any, found bool) int {
	if !found {
		return rankMissing
	}
	if v == nil {
		return rankNull
	}
	if _, ok := asNumber(v); ok {
		return rankNumber
	}
	switch v.(type) {
	case bool:
		return rankBool
	case string:
		return rankString
	case []any:
		return rankArray
	default:
		return rankObject
	}
}

// canonicalBytes renders a composite value with sorted object keys.
// encoding/json sorts map keys, which is all the determinism the
// ordering rule needs.
func canonicalBytes(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
