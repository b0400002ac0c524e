package store

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// matches evaluates the filter subset used in this repository: equality
// (array fields match when any element is equal), {"$in": [...]} and
// {"$exists": bool}.
func matches(doc, filter bson.M, caseInsensitive bool) bool {
	for key, want := range filter {
		got, present := doc[key]
		if ops, ok := want.(bson.M); ok {
			if exists, ok := ops["$exists"].(bool); ok {
				if present != exists {
					return false
				}
				continue
			}
			if in, ok := ops["$in"]; ok {
				if !present || !matchesAny(got, toSlice(in), caseInsensitive) {
					return false
				}
				continue
			}
		}
		if !present {
			if want == nil {
				continue
			}
			return false
		}
		if !matchesAny(got, []any{want}, caseInsensitive) {
			return false
		}
	}
	return true
}

func matchesAny(got any, candidates []any, caseInsensitive bool) bool {
	values := toSlice(got)
	if values == nil {
		values = []any{got}
	}
	for _, v := range values {
		for _, c := range candidates {
			if equal(v, c, caseInsensitive) {
				return true
			}
		}
	}
	return false
}

// sameKey reports whether a and b collide in a unique index. Documents
// outside a partial index never collide.
func sameKey(a, b bson.M, idx Index) bool {
	if idx.Partial != nil && (!matches(a, idx.Partial, false) || !matches(b, idx.Partial, false)) {
		return false
	}
	for _, f := range idx.Fields() {
		if !equal(a[f], b[f], idx.CaseInsensitive) {
			return false
		}
	}
	return true
}

func keyOf(doc bson.M, idx Index) []any {
	key := make([]any, 0, len(idx.With)+1)
	for _, f := range idx.Fields() {
		key = append(key, doc[f])
	}
	return key
}

func equal(a, b any, caseInsensitive bool) bool {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return false
		}
		if caseInsensitive {
			return strings.EqualFold(as, bs)
		}
		return as == bs
	}
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	return a == nil && b == nil
}

// toSlice returns the elements of an array value, or nil for scalars.
func toSlice(v any) []any {
	switch s := v.(type) {
	case bson.A:
		return s
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
