package edn

import (
	"math"
	"strings"
)

// Compare returns -1, 0 or +1 ordering a before, equal to, or after b.
//
// Values of different kinds order by kind. Within a kind numbers order
// numerically, text and identifiers byte-wise, sequences element-wise and
// then by length. Sets compare their elements in canonical order and maps
// their entries, key before value. NaN is a single float greater than every
// other float.
func Compare(a, b *Value) int {
	ka, kb := a.Kind(), b.Kind()
	if ka != kb {
		return cmpInt(int64(ka), int64(kb))
	}

	switch ka {
	case KindNil:
		return 0
	case KindBoolean:
		return cmpBool(a.b, b.b)
	case KindInteger:
		return cmpInt(a.i, b.i)
	case KindBigInteger:
		return a.big.Cmp(b.big)
	case KindFloat:
		return cmpFloat(a.f, b.f)
	case KindText:
		return strings.Compare(a.s, b.s)
	case KindSymbol, KindKeyword:
		if c := cmpBool(a.hasNS, b.hasNS); c != 0 {
			return c
		}
		if c := strings.Compare(a.ns, b.ns); c != 0 {
			return c
		}
		return strings.Compare(a.s, b.s)
	case KindList, KindVector:
		return cmpSeq(a.items, b.items)
	case KindSet:
		return cmpSeq(a.items, b.items)
	case KindMap:
		return cmpEntries(a.ordered, b.ordered)
	}
	return 0
}

func Equal(a, b *Value) bool {
	return Compare(a, b) == 0
}

// Less reports whether v orders before other.
func (v *Value) Less(other *Value) bool {
	return Compare(v, other) < 0
}

func lessEntry(a, b Entry) bool {
	return Compare(a.Key, b.Key) < 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func cmpFloat(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpSeq(a, b []*Value) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmpInt(int64(len(a)), int64(len(b)))
}

func cmpEntries(a, b []Entry) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i].Key, b[i].Key); c != 0 {
			return c
		}
		if c := Compare(a[i].Value, b[i].Value); c != 0 {
			return c
		}
	}
	return cmpInt(int64(len(a)), int64(len(b)))
}
