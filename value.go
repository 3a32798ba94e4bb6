package edn

import (
	"math/big"

	"github.com/google/btree"
)

type Kind int

// Kinds are declared in cross-kind ranking order; Compare relies on it.
const (
	KindNil Kind = iota
	KindBoolean
	KindInteger
	KindBigInteger
	KindFloat
	KindText
	KindSymbol
	KindKeyword
	KindList
	KindVector
	KindSet
	KindMap
)

var kindNames = [...]string{
	KindNil:        "nil",
	KindBoolean:    "boolean",
	KindInteger:    "integer",
	KindBigInteger: "bigint",
	KindFloat:      "float",
	KindText:       "text",
	KindSymbol:     "symbol",
	KindKeyword:    "keyword",
	KindList:       "list",
	KindVector:     "vector",
	KindSet:        "set",
	KindMap:        "map",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Value is an immutable node of a parsed tree. The zero Value and a nil
// *Value are both Nil.
type Value struct {
	kind Kind

	b   bool
	i   int64
	big *big.Int
	f   float64

	// text payload, or identifier name
	s     string
	ns    string
	hasNS bool

	// elements of a List or Vector, or of a Set in canonical order
	items   []*Value
	set     *btree.BTreeG[*Value]
	entries *btree.BTreeG[Entry]
	// entries of a Map in canonical key order
	ordered []Entry
}

// Entry is a single key/value pair of a Map.
type Entry struct {
	Key   *Value
	Value *Value
}

func (v *Value) Kind() Kind {
	if v == nil {
		return KindNil
	}
	return v.kind
}

func (v *Value) IsNil() bool { return v.Kind() == KindNil }

// Accessors return the zero value of their result when called on a Value of
// another kind.

func (v *Value) Bool() bool {
	if v.Kind() != KindBoolean {
		return false
	}
	return v.b
}

func (v *Value) Int() int64 {
	if v.Kind() != KindInteger {
		return 0
	}
	return v.i
}

// BigInt returns a copy of the BigInteger payload, or nil.
func (v *Value) BigInt() *big.Int {
	if v.Kind() != KindBigInteger {
		return nil
	}
	return new(big.Int).Set(v.big)
}

func (v *Value) Float() float64 {
	if v.Kind() != KindFloat {
		return 0
	}
	return v.f
}

func (v *Value) Text() string {
	if v.Kind() != KindText {
		return ""
	}
	return v.s
}

func (v *Value) isIdent() bool {
	k := v.Kind()
	return k == KindSymbol || k == KindKeyword
}

// Namespace reports the namespace of a Symbol or Keyword. ok is false when
// the identifier has no namespace.
func (v *Value) Namespace() (ns string, ok bool) {
	if !v.isIdent() {
		return "", false
	}
	return v.ns, v.hasNS
}

func (v *Value) Name() string {
	if !v.isIdent() {
		return ""
	}
	return v.s
}

// Len is the number of elements of a List, Vector or Set, or the number of
// entries of a Map.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindList, KindVector:
		return len(v.items)
	case KindSet:
		return v.set.Len()
	case KindMap:
		return v.entries.Len()
	}
	return 0
}

// Index returns the i-th element of a List or Vector, or nil when out of
// range.
func (v *Value) Index(i int) *Value {
	k := v.Kind()
	if k != KindList && k != KindVector {
		return nil
	}
	if i < 0 || i >= len(v.items) {
		return nil
	}
	return v.items[i]
}

// Items returns a copy of the elements of a List, Vector or Set. Set
// elements come back in canonical order.
func (v *Value) Items() []*Value {
	switch v.Kind() {
	case KindList, KindVector, KindSet:
		out := make([]*Value, len(v.items))
		copy(out, v.items)
		return out
	}
	return nil
}

// Ascend calls fn for each element of a Set in canonical order until fn
// returns false.
func (v *Value) Ascend(fn func(e *Value) bool) {
	if v.Kind() != KindSet {
		return
	}
	v.set.Ascend(btree.ItemIteratorG[*Value](fn))
}

func (v *Value) Contains(e *Value) bool {
	if v.Kind() != KindSet {
		return false
	}
	return v.set.Has(e)
}

// Entries returns the entries of a Map in canonical key order.
func (v *Value) Entries() []Entry {
	if v.Kind() != KindMap {
		return nil
	}
	out := make([]Entry, len(v.ordered))
	copy(out, v.ordered)
	return out
}

func (v *Value) AscendEntries(fn func(e Entry) bool) {
	if v.Kind() != KindMap {
		return
	}
	v.entries.Ascend(btree.ItemIteratorG[Entry](fn))
}

func (v *Value) Get(key *Value) (val *Value, ok bool) {
	if v.Kind() != KindMap {
		return nil, false
	}
	e, ok := v.entries.Get(Entry{Key: key})
	if !ok {
		return nil, false
	}
	return e.Value, true
}
