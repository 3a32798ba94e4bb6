package edn

import (
	"math/big"

	"github.com/google/btree"
)

const btreeDegree = 8

var nilValue = &Value{kind: KindNil}

func Nil() *Value { return nilValue }

func Bool(b bool) *Value { return &Value{kind: KindBoolean, b: b} }

func Integer(i int64) *Value { return &Value{kind: KindInteger, i: i} }

// BigInteger copies i; a nil i produces zero.
func BigInteger(i *big.Int) *Value {
	n := new(big.Int)
	if i != nil {
		n.Set(i)
	}
	return &Value{kind: KindBigInteger, big: n}
}

func Float(f float64) *Value { return &Value{kind: KindFloat, f: f} }

func Text(s string) *Value { return &Value{kind: KindText, s: s} }

func ident(k Kind, ns string, hasNS bool, name string) (*Value, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if hasNS && ns == "" {
		return nil, ErrEmptyNamespace
	}
	return &Value{kind: k, ns: ns, hasNS: hasNS, s: name}, nil
}

// Symbol creates a symbol without a namespace.
func Symbol(name string) (*Value, error) {
	return ident(KindSymbol, "", false, name)
}

// NamespacedSymbol creates a symbol whose namespace is ns. An empty ns is
// rejected; use Symbol for an identifier with no namespace.
func NamespacedSymbol(ns, name string) (*Value, error) {
	return ident(KindSymbol, ns, true, name)
}

func Keyword(name string) (*Value, error) {
	return ident(KindKeyword, "", false, name)
}

func NamespacedKeyword(ns, name string) (*Value, error) {
	return ident(KindKeyword, ns, true, name)
}

func MustSymbol(name string) *Value {
	return must(Symbol(name))
}

func MustNamespacedSymbol(ns, name string) *Value {
	return must(NamespacedSymbol(ns, name))
}

func MustKeyword(name string) *Value {
	return must(Keyword(name))
}

func MustNamespacedKeyword(ns, name string) *Value {
	return must(NamespacedKeyword(ns, name))
}

func must(v *Value, err error) *Value {
	if err != nil {
		panic(err)
	}
	return v
}

func seq(k Kind, children []*Value) *Value {
	items := make([]*Value, len(children))
	for i, c := range children {
		if c == nil {
			c = nilValue
		}
		items[i] = c
	}
	return &Value{kind: k, items: items}
}

func List(children ...*Value) *Value { return seq(KindList, children) }

func Vector(children ...*Value) *Value { return seq(KindVector, children) }

// Set collapses structurally equal elements into the first one given.
func Set(elements ...*Value) *Value {
	t := btree.NewG[*Value](btreeDegree, (*Value).Less)
	for _, e := range elements {
		if e == nil {
			e = nilValue
		}
		if !t.Has(e) {
			t.ReplaceOrInsert(e)
		}
	}

	items := make([]*Value, 0, t.Len())
	t.Ascend(func(e *Value) bool {
		items = append(items, e)
		return true
	})
	return &Value{kind: KindSet, set: t, items: items}
}

// Map keeps the first key and the last value given for a repeated key.
func Map(entries ...Entry) *Value {
	t := btree.NewG[Entry](btreeDegree, lessEntry)
	for _, e := range entries {
		if e.Key == nil {
			e.Key = nilValue
		}
		if e.Value == nil {
			e.Value = nilValue
		}
		if prev, ok := t.Get(e); ok {
			e.Key = prev.Key
		}
		t.ReplaceOrInsert(e)
	}

	ordered := make([]Entry, 0, t.Len())
	t.Ascend(func(e Entry) bool {
		ordered = append(ordered, e)
		return true
	})
	return &Value{kind: KindMap, entries: t, ordered: ordered}
}

// MapOf pairs up kvs as alternating keys and values.
func MapOf(kvs ...*Value) (*Value, error) {
	if len(kvs)%2 != 0 {
		return nil, ErrOddMapElements
	}
	entries := make([]Entry, 0, len(kvs)/2)
	for i := 0; i < len(kvs); i += 2 {
		entries = append(entries, Entry{Key: kvs[i], Value: kvs[i+1]})
	}
	return Map(entries...), nil
}

func MustMapOf(kvs ...*Value) *Value {
	return must(MapOf(kvs...))
}
