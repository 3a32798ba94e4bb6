// Package lua exposes the EDN reader to gopher-lua scripts.
//
// A parsed value becomes a table tagged with its kind:
//
//	nil, boolean, integer, bigint,
//	float, text                  {kind=..., value=...}
//	symbol, keyword              {kind=..., ns=..., name=...}
//	list, vector, set            {kind=..., items={...}}
//	map                          {kind="map", entries={{key=..., value=...}, ...}}
//
// Floats are Lua numbers and bigints are decimal strings. Integers are Lua
// numbers when a float64 holds them exactly (magnitude at most 2^53) and
// decimal strings otherwise. An absent namespace leaves ns unset.
package lua

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/alttpo/edn"
	"github.com/yuin/gopher-lua"
)

const ModuleName = "edn"

// maxExactInt is the largest magnitude every smaller integer of which a
// Lua number represents exactly.
const maxExactInt = 1 << 53

var (
	ErrNotATable   = errors.New("edn value must be a table")
	ErrUnknownKind = errors.New("unknown edn kind")
	ErrBadPayload  = errors.New("bad edn payload")
)

var rules = map[string]func(string) (*edn.Value, error){
	"value":   edn.ParseValue,
	"nil":     edn.ParseNil,
	"boolean": edn.ParseBoolean,
	"integer": edn.ParseInteger,
	"bigint":  edn.ParseBigInteger,
	"float":   edn.ParseFloat,
	"text":    edn.ParseText,
	"symbol":  edn.ParseSymbol,
	"keyword": edn.ParseKeyword,
	"list":    edn.ParseList,
	"vector":  edn.ParseVector,
	"map":     edn.ParseMap,
	"set":     edn.ParseSet,
}

var exports = map[string]lua.LGFunction{
	"parse": parse,
}

// Preload makes the module available to require("edn").
func Preload(L *lua.LState) {
	L.PreloadModule(ModuleName, Loader)
}

func Loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), exports)
	L.Push(mod)
	return 1
}

// parse(src [, rule]) returns the value table and nil, or nil and an error
// table {err=, kind=, offset=, line=, col=, expected=, incomplete=}.
func parse(L *lua.LState) int {
	src := L.CheckString(1)
	ruleName := L.OptString(2, "value")

	fn, ok := rules[ruleName]
	if !ok {
		L.ArgError(2, fmt.Sprintf("unknown rule %q", ruleName))
		return 0
	}

	v, err := fn(src)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(ErrorTable(L, err))
		return 2
	}

	L.Push(ToLua(L, v))
	L.Push(lua.LNil)
	return 2
}

func ErrorTable(L *lua.LState, err error) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("err", lua.LString(err.Error()))

	var pe *edn.ParseError
	if !errors.As(err, &pe) {
		return t
	}

	kind := "syntax"
	switch {
	case errors.Is(err, edn.ErrIntegerRange):
		kind = "range"
	case errors.Is(err, edn.ErrMalformedFloat):
		kind = "float"
	case errors.Is(err, edn.ErrTooDeep):
		kind = "depth"
	}
	t.RawSetString("kind", lua.LString(kind))
	t.RawSetString("offset", lua.LNumber(pe.Pos.Offset))
	t.RawSetString("line", lua.LNumber(pe.Pos.Line))
	t.RawSetString("col", lua.LNumber(pe.Pos.Col))
	t.RawSetString("incomplete", lua.LBool(edn.IsIncomplete(err)))

	expected := L.NewTable()
	for _, want := range pe.Expected {
		expected.Append(lua.LString(want))
	}
	t.RawSetString("expected", expected)
	return t
}

func ToLua(L *lua.LState, v *edn.Value) *lua.LTable {
	t := L.NewTable()
	k := v.Kind()
	t.RawSetString("kind", lua.LString(k.String()))

	switch k {
	case edn.KindBoolean:
		t.RawSetString("value", lua.LBool(v.Bool()))
	case edn.KindInteger:
		t.RawSetString("value", intToLua(v.Int()))
	case edn.KindBigInteger:
		t.RawSetString("value", lua.LString(v.BigInt().String()))
	case edn.KindFloat:
		t.RawSetString("value", lua.LNumber(v.Float()))
	case edn.KindText:
		t.RawSetString("value", lua.LString(v.Text()))
	case edn.KindSymbol, edn.KindKeyword:
		if ns, ok := v.Namespace(); ok {
			t.RawSetString("ns", lua.LString(ns))
		}
		t.RawSetString("name", lua.LString(v.Name()))
	case edn.KindList, edn.KindVector, edn.KindSet:
		items := L.NewTable()
		for _, c := range v.Items() {
			items.Append(ToLua(L, c))
		}
		t.RawSetString("items", items)
	case edn.KindMap:
		entries := L.NewTable()
		v.AscendEntries(func(e edn.Entry) bool {
			et := L.NewTable()
			et.RawSetString("key", ToLua(L, e.Key))
			et.RawSetString("value", ToLua(L, e.Value))
			entries.Append(et)
			return true
		})
		t.RawSetString("entries", entries)
	}
	return t
}

// FromLua rebuilds a value from a table in the shape ToLua produces.
func FromLua(lv lua.LValue) (*edn.Value, error) {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil, ErrNotATable
	}

	kind := lua.LVAsString(t.RawGetString("kind"))
	payload := t.RawGetString("value")

	switch kind {
	case "nil":
		return edn.Nil(), nil
	case "boolean":
		b, ok := payload.(lua.LBool)
		if !ok {
			return nil, fmt.Errorf("%w: boolean value is %s", ErrBadPayload, payload.Type())
		}
		return edn.Bool(bool(b)), nil
	case "integer":
		return intFromLua(payload)
	case "bigint":
		n, ok := new(big.Int).SetString(lua.LVAsString(payload), 10)
		if !ok {
			return nil, fmt.Errorf("%w: bigint value %q", ErrBadPayload, lua.LVAsString(payload))
		}
		return edn.BigInteger(n), nil
	case "float":
		n, ok := payload.(lua.LNumber)
		if !ok {
			return nil, fmt.Errorf("%w: float value is %s", ErrBadPayload, payload.Type())
		}
		return edn.Float(float64(n)), nil
	case "text":
		s, ok := payload.(lua.LString)
		if !ok {
			return nil, fmt.Errorf("%w: text value is %s", ErrBadPayload, payload.Type())
		}
		return edn.Text(string(s)), nil
	case "symbol", "keyword":
		return identFromLua(kind, t)
	case "list", "vector", "set":
		items, err := itemsFromLua(t.RawGetString("items"))
		if err != nil {
			return nil, err
		}
		switch kind {
		case "list":
			return edn.List(items...), nil
		case "vector":
			return edn.Vector(items...), nil
		}
		return edn.Set(items...), nil
	case "map":
		return mapFromLua(t.RawGetString("entries"))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func intToLua(i int64) lua.LValue {
	if i >= -maxExactInt && i <= maxExactInt {
		return lua.LNumber(i)
	}
	return lua.LString(strconv.FormatInt(i, 10))
}

// intFromLua accepts an integral number in int64 range or a decimal string.
func intFromLua(payload lua.LValue) (*edn.Value, error) {
	switch n := payload.(type) {
	case lua.LNumber:
		f := float64(n)
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, fmt.Errorf("%w: integer value %v", ErrBadPayload, f)
		}
		return edn.Integer(int64(f)), nil
	case lua.LString:
		i, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: integer value %q", ErrBadPayload, string(n))
		}
		return edn.Integer(i), nil
	}
	return nil, fmt.Errorf("%w: integer value is %s", ErrBadPayload, payload.Type())
}

func identFromLua(kind string, t *lua.LTable) (*edn.Value, error) {
	name := lua.LVAsString(t.RawGetString("name"))
	ns := t.RawGetString("ns")
	if ns == lua.LNil {
		if kind == "symbol" {
			return edn.Symbol(name)
		}
		return edn.Keyword(name)
	}
	if kind == "symbol" {
		return edn.NamespacedSymbol(lua.LVAsString(ns), name)
	}
	return edn.NamespacedKeyword(lua.LVAsString(ns), name)
}

func itemsFromLua(lv lua.LValue) ([]*edn.Value, error) {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: items", ErrNotATable)
	}
	items := make([]*edn.Value, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		v, err := FromLua(t.RawGetInt(i))
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func mapFromLua(lv lua.LValue) (*edn.Value, error) {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: entries", ErrNotATable)
	}
	entries := make([]edn.Entry, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		et, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d", ErrNotATable, i)
		}
		k, err := FromLua(et.RawGetString("key"))
		if err != nil {
			return nil, err
		}
		v, err := FromLua(et.RawGetString("value"))
		if err != nil {
			return nil, err
		}
		entries = append(entries, edn.Entry{Key: k, Value: v})
	}
	return edn.Map(entries...), nil
}
