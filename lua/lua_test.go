package lua

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
	"testing"

	"github.com/alttpo/edn"
	"github.com/yuin/gopher-lua"
)

func newState(t *testing.T) *lua.LState {
	t.Helper()
	l := lua.NewState(lua.Options{})
	t.Cleanup(l.Close)
	Preload(l)
	return l
}

func callParse(t *testing.T, l *lua.LState, args ...lua.LValue) (lua.LValue, lua.LValue) {
	t.Helper()
	if err := l.DoString(`edn = require("edn")`); err != nil {
		t.Fatal(err)
	}
	mod := l.GetGlobal("edn").(*lua.LTable)
	err := l.CallByParam(
		lua.P{
			Fn:      mod.RawGetString("parse"),
			NRet:    2,
			Protect: true,
		},
		args...,
	)
	if err != nil {
		t.Fatalf("glua error: %v", err)
	}
	v, perr := l.Get(-2), l.Get(-1)
	l.Pop(2)
	return v, perr
}

func TestLuaParse(t *testing.T) {
	type test struct {
		name    string
		src     string
		rule    string
		wantErr string
		wantN   string
	}
	var cases = []test{
		{
			name:  "integer",
			src:   "42",
			wantN: `{kind="integer",value=42}`,
		},
		{
			name:  "integer beyond exact lua number",
			src:   "-9223372036854775808",
			wantN: `{kind="integer",value="-9223372036854775808"}`,
		},
		{
			name:  "bigint",
			src:   "123456789012345678901234567890N",
			wantN: `{kind="bigint",value="123456789012345678901234567890"}`,
		},
		{
			name:  "keyword without namespace",
			src:   ":a",
			wantN: `{kind="keyword",name="a"}`,
		},
		{
			name:  "namespaced symbol",
			src:   "foo/bar",
			wantN: `{kind="symbol",name="bar",ns="foo"}`,
		},
		{
			name:  "vector",
			src:   `[nil true "x" 1.5]`,
			wantN: `{items={{kind="nil"},{kind="boolean",value=true},{kind="text",value="x"},{kind="float",value=1.5}},kind="vector"}`,
		},
		{
			name:  "set in canonical order",
			src:   "#{3 1 2 1}",
			wantN: `{items={{kind="integer",value=1},{kind="integer",value=2},{kind="integer",value=3}},kind="set"}`,
		},
		{
			name:  "map",
			src:   "{:b 2 :a (1)}",
			wantN: `{entries={{key={kind="keyword",name="a"},value={items={{kind="integer",value=1}},kind="list"}},{key={kind="keyword",name="b"},value={kind="integer",value=2}}},kind="map"}`,
		},
		{
			name:  "single rule",
			src:   ":x/y",
			rule:  "keyword",
			wantN: `{kind="keyword",name="y",ns="x"}`,
		},
		{
			name:    "single rule rejects other shape",
			src:     "x",
			rule:    "keyword",
			wantErr: "syntax",
		},
		{
			name:    "unterminated",
			src:     "(",
			wantErr: "syntax",
		},
		{
			name:    "unexpected end of list",
			src:     ")",
			wantErr: "syntax",
		},
		{
			name:    "integer range",
			src:     "99999999999999999999",
			wantErr: "range",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			l := newState(t)

			args := []lua.LValue{lua.LString(tt.src)}
			if tt.rule != "" {
				args = append(args, lua.LString(tt.rule))
			}
			n, perr := callParse(t, l, args...)

			errKind := ""
			if perr != lua.LNil {
				errKind = string(perr.(*lua.LTable).RawGetString("kind").(lua.LString))
			}
			if errKind != tt.wantErr {
				t.Fatalf("want err='%v' got '%v'", tt.wantErr, errKind)
			}
			if tt.wantErr != "" {
				if n != lua.LNil {
					t.Fatalf("want nil value with error, got %s", fmtLua(n))
				}
				return
			}

			if got := fmtLua(n); got != tt.wantN {
				t.Fatalf("want %s\ngot  %s", tt.wantN, got)
			}
		})
	}
}

func TestLuaParseErrorTable(t *testing.T) {
	l := newState(t)
	n, perr := callParse(t, l, lua.LString("[1 2"))
	if n != lua.LNil {
		t.Fatalf("value = %s", fmtLua(n))
	}
	et := perr.(*lua.LTable)
	if et.RawGetString("offset") != lua.LNumber(4) || et.RawGetString("line") != lua.LNumber(1) || et.RawGetString("col") != lua.LNumber(5) {
		t.Errorf("error table = %s", fmtLua(et))
	}
	if et.RawGetString("incomplete") != lua.LTrue {
		t.Errorf("incomplete = %v", et.RawGetString("incomplete"))
	}
	if et.RawGetString("expected").(*lua.LTable).Len() == 0 {
		t.Error("no expectations")
	}
	if !strings.HasPrefix(lua.LVAsString(et.RawGetString("err")), "edn: 1:5 (4): syntax error") {
		t.Errorf("err = %v", et.RawGetString("err"))
	}
}

func TestLuaScript(t *testing.T) {
	l := newState(t)
	err := l.DoString(`
		local edn = require("edn")
		local v, err = edn.parse("{:find [?x] :where [[?x :foaf/knows ?y]]}")
		assert(err == nil, "parse failed")
		assert(v.kind == "map")
		assert(#v.entries == 2)
		local find = v.entries[1]
		assert(find.key.name == "find", find.key.name)
		assert(find.value.items[1].name == "?x")
		local clause = v.entries[2].value.items[1]
		assert(clause.items[2].ns == "foaf")
		assert(clause.items[2].kind == "keyword")

		local _, perr = edn.parse('"abc')
		assert(perr.incomplete == true)
		assert(perr.kind == "syntax")
	`)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLuaParseUnknownRule(t *testing.T) {
	l := newState(t)
	err := l.DoString(`require("edn").parse("1", "nope")`)
	if err == nil || !strings.Contains(err.Error(), "unknown rule") {
		t.Fatalf("err = %v", err)
	}
}

func TestFromLua(t *testing.T) {
	l := newState(t)
	srcs := []string{
		"nil",
		"[1 -2 3.5 \"x\" true false]",
		"#{:a :b/c d e/f}",
		"{(1 2) [3] #{4} {5 6}}",
		"18446744073709551616N",
		"9223372036854775807",
		"-9223372036854775808",
		"9007199254740993",
		"-9007199254740993",
		"9007199254740992",
	}
	for _, src := range srcs {
		want, err := edn.Parse(src)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		got, err := FromLua(ToLua(l, want))
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if !edn.Equal(got, want) {
			t.Errorf("round trip of %s = %v, want %v", src, got, want)
		}
	}
}

func TestFromLuaErrors(t *testing.T) {
	l := newState(t)
	bad := func(fields map[string]lua.LValue) *lua.LTable {
		tb := l.NewTable()
		for k, v := range fields {
			tb.RawSetString(k, v)
		}
		return tb
	}

	tests := []struct {
		name string
		lv   lua.LValue
		want error
	}{
		{"not a table", lua.LString("x"), ErrNotATable},
		{"unknown kind", bad(map[string]lua.LValue{"kind": lua.LString("ratio")}), ErrUnknownKind},
		{"integer payload", bad(map[string]lua.LValue{"kind": lua.LString("integer"), "value": lua.LBool(true)}), ErrBadPayload},
		{"integer text payload", bad(map[string]lua.LValue{"kind": lua.LString("integer"), "value": lua.LString("1x")}), ErrBadPayload},
		{"fractional integer", bad(map[string]lua.LValue{"kind": lua.LString("integer"), "value": lua.LNumber(1.5)}), ErrBadPayload},
		{"integer above int64", bad(map[string]lua.LValue{"kind": lua.LString("integer"), "value": lua.LNumber(math.Exp2(63))}), ErrBadPayload},
		{"integer text above int64", bad(map[string]lua.LValue{"kind": lua.LString("integer"), "value": lua.LString("9223372036854775808")}), ErrBadPayload},
		{"infinite integer", bad(map[string]lua.LValue{"kind": lua.LString("integer"), "value": lua.LNumber(math.Inf(-1))}), ErrBadPayload},
		{"bigint payload", bad(map[string]lua.LValue{"kind": lua.LString("bigint"), "value": lua.LString("x")}), ErrBadPayload},
		{"empty namespace", bad(map[string]lua.LValue{"kind": lua.LString("keyword"), "ns": lua.LString(""), "name": lua.LString("a")}), edn.ErrEmptyNamespace},
		{"missing items", bad(map[string]lua.LValue{"kind": lua.LString("vector")}), ErrNotATable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLua(tt.lv)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestToLuaBigIntPayload(t *testing.T) {
	l := newState(t)
	n, _ := new(big.Int).SetString("-340282366920938463463374607431768211456", 10)
	tb := ToLua(l, edn.BigInteger(n))
	if lua.LVAsString(tb.RawGetString("value")) != n.String() {
		t.Errorf("value = %v", tb.RawGetString("value"))
	}
}

func TestToLuaIntegerPayload(t *testing.T) {
	l := newState(t)
	tests := []struct {
		i    int64
		want lua.LValue
	}{
		{0, lua.LNumber(0)},
		{-42, lua.LNumber(-42)},
		{1 << 53, lua.LNumber(1 << 53)},
		{-1 << 53, lua.LNumber(-1 << 53)},
		{1<<53 + 1, lua.LString("9007199254740993")},
		{math.MaxInt64, lua.LString("9223372036854775807")},
		{math.MinInt64, lua.LString("-9223372036854775808")},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.i), func(t *testing.T) {
			got := ToLua(l, edn.Integer(tt.i)).RawGetString("value")
			if got.Type() != tt.want.Type() || got.String() != tt.want.String() {
				t.Errorf("value = %s %v, want %s %v", got.Type(), got, tt.want.Type(), tt.want)
			}
			back, err := FromLua(ToLua(l, edn.Integer(tt.i)))
			if err != nil {
				t.Fatal(err)
			}
			if back.Int() != tt.i {
				t.Errorf("round trip = %d", back.Int())
			}
		})
	}
}

// fmtLua renders tables with sorted keys so results compare as strings.
func fmtLua(v lua.LValue) string {
	if v == nil {
		return ""
	}

	switch v.Type() {
	case lua.LTTable:
		tb := v.(*lua.LTable)
		if n := tb.Len(); n > 0 {
			parts := make([]string, 0, n)
			for i := 1; i <= n; i++ {
				parts = append(parts, fmtLua(tb.RawGetInt(i)))
			}
			return "{" + strings.Join(parts, ",") + "}"
		}
		var parts []string
		tb.ForEach(func(key lua.LValue, val lua.LValue) {
			parts = append(parts, lua.LVAsString(key)+"="+fmtLua(val))
		})
		sort.Strings(parts)
		return "{" + strings.Join(parts, ",") + "}"
	case lua.LTString:
		st := string(v.(lua.LString))
		return fmt.Sprintf("%q", st)
	default:
		return v.String()
	}
}
