package edn

import (
	"errors"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// DefaultMaxDepth is the collection nesting limit used when
// Parser.MaxDepth is zero.
const DefaultMaxDepth = 1000

// Parser holds parse configuration. The zero Parser is ready to use.
type Parser struct {
	// MaxDepth bounds the nesting of collections. Zero selects
	// DefaultMaxDepth; a negative value disables the limit.
	MaxDepth int
}

var DefaultParser = Parser{}

func (c Parser) maxDepth() int {
	if c.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

type rule func(p *parser) (*Value, bool)

// Parse reads exactly one value from src. Leading and trailing whitespace
// and comments are allowed.
func (c Parser) Parse(src string) (*Value, error) {
	return c.run(src, (*parser).value)
}

func (c Parser) ParseBytes(src []byte) (*Value, error) {
	return c.Parse(string(src))
}

func (c Parser) ParseReader(r io.Reader) (*Value, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return c.Parse(string(b))
}

// ParseValue is Parse.
func (c Parser) ParseValue(src string) (*Value, error) { return c.Parse(src) }

// The single-rule entry points below require src to be exactly one literal
// of that shape, with no surrounding whitespace.

func (c Parser) ParseNil(src string) (*Value, error) { return c.run(src, (*parser).nilLiteral) }

func (c Parser) ParseBoolean(src string) (*Value, error) { return c.run(src, (*parser).boolean) }

func (c Parser) ParseInteger(src string) (*Value, error) { return c.run(src, (*parser).integer) }

func (c Parser) ParseBigInteger(src string) (*Value, error) { return c.run(src, (*parser).bigInteger) }

func (c Parser) ParseFloat(src string) (*Value, error) { return c.run(src, (*parser).float) }

func (c Parser) ParseText(src string) (*Value, error) { return c.run(src, (*parser).text) }

func (c Parser) ParseSymbol(src string) (*Value, error) { return c.run(src, (*parser).symbol) }

func (c Parser) ParseKeyword(src string) (*Value, error) { return c.run(src, (*parser).keyword) }

func (c Parser) ParseList(src string) (*Value, error) { return c.run(src, (*parser).list) }

func (c Parser) ParseVector(src string) (*Value, error) { return c.run(src, (*parser).vector) }

func (c Parser) ParseMap(src string) (*Value, error) { return c.run(src, (*parser).mapping) }

func (c Parser) ParseSet(src string) (*Value, error) { return c.run(src, (*parser).set) }

func Parse(src string) (*Value, error)             { return DefaultParser.Parse(src) }
func ParseBytes(src []byte) (*Value, error)        { return DefaultParser.ParseBytes(src) }
func ParseReader(r io.Reader) (*Value, error)      { return DefaultParser.ParseReader(r) }
func ParseValue(src string) (*Value, error)        { return DefaultParser.ParseValue(src) }
func ParseNil(src string) (*Value, error)          { return DefaultParser.ParseNil(src) }
func ParseBoolean(src string) (*Value, error)      { return DefaultParser.ParseBoolean(src) }
func ParseInteger(src string) (*Value, error)      { return DefaultParser.ParseInteger(src) }
func ParseBigInteger(src string) (*Value, error)   { return DefaultParser.ParseBigInteger(src) }
func ParseFloat(src string) (*Value, error)        { return DefaultParser.ParseFloat(src) }
func ParseText(src string) (*Value, error)         { return DefaultParser.ParseText(src) }
func ParseSymbol(src string) (*Value, error)       { return DefaultParser.ParseSymbol(src) }
func ParseKeyword(src string) (*Value, error)      { return DefaultParser.ParseKeyword(src) }
func ParseList(src string) (*Value, error)         { return DefaultParser.ParseList(src) }
func ParseVector(src string) (*Value, error)       { return DefaultParser.ParseVector(src) }
func ParseMap(src string) (*Value, error)          { return DefaultParser.ParseMap(src) }
func ParseSet(src string) (*Value, error)          { return DefaultParser.ParseSet(src) }

func (c Parser) run(src string, r rule) (*Value, error) {
	p := &parser{
		src:             src,
		maxDepth:        c.maxDepth(),
		maxFailExpected: make([]string, 0, 16),
	}

	v, ok := r(p)
	if p.err != nil {
		return nil, p.err
	}
	if ok {
		if p.pos == len(src) {
			return v, nil
		}
		p.fail(expectEOF)
	}
	return nil, p.syntaxError()
}

const expectEOF = "EOF"

// parser is the cursor state of a single parse. Rules return ok=false on no
// match; a rule that fails must leave pos where it found it. Numeric and
// depth failures are fatal: they are stored in err and stop every rule.
type parser struct {
	src string
	pos int

	depth    int
	maxDepth int

	maxFailPos      int
	maxFailExpected []string

	err *ParseError
}

// fail records that want was expected at the current position; only the
// furthest position is kept.
func (p *parser) fail(want string) {
	if p.pos < p.maxFailPos {
		return
	}
	if p.pos > p.maxFailPos {
		p.maxFailPos = p.pos
		p.maxFailExpected = p.maxFailExpected[:0]
	}
	p.maxFailExpected = append(p.maxFailExpected, want)
}

func (p *parser) syntaxError() *ParseError {
	set := make(map[string]struct{}, len(p.maxFailExpected))
	for _, want := range p.maxFailExpected {
		set[want] = struct{}{}
	}
	return &ParseError{
		Pos:      positionAt(p.src, p.maxFailPos),
		Err:      ErrSyntax,
		Expected: sortedExpected(set),
		atEOF:    p.maxFailPos == len(p.src),
	}
}

func (p *parser) abort(offset int, err error, literal string, cause error) {
	p.err = &ParseError{
		Pos:     positionAt(p.src, offset),
		Err:     err,
		Literal: literal,
		Cause:   cause,
	}
}

func (p *parser) lit(s string) bool {
	if strings.HasPrefix(p.src[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	p.fail(strconv.Quote(s))
	return false
}

func (p *parser) class(label string, f func(c byte) bool) bool {
	if p.pos < len(p.src) && f(p.src[p.pos]) {
		p.pos++
		return true
	}
	p.fail(label)
	return false
}

// many consumes zero or more characters of a class.
func (p *parser) many(label string, f func(c byte) bool) {
	for p.class(label, f) {
	}
}

func (p *parser) many1(label string, f func(c byte) bool) bool {
	if !p.class(label, f) {
		return false
	}
	p.many(label, f)
	return true
}

// seq runs steps in order, restoring the cursor if any of them fails.
func (p *parser) seq(steps ...func(p *parser) bool) bool {
	start := p.pos
	for _, step := range steps {
		if !step(p) {
			p.pos = start
			return false
		}
	}
	return true
}

// lexical primitives

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\r' || c == '\n' || c == '\t' || c == ','
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSign(c byte) bool {
	return c == '+' || c == '-'
}

func isExponentMarker(c byte) bool {
	return c == 'e' || c == 'E'
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c)
}

func isSymbolInitial(c byte) bool {
	return isAlnum(c) || strings.IndexByte("*!_?$%&=<>", c) >= 0
}

func isSymbolSubsequent(c byte) bool {
	return isSymbolInitial(c) || c == '-'
}

const (
	labelDigit            = "[0-9]"
	labelSign             = "[+-]"
	labelExponent         = "[eE]"
	labelSymbolInitial    = "[A-Za-z0-9*!_?$%&=<>]"
	labelSymbolSubsequent = "[-A-Za-z0-9*!_?$%&=<>]"
	labelKeywordNamespace = "[A-Za-z0-9]"
	labelTextClose        = `"\""`
)

// skip consumes whitespace and ; comments.
func (p *parser) skip() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case isWhitespace(c):
			p.pos++
		case c == ';':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

// value dispatcher

func (p *parser) value() (*Value, bool) {
	start := p.pos
	p.skip()

	alternatives := [...]rule{
		(*parser).nilLiteral,
		(*parser).boolean,
		(*parser).float,
		(*parser).bigInteger,
		(*parser).integer,
		(*parser).text,
		(*parser).keyword,
		(*parser).symbol,
		(*parser).list,
		(*parser).vector,
		(*parser).mapping,
		(*parser).set,
	}
	for _, alt := range alternatives {
		v, ok := alt(p)
		if p.err != nil {
			return nil, false
		}
		if ok {
			p.skip()
			return v, true
		}
	}

	p.pos = start
	return nil, false
}

// scalar rules

// word matches a literal that must not run on into an identifier.
func (p *parser) word(s string) bool {
	start := p.pos
	if !p.lit(s) {
		return false
	}
	if p.pos < len(p.src) {
		c := p.src[p.pos]
		if isSymbolSubsequent(c) || c == '/' {
			p.pos = start
			return false
		}
	}
	return true
}

func (p *parser) nilLiteral() (*Value, bool) {
	if p.word("nil") {
		return Nil(), true
	}
	return nil, false
}

func (p *parser) boolean() (*Value, bool) {
	if p.word("true") {
		return Bool(true), true
	}
	if p.word("false") {
		return Bool(false), true
	}
	return nil, false
}

func (p *parser) optionalSign() bool {
	p.class(labelSign, isSign)
	return true
}

func (p *parser) digits() bool {
	return p.many1(labelDigit, isDigit)
}

// intPart matches [+-]?[0-9]+
func (p *parser) intPart() bool {
	return p.seq((*parser).optionalSign, (*parser).digits)
}

func (p *parser) fraction() bool {
	return p.seq(func(p *parser) bool { return p.lit(".") }, (*parser).digits)
}

func (p *parser) exponent() bool {
	return p.seq(
		func(p *parser) bool { return p.class(labelExponent, isExponentMarker) },
		(*parser).optionalSign,
		(*parser).digits,
	)
}

func (p *parser) float() (*Value, bool) {
	start := p.pos
	// fraction+exponent has to be tried first or the exponent is left behind
	matched := p.seq((*parser).intPart, (*parser).fraction, (*parser).exponent) ||
		p.seq((*parser).intPart, (*parser).exponent) ||
		p.seq((*parser).intPart, (*parser).fraction)
	if !matched {
		return nil, false
	}

	lit := p.src[start:p.pos]
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		p.abort(start, ErrMalformedFloat, lit, err)
		return nil, false
	}
	return Float(f), true
}

func (p *parser) bigInteger() (*Value, bool) {
	start := p.pos
	if !p.seq((*parser).intPart, func(p *parser) bool { return p.lit("N") }) {
		return nil, false
	}

	lit := p.src[start : p.pos-1]
	n, ok := new(big.Int).SetString(lit, 10)
	if !ok {
		p.abort(start, ErrSyntax, lit, nil)
		return nil, false
	}
	return &Value{kind: KindBigInteger, big: n}, true
}

func (p *parser) integer() (*Value, bool) {
	start := p.pos
	if !p.intPart() {
		return nil, false
	}

	lit := p.src[start:p.pos]
	i, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		p.abort(start, ErrIntegerRange, lit, err)
		return nil, false
	}
	return Integer(i), true
}

// text recognizes only the \" and \t escapes; any other backslash pair is
// kept as written.
func (p *parser) text() (*Value, bool) {
	start := p.pos
	if !p.lit(`"`) {
		return nil, false
	}

	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '"':
			p.pos++
			return Text(sb.String()), true
		case c == '\\' && p.pos+1 < len(p.src):
			switch p.src[p.pos+1] {
			case '"':
				sb.WriteByte('"')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteString(p.src[p.pos : p.pos+2])
			}
			p.pos += 2
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}

	p.fail(labelTextClose)
	p.pos = start
	return nil, false
}

// identifier rules

func (p *parser) symbolComponent() bool {
	if !p.class(labelSymbolInitial, isSymbolInitial) {
		return false
	}
	p.many(labelSymbolSubsequent, isSymbolSubsequent)
	return true
}

func (p *parser) keywordComponent() bool {
	return p.many1(labelKeywordNamespace, isAlnum)
}

// dotted matches component ('.' component)*
func (p *parser) dotted(component func(p *parser) bool) bool {
	if !component(p) {
		return false
	}
	for p.seq(func(p *parser) bool { return p.lit(".") }, component) {
	}
	return true
}

func (p *parser) symbolNamespace() bool {
	return p.dotted((*parser).symbolComponent)
}

func (p *parser) keywordNamespace() bool {
	return p.dotted((*parser).keywordComponent)
}

// symbolName is a component or a run of dots.
func (p *parser) symbolName() bool {
	if p.symbolComponent() {
		return true
	}
	if !p.lit(".") {
		return false
	}
	for p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
	}
	return true
}

// identifier matches (namespace '/')? name. Once the namespace and divider
// match the name is required.
func (p *parser) identifier(k Kind, namespace func(p *parser) bool) (*Value, bool) {
	start := p.pos
	v := &Value{kind: k}
	if namespace(p) && p.lit("/") {
		v.ns, v.hasNS = p.src[start:p.pos-1], true
	} else {
		p.pos = start
	}

	nameStart := p.pos
	if !p.symbolName() {
		p.pos = start
		return nil, false
	}
	v.s = p.src[nameStart:p.pos]
	return v, true
}

// symbol never yields a bare nil, true or false; those belong to the
// literal rules.
func (p *parser) symbol() (*Value, bool) {
	start := p.pos
	v, ok := p.identifier(KindSymbol, (*parser).symbolNamespace)
	if ok && !v.hasNS && isReservedWord(v.s) {
		p.pos = start
		return nil, false
	}
	return v, ok
}

func isReservedWord(s string) bool {
	return s == "nil" || s == "true" || s == "false"
}

func (p *parser) keyword() (*Value, bool) {
	start := p.pos
	if !p.lit(":") {
		return nil, false
	}
	v, ok := p.identifier(KindKeyword, (*parser).keywordNamespace)
	if !ok {
		p.pos = start
	}
	return v, ok
}

// collection rules

// elements matches open, groups of n values, and closing.
func (p *parser) elements(open, closing string, n int) ([]*Value, bool) {
	start := p.pos
	if !p.lit(open) {
		return nil, false
	}

	p.depth++
	defer func() { p.depth-- }()
	if p.maxDepth >= 0 && p.depth > p.maxDepth {
		p.abort(start, ErrTooDeep, "", nil)
		return nil, false
	}

	p.skip()
	items := make([]*Value, 0, 8)
group:
	for {
		groupStart := p.pos
		for i := 0; i < n; i++ {
			v, ok := p.value()
			if p.err != nil {
				return nil, false
			}
			if !ok {
				p.pos = groupStart
				items = items[:len(items)-i]
				break group
			}
			items = append(items, v)
		}
	}
	p.skip()

	if !p.lit(closing) {
		p.pos = start
		return nil, false
	}
	return items, true
}

func (p *parser) list() (*Value, bool) {
	items, ok := p.elements("(", ")", 1)
	if !ok {
		return nil, false
	}
	return &Value{kind: KindList, items: items}, true
}

func (p *parser) vector() (*Value, bool) {
	items, ok := p.elements("[", "]", 1)
	if !ok {
		return nil, false
	}
	return &Value{kind: KindVector, items: items}, true
}

func (p *parser) set() (*Value, bool) {
	items, ok := p.elements("#{", "}", 1)
	if !ok {
		return nil, false
	}
	return Set(items...), true
}

func (p *parser) mapping() (*Value, bool) {
	items, ok := p.elements("{", "}", 2)
	if !ok {
		return nil, false
	}
	entries := make([]Entry, 0, len(items)/2)
	for i := 0; i+1 < len(items); i += 2 {
		entries = append(entries, Entry{Key: items[i], Value: items[i+1]})
	}
	return Map(entries...), true
}
