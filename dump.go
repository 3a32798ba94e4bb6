package edn

import (
	"strconv"
	"strings"
)

// String renders v as a kind-tagged s-expression, for example
// (vector (integer 1) (keyword :a/b)). It is a debugging aid, not EDN.
func (v *Value) String() string {
	var sb strings.Builder
	v.appendToBuilder(&sb)
	return sb.String()
}

func (v *Value) appendToBuilder(sb *strings.Builder) {
	k := v.Kind()
	if k == KindNil {
		sb.WriteString("nil")
		return
	}

	sb.WriteRune('(')
	sb.WriteString(k.String())

	switch k {
	case KindBoolean:
		sb.WriteRune(' ')
		sb.WriteString(strconv.FormatBool(v.b))
	case KindInteger:
		sb.WriteRune(' ')
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindBigInteger:
		sb.WriteRune(' ')
		sb.WriteString(v.big.String())
	case KindFloat:
		sb.WriteRune(' ')
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindText:
		sb.WriteRune(' ')
		sb.WriteString(strconv.Quote(v.s))
	case KindSymbol, KindKeyword:
		sb.WriteRune(' ')
		if k == KindKeyword {
			sb.WriteRune(':')
		}
		if v.hasNS {
			sb.WriteString(v.ns)
			sb.WriteRune('/')
		}
		sb.WriteString(v.s)
	case KindList, KindVector, KindSet:
		for _, c := range v.items {
			sb.WriteRune(' ')
			c.appendToBuilder(sb)
		}
	case KindMap:
		for _, e := range v.ordered {
			sb.WriteString(" (")
			e.Key.appendToBuilder(sb)
			sb.WriteRune(' ')
			e.Value.appendToBuilder(sb)
			sb.WriteRune(')')
		}
	}

	sb.WriteRune(')')
}
