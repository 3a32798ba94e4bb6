package edn

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	ErrSyntax         = errors.New("syntax error")
	ErrIntegerRange   = errors.New("integer out of range")
	ErrMalformedFloat = errors.New("malformed float")
	ErrTooDeep        = errors.New("nesting too deep")

	ErrEmptyName      = errors.New("empty identifier name")
	ErrEmptyNamespace = errors.New("empty identifier namespace")
	ErrOddMapElements = errors.New("odd number of map elements")
)

// Position locates a byte offset in the source. Line and Col are 1-based;
// Col counts runes.
type Position struct {
	Offset int
	Line   int
	Col    int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d (%d)", p.Line, p.Col, p.Offset)
}

func positionAt(src string, offset int) Position {
	if offset > len(src) {
		offset = len(src)
	}
	p := Position{Offset: offset, Line: 1, Col: 1}
	lineStart := 0
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			p.Line++
			lineStart = i + 1
		}
	}
	p.Col = utf8.RuneCountInString(src[lineStart:offset]) + 1
	return p
}

// ParseError is returned for every failed parse. Err is one of ErrSyntax,
// ErrIntegerRange, ErrMalformedFloat or ErrTooDeep.
type ParseError struct {
	Pos Position
	Err error

	// Expected lists what the grammar would have accepted at Pos. It is only
	// set for syntax errors.
	Expected []string

	// Literal is the offending source text of a numeric failure.
	Literal string

	// Cause is the underlying strconv error of a numeric failure.
	Cause error

	atEOF bool
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("edn: ")
	sb.WriteString(e.Pos.String())
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	if e.Literal != "" {
		sb.WriteString(" ")
		sb.WriteString(fmt.Sprintf("%q", e.Literal))
	}
	if len(e.Expected) > 0 {
		sb.WriteString(": expected ")
		sb.WriteString(listJoin(e.Expected, ", ", "or"))
	}
	return sb.String()
}

func (e *ParseError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// Context renders the source line holding the error with a caret under the
// error column, plus one line of context on either side.
func (e *ParseError) Context(src string) string {
	lines := strings.Split(src, "\n")
	line := e.Pos.Line
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}

	first := line - 1
	if first < 1 {
		first = 1
	}
	last := line + 1
	if last > len(lines) {
		last = len(lines)
	}
	width := len(fmt.Sprint(last))

	var sb strings.Builder
	for n := first; n <= last; n++ {
		fmt.Fprintf(&sb, "%*d | %s\n", width, n, lines[n-1])
		if n != line {
			continue
		}
		// keep tabs so the caret lines up under the same terminal columns
		var pad strings.Builder
		col := 1
		for _, r := range lines[n-1] {
			if col >= e.Pos.Col {
				break
			}
			if r == '\t' {
				pad.WriteRune('\t')
			} else {
				pad.WriteRune(' ')
			}
			col++
		}
		fmt.Fprintf(&sb, "%*s | %s^\n", width, "", pad.String())
	}
	return sb.String()
}

// IsIncomplete reports whether err is a syntax error that ran into the end of
// the input, i.e. more input could still make the parse succeed.
func IsIncomplete(err error) bool {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Err == ErrSyntax && pe.atEOF
}

func sortedExpected(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func listJoin(list []string, sep string, lastSep string) string {
	switch len(list) {
	case 0:
		return ""
	case 1:
		return list[0]
	default:
		return strings.Join(list[:len(list)-1], sep) + " " + lastSep + " " + list[len(list)-1]
	}
}
