// Command edn reads EDN literals and prints the parsed value tree.
//
//	edn [-depth N] [-rule NAME]            interactive reader
//	edn [-depth N] [-rule NAME] FILE...    parse each file ("-" is stdin)
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alttpo/edn"
	"github.com/peterh/liner"
)

const (
	historyFile = ".edn_history"
	promptMain  = "edn> "
	promptCont  = "...  "
)

const banner = "EDN reader\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit."

type parseFunc func(p edn.Parser, src string) (*edn.Value, error)

var rules = map[string]parseFunc{
	"value":   edn.Parser.ParseValue,
	"nil":     edn.Parser.ParseNil,
	"boolean": edn.Parser.ParseBoolean,
	"integer": edn.Parser.ParseInteger,
	"bigint":  edn.Parser.ParseBigInteger,
	"float":   edn.Parser.ParseFloat,
	"text":    edn.Parser.ParseText,
	"symbol":  edn.Parser.ParseSymbol,
	"keyword": edn.Parser.ParseKeyword,
	"list":    edn.Parser.ParseList,
	"vector":  edn.Parser.ParseVector,
	"map":     edn.Parser.ParseMap,
	"set":     edn.Parser.ParseSet,
}

func ruleNames() string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func main() {
	depth := flag.Int("depth", 0, "maximum collection nesting; 0 uses the default, negative disables the limit")
	ruleName := flag.String("rule", "value", "grammar rule to parse with: "+ruleNames())
	flag.Parse()

	fn, ok := rules[*ruleName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown rule %q; want one of %s\n", *ruleName, ruleNames())
		os.Exit(2)
	}
	r := reader{parser: edn.Parser{MaxDepth: *depth}, parse: fn}

	if flag.NArg() > 0 {
		os.Exit(r.files(flag.Args(), os.Stdout, os.Stderr))
	}
	os.Exit(r.repl())
}

type reader struct {
	parser edn.Parser
	parse  parseFunc
}

func (r reader) run(src string) (*edn.Value, error) {
	return r.parse(r.parser, src)
}

// report prints a parse error, with a caret snippet when it has a position.
func report(w io.Writer, name string, err error, src string) {
	var pe *edn.ParseError
	if name != "" {
		name += ": "
	}
	fmt.Fprintln(w, red(name+err.Error()))
	if errors.As(err, &pe) {
		fmt.Fprint(w, pe.Context(src))
	}
}

func (r reader) files(paths []string, stdout, stderr io.Writer) int {
	ret := 0
	for _, path := range paths {
		var b []byte
		var err error
		if path == "-" {
			b, err = io.ReadAll(os.Stdin)
		} else {
			b, err = os.ReadFile(path)
		}
		if err != nil {
			fmt.Fprintln(stderr, red(err.Error()))
			ret = 1
			continue
		}

		src := string(b)
		v, err := r.run(src)
		if err != nil {
			report(stderr, path, err, src)
			ret = 1
			continue
		}
		fmt.Fprintln(stdout, v)
	}
	return ret
}

type prompter interface {
	Prompt(prompt string) (string, error)
}

// readValue keeps prompting while the accumulated input is an incomplete
// literal. ok is false once the input stream ends.
func (r reader) readValue(ln prompter) (src string, ok bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src = b.String()
		if strings.TrimSpace(src) == "" {
			return src, true
		}
		if _, perr := r.run(src); !edn.IsIncomplete(perr) {
			return src, true
		}
	}
}

func (r reader) repl() int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := r.readValue(ln)
		if !ok {
			fmt.Println()
			return 0
		}

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" {
			return 0
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		v, err := r.run(src)
		if err != nil {
			report(os.Stderr, "", err, src)
			continue
		}
		fmt.Println(v)
	}
}
