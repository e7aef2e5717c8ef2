// Package main is an interactive checker: it reads `value :: type` lines,
// parses the value as JSON, resolves the type expression and reports
// whether the value matches.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/lestrrat-go/strftime"

	"github.com/tanema/pedant/src/check"
	"github.com/tanema/pedant/src/conf"
	"github.com/tanema/pedant/src/object"
	"github.com/tanema/pedant/src/resolve"
	"github.com/tanema/pedant/src/scope"
)

var (
	showVersion bool
	executeStat string
)

func init() {
	flag.BoolVar(&showVersion, "v", false, "show version information")
	flag.StringVar(&executeStat, "e", "", "check a single 'value :: type' line and exit")
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if showVersion {
		printVersion()
		return
	}
	if executeStat != "" {
		if err := checkLine(executeStat); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("ok")
		return
	}
	runREPL()
}

func printVersion() {
	fmt.Fprintf(os.Stderr, "%v\n", conf.FullVersion())
}

func printUsage() {
	printVersion()
	fmt.Fprint(os.Stderr, "\nUsage: pedant [options]\n")
	flag.PrintDefaults()
}

func runREPL() {
	printBanner()
	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for {
		src, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				break
			}
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		if err := checkLine(src); err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintln(os.Stderr, "ok")
		}
	}
}

func printBanner() {
	stamp, err := strftime.Format("%Y-%m-%d %H:%M:%S", time.Now())
	if err != nil {
		stamp = time.Now().String()
	}
	fmt.Fprintf(os.Stderr, "%v (session started %v)\n", conf.FullVersion(), stamp)
	fmt.Fprint(os.Stderr, "Enter `value :: type` to check, ctrl-c to quit.\n")
}

func checkLine(src string) error {
	parts := strings.SplitN(src, "::", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected a line like `[1, 2] :: List[int]`")
	}
	val, err := parseValue(strings.TrimSpace(parts[0]))
	if err != nil {
		return err
	}
	snap := scope.New(nil)
	defn, err := resolve.Resolve(strings.TrimSpace(parts[1]), snap)
	if err != nil {
		return err
	}
	return check.Assert(val, defn, snap, nil, "value")
}

// parseValue reads a JSON literal into the object model: arrays become
// lists, objects become dicts, integral numbers become ints.
func parseValue(src string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid value literal: %w", err)
	}
	return convert(raw)
}

func convert(raw any) (any, error) {
	switch traw := raw.(type) {
	case nil, bool, string:
		return traw, nil
	case json.Number:
		if ival, err := traw.Int64(); err == nil {
			return ival, nil
		}
		return traw.Float64()
	case []any:
		list := &object.List{Items: make([]any, len(traw))}
		for i, item := range traw {
			val, err := convert(item)
			if err != nil {
				return nil, err
			}
			list.Items[i] = val
		}
		return list, nil
	case map[string]any:
		dict := &object.Dict{}
		for key, item := range traw {
			val, err := convert(item)
			if err != nil {
				return nil, err
			}
			dict.Set(key, val)
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported value literal %T", raw)
	}
}
