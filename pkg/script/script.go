// Package script implements the memo program, which loads base data and
// computed field definitions from YAML files and runs a line-oriented script
// against the resulting object.
//
// Each line of a script is one command:
//
//	get NAME           print a field
//	set NAME VALUE     assign to a field; VALUE is parsed as YAML
//	base PATH VALUE    write to the base data directly
//	append PATH VALUE  append to a list in the base data
//	delete PATH        delete from the base data
//	dump               print the base data with all computed fields
//	stats              print the statistics of each computed field
//	deps NAME          print the paths a computed field depends on
//
// Empty lines and lines starting with # are ignored.
package script

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"memo.elv.sh/pkg/computed"
	"memo.elv.sh/pkg/logutil"
	"memo.elv.sh/pkg/state"
	"memo.elv.sh/pkg/vals"
)

var logger = logutil.GetLogger("[script] ")

// Options controls how a script is run.
type Options struct {
	// Show values in JSON instead of the default notation.
	JSON bool
	// Written to the output before reading each line, if not empty.
	Prompt string
}

var (
	errMissingArg   = errors.New("missing argument")
	errMissingValue = errors.New("missing value")
	errTooManyArgs  = errors.New("too many arguments")
)

// UnknownCommandError is returned for a line with an unknown command.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

type session struct {
	obj  *computed.Object
	out  io.Writer
	opts Options
}

var commands = map[string]func(s *session, arg string) error{
	"get":    (*session).get,
	"set":    (*session).set,
	"base":   (*session).base,
	"append": (*session).append,
	"delete": (*session).delete,
	"dump":   (*session).dump,
	"stats":  (*session).stats,
	"deps":   (*session).deps,
}

// Run runs the script read from r against o. Output is written to out. An
// error on a line is written to errOut, and the following lines are still
// run. It returns the number of lines that failed.
func Run(o *computed.Object, r io.Reader, out, errOut io.Writer, opts Options) int {
	s := &session{o, out, opts}
	failed := 0
	scanner := bufio.NewScanner(r)
	for lineno := 1; ; lineno++ {
		if opts.Prompt != "" {
			io.WriteString(out, opts.Prompt)
		}
		if !scanner.Scan() {
			break
		}
		if err := s.runLine(scanner.Text()); err != nil {
			fmt.Fprintf(errOut, "line %d: %v\n", lineno, err)
			failed++
		}
	}
	if opts.Prompt != "" {
		io.WriteString(out, "\n")
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(errOut, err)
		failed++
	}
	return failed
}

func (s *session) runLine(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	name, arg := cutWord(line)
	cmd, ok := commands[name]
	if !ok {
		return &UnknownCommandError{name}
	}
	logger.Printf("running %s", line)
	return cmd(s, arg)
}

func (s *session) get(arg string) error {
	name, err := oneWord(arg)
	if err != nil {
		return err
	}
	v, err := s.obj.Get(name)
	if err != nil {
		return err
	}
	return s.print(v)
}

func (s *session) set(arg string) error {
	name, v, err := wordAndValue(arg)
	if err != nil {
		return err
	}
	return s.obj.Set(name, v)
}

func (s *session) base(arg string) error {
	p, v, err := wordAndValue(arg)
	if err != nil {
		return err
	}
	return s.obj.Tree().Set(state.ParsePath(p), v)
}

func (s *session) append(arg string) error {
	p, v, err := wordAndValue(arg)
	if err != nil {
		return err
	}
	return s.obj.Tree().Append(state.ParsePath(p), v)
}

func (s *session) delete(arg string) error {
	p, err := oneWord(arg)
	if err != nil {
		return err
	}
	return s.obj.Tree().Delete(state.ParsePath(p))
}

func (s *session) dump(arg string) error {
	if arg != "" {
		return errTooManyArgs
	}
	all, err := s.obj.All()
	if err != nil {
		return err
	}
	v, err := vals.FromGo(all)
	if err != nil {
		return err
	}
	return s.print(v)
}

func (s *session) stats(arg string) error {
	if arg != "" {
		return errTooManyArgs
	}
	for _, name := range s.obj.Fields() {
		st, _ := s.obj.Stats(name)
		fmt.Fprintf(s.out, "%s: %d evaluations, %d hits, %d failures\n",
			name, st.Evaluations, st.Hits, st.Failures)
	}
	return nil
}

func (s *session) deps(arg string) error {
	name, err := oneWord(arg)
	if err != nil {
		return err
	}
	if !s.obj.IsComputed(name) {
		return fmt.Errorf("%q is not a computed field", name)
	}
	for _, p := range s.obj.Dependencies(name) {
		if len(p) == 0 {
			fmt.Fprintln(s.out, ".")
		} else {
			fmt.Fprintln(s.out, p)
		}
	}
	return nil
}

func (s *session) print(v any) error {
	if !s.opts.JSON {
		_, err := fmt.Fprintln(s.out, vals.Repr(v))
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.out, "%s\n", b)
	return err
}

// cutWord splits off the first space-separated word of s.
func cutWord(s string) (word, rest string) {
	word, rest, _ = strings.Cut(s, " ")
	return word, strings.TrimSpace(rest)
}

func oneWord(arg string) (string, error) {
	word, rest := cutWord(arg)
	if word == "" {
		return "", errMissingArg
	}
	if rest != "" {
		return "", errTooManyArgs
	}
	return word, nil
}

func wordAndValue(arg string) (string, any, error) {
	word, rest := cutWord(arg)
	if word == "" {
		return "", nil, errMissingArg
	}
	if rest == "" {
		return "", nil, errMissingValue
	}
	v, err := ParseValue(rest)
	if err != nil {
		return "", nil, err
	}
	return word, v, nil
}

// ParseValue parses a value written in YAML flow style, such as 42, foo,
// [1, 2] or {a: 1}.
func ParseValue(text string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return v, nil
}
