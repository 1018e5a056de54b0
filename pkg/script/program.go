package script

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"memo.elv.sh/pkg/computed"
	"memo.elv.sh/pkg/prog"
)

// Prompt is shown before each line when the script is read from a terminal.
const Prompt = "memo> "

// Program is the memo program.
type Program struct{}

// Run loads the base data from the -state file and the computed fields from
// the -fields file, and runs the script in the file named by the only
// argument, or from stdin if there is no argument. Either file may be
// omitted. It fails with exit status 2 if any line of the script failed.
func (Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if len(args) > 1 {
		return prog.BadUsage("at most one script may be given")
	}
	init, err := loadState(f.State)
	if err != nil {
		return err
	}
	defs, err := loadFields(f.Fields)
	if err != nil {
		return err
	}
	var opts []computed.Option
	if f.Purity {
		opts = append(opts, computed.WithPurityCheck())
	}
	o, err := computed.NewOrdered(init, defs, opts...)
	if err != nil {
		return err
	}

	in := fds[0]
	scriptOpts := Options{JSON: f.JSON}
	if len(args) == 1 {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	} else if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		scriptOpts.Prompt = Prompt
	}
	if Run(o, in, fds[1], fds[2], scriptOpts) > 0 {
		return prog.Exit(2)
	}
	return nil
}

func loadState(name string) (any, error) {
	if name == "" {
		return nil, nil
	}
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	var v any
	if err := yaml.Unmarshal(src, &v); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func loadFields(name string) ([]computed.Named, error) {
	if name == "" {
		return nil, nil
	}
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	defs, err := ParseFields(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return defs, nil
}
