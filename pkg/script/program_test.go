package script

import (
	"os"
	"path/filepath"
	"testing"

	"memo.elv.sh/pkg/prog/progtest"
	"memo.elv.sh/pkg/testutil"
)

var (
	Test     = progtest.Test
	ThatMemo = progtest.ThatMemo
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(testutil.Dedent(content)), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProgram(t *testing.T) {
	dir := t.TempDir()
	state := writeFile(t, dir, "state.yaml", `
		count: 1
		tags: [a, b]
		`)
	fields := writeFile(t, dir, "fields.yaml", `
		doubled:
		  scale: {path: count, by: 2}
		`)
	script := writeFile(t, dir, "script", `
		get doubled
		set doubled 42
		get count
		`)
	badScript := writeFile(t, dir, "bad", `
		frob
		get doubled
		`)
	collision := writeFile(t, dir, "collision.yaml", "doubled: 0\n")
	badFields := writeFile(t, dir, "bad-fields.yaml", "doubled: {}\n")
	notMap := writeFile(t, dir, "list.yaml", "[1, 2]\n")

	Test(t, Program{},
		ThatMemo("-state", state, "-fields", fields, script).
			WritesStdout("(num 2)\n(num 21)\n"),
		ThatMemo("-state", state, "-fields", fields).
			WithStdin("get doubled\n").
			WritesStdout("(num 2)\n"),
		ThatMemo("-state", state, "-fields", fields).
			OnTTY().
			WithStdin("get doubled\n").
			WritesStdout("memo> (num 2)\nmemo> \n"),
		ThatMemo("-state", state, "-fields", fields).
			OnTTY().
			WithStdin("get nope\n").
			ExitsWith(2).
			WritesStdout("memo> memo> \n").
			WritesStderrContaining("line 1: "),
		ThatMemo("-state", state, "-fields", fields, "-json").
			WithStdin("get tags\n").
			WritesStdout("[\"a\",\"b\"]\n"),
		ThatMemo("-state", state, "-fields", fields, "-purity").
			WithStdin("get doubled\n").
			WritesStdout("(num 2)\n"),
		ThatMemo("-fields", fields).
			WithStdin("get doubled\n").
			ExitsWith(2).
			WritesStderr("line 1: read count: no such key: count\n"),
		ThatMemo("-state", state).
			WithStdin("get count\n").
			WritesStdout("(num 1)\n"),
		ThatMemo("-state", state, "-fields", fields, badScript).
			ExitsWith(2).
			WritesStdout("(num 2)\n").
			WritesStderr("line 1: unknown command \"frob\"\n"),

		ThatMemo(script, script).
			ExitsWith(2).
			WritesStderrContaining("at most one script may be given\nUsage:"),
		ThatMemo("-state", filepath.Join(dir, "nope.yaml")).
			ExitsWith(2).
			WritesStderrContaining("no such file or directory"),
		ThatMemo(filepath.Join(dir, "nope")).
			ExitsWith(2).
			WritesStderrContaining("no such file or directory"),
		ThatMemo("-state", collision, "-fields", fields).
			ExitsWith(2).
			WritesStderr("computed field \"doubled\" collides with an existing field\n"),
		ThatMemo("-fields", badFields).
			ExitsWith(2).
			WritesStderrContaining("line 1: field \"doubled\": must have exactly one of"),
		ThatMemo("-state", notMap).
			ExitsWith(2).
			WritesStderr("initial data must be a map\n"),
	)
}
