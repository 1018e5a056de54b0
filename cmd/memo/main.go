// Memo runs scripts against base data augmented with memoized computed
// fields. See package memo.elv.sh/pkg/script for the script language.
package main

import (
	"os"

	"memo.elv.sh/pkg/prog"
	"memo.elv.sh/pkg/script"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args, script.Program{}))
}
