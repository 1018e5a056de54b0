//go:build !windows

package progtest

import (
	"os"
	"strings"
	"testing"

	"github.com/creack/pty"
)

// makeTTYStdin returns the slave end of a new pty, with content already
// queued as input. An EOF follows the content, so that the program sees
// exactly the given text.
func makeTTYStdin(t *testing.T, content string) *os.File {
	t.Helper()
	master, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty.Open: %v", err)
	}
	t.Cleanup(func() { master.Close() })
	// In canonical mode, ^D flushes a partial line and ends input at the
	// start of a line.
	input := content + "\x04"
	if content != "" && !strings.HasSuffix(content, "\n") {
		input += "\x04"
	}
	if _, err := master.WriteString(input); err != nil {
		t.Fatal(err)
	}
	return tty
}
