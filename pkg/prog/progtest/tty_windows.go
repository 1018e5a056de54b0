package progtest

import (
	"os"
	"testing"
)

func makeTTYStdin(t *testing.T, content string) *os.File {
	t.Skip("no pty on Windows")
	return nil
}
