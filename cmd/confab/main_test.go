package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// testCorpus is long enough for word chains of order 1 and character
// chains of order 3 to produce stable output.
const testCorpus = `The fox runs over the field. The dog sleeps by the fire.
A bird sings in the old tree. The fox watches the bird. The field rests
under the open sky. The dog dreams of the chase. A cold wind moves the
tree. The fire burns low in the night.`

// runCommand executes a fresh root command with the given args and returns
// what it wrote to stdout and stderr.
func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err = root.Execute()
	return out.String(), errOut.String(), err
}

func writeCorpus(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write corpus file: %v", err)
	}
	return path
}
