package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body><ul><li><b>A</b></li><li><b>B</b></li></ul></body></html>`

func writeJobs(t *testing.T, jobs string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list.html"), []byte(page), 0o644))
	path := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("dir: %s\n%s", dir, jobs)), 0o644))
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestRunOffline(t *testing.T) {
	path := writeJobs(t, `
jobs:
  - operation: items
    url: http://shop.test/list
    file: "{{dir}}/list.html"
    extract:
      into: products
      items:
        names: //li/b
  - operation: output
    from: products
`)
	out := execute(t, "-n", "-f", "json", path)
	assert.Equal(t, "[\n    {\n        \"names\": [\n            \"A\",\n            \"B\"\n        ]\n    }\n]\n", out)

	out = execute(t, "-n", path)
	assert.Equal(t, "names-0,names-1\nA,B\n", out)
}

func TestRunOutputFile(t *testing.T) {
	path := writeJobs(t, `
jobs:
  - operation: items
    file: "{{dir}}/list.html"
    extract: {into: products, items: {first: "//li[1]/b"}}
  - {operation: output, from: products}
`)
	dest := filepath.Join(filepath.Dir(path), "out.csv")
	out := execute(t, "-n", "-o", dest, path)
	assert.Empty(t, out)
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "first\nA\n", string(b))
}

func TestRunErrorsArePrinted(t *testing.T) {
	path := writeJobs(t, `
jobs:
  - operation: message
    message: before
  - operation: crawl
`)
	out := execute(t, path)
	assert.Equal(t, "before\nError: job crawl: configuration error: unknown operation crawl\n", out)

	out = execute(t, "-f", "xml", path)
	assert.Contains(t, out, "Error: configuration error: invalid output format xml")

	out = execute(t, "--fetcher", "telnet", path)
	assert.Contains(t, out, "unknown fetcher telnet")

	out = execute(t, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Contains(t, out, "Error: configuration error")
}

func TestVersion(t *testing.T) {
	out := execute(t, "version")
	assert.Contains(t, out, "Version:")
}
