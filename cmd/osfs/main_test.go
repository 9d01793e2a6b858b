package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliFixture struct {
	image string
}

func newCLIFixture(t *testing.T) cliFixture {
	return cliFixture{image: filepath.Join(t.TempDir(), "test.img")}
}

func (f cliFixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	stdout := bytes.Buffer{}
	app := newApp(strings.NewReader(stdin), &stdout)
	fullArgs := append([]string{"osfs", "--image", f.image, "--geometry", "minimal"}, args...)
	err := app.Run(fullArgs)
	return stdout.String(), err
}

func TestCLI__RequiresFormat(t *testing.T) {
	fixture := newCLIFixture(t)
	_, err := fixture.run(t, "", "ls")
	assert.ErrorIs(t, err, osfs.ErrInvalidArgument)
}

func TestCLI__CreateAndCat(t *testing.T) {
	fixture := newCLIFixture(t)

	_, err := fixture.run(t, "", "format")
	require.NoError(t, err)
	_, err = fixture.run(t, "hello\nworld\n\nignored\n", "create", "greeting")
	require.NoError(t, err)

	output, err := fixture.run(t, "", "cat", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", output)
}

func TestCLI__WrongArgumentCount(t *testing.T) {
	fixture := newCLIFixture(t)
	_, err := fixture.run(t, "", "format")
	require.NoError(t, err)

	_, err = fixture.run(t, "", "cp", "only-one")
	assert.ErrorIs(t, err, osfs.ErrInvalidArgument)
}

func TestCLI__UnknownGeometry(t *testing.T) {
	stdout := bytes.Buffer{}
	app := newApp(strings.NewReader(""), &stdout)
	err := app.Run([]string{"osfs", "--geometry", "floppy", "format"})
	assert.ErrorIs(t, err, osfs.ErrNotFound)
}

func TestCLI__ExportImport(t *testing.T) {
	fixture := newCLIFixture(t)
	snapshot := filepath.Join(t.TempDir(), "snapshot.gz")

	_, err := fixture.run(t, "", "format")
	require.NoError(t, err)
	_, err = fixture.run(t, "kept\n\n", "create", "a")
	require.NoError(t, err)
	_, err = fixture.run(t, "", "export", snapshot)
	require.NoError(t, err)

	_, err = fixture.run(t, "", "rm", "a")
	require.NoError(t, err)
	_, err = fixture.run(t, "", "import", snapshot)
	require.NoError(t, err)

	output, err := fixture.run(t, "", "cat", "a")
	require.NoError(t, err)
	assert.Equal(t, "kept\n", output)
}

func TestShell__Session(t *testing.T) {
	fixture := newCLIFixture(t)
	script := strings.Join([]string{
		"mkdir docs",
		"cd docs",
		"create note",
		"line one",
		"",
		"pwd",
		"bogus",
		"cat note",
		"quit",
	}, "\n") + "\n"

	output, err := fixture.run(t, script, "shell")
	require.NoError(t, err)

	assert.Contains(t, output, "osfs:/docs> ")
	assert.Contains(t, output, "/docs\n")
	assert.Contains(t, output, "bogus: ")
	assert.Contains(t, output, "line one\n")
}
