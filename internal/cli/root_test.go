package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contactSpecs = `
package test

domain: email: {
	className: "email"
	validators: [{type: "email"}]
}

entity: contact: fields: {
	name:  {fieldType: "string", required: true}
	email: {fieldType: "string", domain: "email"}
	tags:  {type: "list", entity: "tag"}
}

entity: tag: fields: {
	label: {fieldType: "string", required: true}
}
`

// writeFiles writes name -> content pairs under a fresh temp directory.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "formstate", cmd.Use)
	assert.Contains(t, cmd.Long, "FORMSTATE_")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "validate", "put", "get", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestCompileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)

	outputFlag := compileCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestPutCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	putCmd, _, err := cmd.Find([]string{"put"})
	require.NoError(t, err)

	for _, name := range []string{"entity", "key", "data", "db", "force"} {
		assert.NotNil(t, putCmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "false", putCmd.Flags().Lookup("force").DefValue)
}

func TestGetCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	getCmd, _, err := cmd.Find([]string{"get"})
	require.NoError(t, err)

	historyFlag := getCmd.Flags().Lookup("history")
	require.NotNil(t, historyFlag)
	assert.Equal(t, "false", historyFlag.DefValue)
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FORMSTATE_CONFIG", "")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "xml", "compile", t.TempDir()})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootCommand_SpecsDirFromConfig(t *testing.T) {
	specsDir := writeFiles(t, map[string]string{"contact.cue": contactSpecs})
	cfgDir := writeFiles(t, map[string]string{
		"config.yaml": "specs:\n  dir: " + specsDir + "\n",
	})
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FORMSTATE_CONFIG", filepath.Join(cfgDir, "config.yaml"))

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"compile"})
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "✓ Compiled 2 entity(s), 1 domain(s)")
}

func TestSpecsDirFallback(t *testing.T) {
	opts := &RootOptions{}
	assert.Equal(t, "specs", opts.specsDir(nil))
	assert.Equal(t, "given", opts.specsDir([]string{"given"}))

	opts.Config.Specs.Dir = "configured"
	assert.Equal(t, "configured", opts.specsDir(nil))
}
