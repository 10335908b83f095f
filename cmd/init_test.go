package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func executeInit(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	cmd.AddCommand(newInitCmd())

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"init"}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func readWrittenConfig(t *testing.T, path string) map[string]any {
	t.Helper()

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	var config map[string]any
	require.NoError(t, yaml.Unmarshal(contents, &config))

	return config
}

func section(t *testing.T, config map[string]any, name string) map[string]any {
	t.Helper()

	value, ok := config[name].(map[string]any)
	require.True(t, ok, "missing %q section", name)

	return value
}

func TestInitCmd_WritesDeobfDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := executeInit(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+configFileName)

	config := readWrittenConfig(t, configFileName)

	assert.Equal(t, defaultExtension, section(t, config, "scan")["extension"])
	assert.Equal(t, defaultMemberRefs, section(t, config, "rewrite")["member_refs"])
	assert.Equal(t, defaultRunParallel, section(t, config, "run")["parallel"])
	assert.Equal(t, defaultLogFilename, section(t, config, "log")["filename"])
}

func TestInitCmd_KeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	targetPath := filepath.Join(dir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("scan:\n  extension: .jasmin\n"), 0o644))

	_, err := executeInit(t)
	require.Error(t, err)

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.Equal(t, "scan:\n  extension: .jasmin\n", string(contents))
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	targetPath := filepath.Join(dir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("stale: true\n"), 0o644))

	_, err := executeInit(t, "--force")
	require.NoError(t, err)

	config := readWrittenConfig(t, targetPath)
	assert.NotContains(t, config, "stale")
	assert.Equal(t, defaultExtension, section(t, config, "scan")["extension"])
}
