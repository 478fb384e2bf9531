// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/featurebasedb/indexedlist/cmd"
	"github.com/featurebasedb/indexedlist/testhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const records = `{"id":1,"name":"ada","team":"core","age":36}
{"id":2,"name":"bob","team":"core","age":25}
{"id":3,"name":"cy","team":"web","age":41}
`

const config = `
lock-timeout = "1s"

[metric]
service = "nop"

[[index]]
name = "id"
kind = "unique"
key = "$.id"

[[index]]
name = "team"
kind = "hash"
key = "$.team"

[[index]]
name = "by-age"
kind = "sorted-value"
key = "$.team"
order-by = "$.age"
`

// ExecNewRootCommand executes the root command with the given arguments
// and returns its output and error.
func ExecNewRootCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rc := cmd.NewRootCommand(strings.NewReader(""), buf, buf)
	rc.SetArgs(args)
	err := rc.Execute()
	return buf.String(), err
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir, err := testhook.TempDir(t, "cmd")
	require.NoError(t, err)
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	return dir
}

func TestRootCommand(t *testing.T) {
	out, err := ExecNewRootCommand(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "Available Commands:")
	for _, sub := range []string{"generate-config", "inspect", "query"} {
		assert.Contains(t, out, sub)
	}
}

func TestInspectHelp(t *testing.T) {
	out, err := ExecNewRootCommand(t, "inspect", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "indexedlist inspect <records>")
	assert.Contains(t, out, "--metric.service")
}

func TestGenerateConfig(t *testing.T) {
	out, err := ExecNewRootCommand(t, "generate-config")
	require.NoError(t, err)
	assert.Contains(t, out, "[[index]]")
	assert.Contains(t, out, `kind = "unique"`)
}

func TestInspect(t *testing.T) {
	dir := writeFiles(t, map[string]string{"people.ndjson": records, "indexedlist.toml": config})
	out, err := ExecNewRootCommand(t, "inspect",
		"--config", filepath.Join(dir, "indexedlist.toml"),
		filepath.Join(dir, "people.ndjson"))
	require.NoError(t, err)
	assert.Contains(t, out, "by-age")
	assert.Contains(t, out, "sorted-value")
	assert.Regexp(t, `\|\s*team\s*\|\s*hash\s*\|\s*2\s*\|\s*3\s*\|`, out)
}

func TestInspect_DefaultIndexes(t *testing.T) {
	dir := writeFiles(t, map[string]string{"people.ndjson": records})
	out, err := ExecNewRootCommand(t, "inspect", filepath.Join(dir, "people.ndjson"))
	require.NoError(t, err)
	assert.Regexp(t, `\|\s*id\s*\|\s*unique\s*\|\s*3\s*\|\s*3\s*\|`, out)
}

func TestQuery(t *testing.T) {
	dir := writeFiles(t, map[string]string{"people.ndjson": records, "indexedlist.toml": config})
	out, err := ExecNewRootCommand(t, "query",
		"-c", filepath.Join(dir, "indexedlist.toml"),
		"--index", "by-age", "--key", "core", "--min",
		filepath.Join(dir, "people.ndjson"))
	require.NoError(t, err)
	assert.Equal(t, `{"age":25,"id":2,"name":"bob","team":"core"}`+"\n", out)
}

func TestQuery_RequiresIndex(t *testing.T) {
	dir := writeFiles(t, map[string]string{"people.ndjson": records})
	_, err := ExecNewRootCommand(t, "query", "--key", "1", filepath.Join(dir, "people.ndjson"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"index" not set`)
}

func TestConfig_InvalidOption(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"people.ndjson":    records,
		"indexedlist.toml": "colour = \"blue\"\n",
	})
	_, err := ExecNewRootCommand(t, "inspect",
		"--config", filepath.Join(dir, "indexedlist.toml"),
		filepath.Join(dir, "people.ndjson"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid option in configuration file: colour")
}

func TestConfig_Env(t *testing.T) {
	dir := writeFiles(t, map[string]string{"people.ndjson": records})
	t.Setenv("INDEXEDLIST_METRIC_SERVICE", "carrier-pigeon")
	_, err := ExecNewRootCommand(t, "inspect", filepath.Join(dir, "people.ndjson"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown metric service "carrier-pigeon"`)
}

func TestDryRun(t *testing.T) {
	_, err := ExecNewRootCommand(t, "generate-config", "--dry-run")
	require.Error(t, err)
	assert.Equal(t, "dry run", err.Error())
}

func TestConfig_LogLevel(t *testing.T) {
	dir := writeFiles(t, map[string]string{"people.ndjson": records})
	t.Setenv("INDEXEDLIST_LOG_LEVEL", "chatty")
	_, err := ExecNewRootCommand(t, "inspect", filepath.Join(dir, "people.ndjson"))
	require.Error(t, err)
	assert.Equal(t, `InvalidConfig: log-level: unknown log level "chatty"`, cmd.ErrorMessage(err))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "dry run", cmd.ErrorMessage(fmt.Errorf("dry run")))
}
