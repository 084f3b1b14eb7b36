package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-collada/engine/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `<COLLADA>
  <asset><title>Box</title><up_axis>Z_UP</up_axis></asset>
  <library_visual_scenes><visual_scene id="s">
    <node id="box"><instance_geometry url="#g"/></node>
  </visual_scene></library_visual_scenes>
  <library_geometries><geometry id="g"><mesh/></geometry></library_geometries>
</COLLADA>`

// writeModels writes a valid and a malformed document into a temp directory and returns it
// with a trailing separator.
func writeModels(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "box.dae"), []byte(testDocument), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.dae"), []byte("<COLLADA>"), 0o644))
	return dir + string(filepath.Separator)
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValidateCmd(t *testing.T) {
	dir := writeModels(t)

	out, _, err := runCLI(t, "validate", "--file-path", dir, "box.dae")
	require.NoError(t, err)
	assert.Contains(t, out, "ok   box.dae")

	out, stderr, err := runCLI(t, "validate", "--file-path", dir, "box.dae", "bad.dae")
	assert.Error(t, err)
	assert.Contains(t, out, "ok   box.dae")
	assert.Contains(t, out, "FAIL bad.dae")
	assert.Contains(t, stderr, "[ERROR]")

	_, stderr, err = runCLI(t, "validate", "--log-level", "silent", "--file-path", dir, "bad.dae")
	assert.Error(t, err)
	assert.Empty(t, stderr)
}

func TestInspectCmd(t *testing.T) {
	dir := writeModels(t)

	out, _, err := runCLI(t, "inspect", "--file-path", dir, "box.dae")
	require.NoError(t, err)
	assert.Contains(t, out, "title:     Box")
	assert.Contains(t, out, "up axis:   Z_UP")
	assert.Contains(t, out, "meshes:    1")
	assert.Contains(t, out, "- box [g]")

	out, _, err = runCLI(t, "inspect", "--json", "--file-path", dir, "box.dae")
	require.NoError(t, err)
	assert.Contains(t, out, `"upAxis"`)
	assert.Contains(t, out, `"Z_UP"`)
}

func TestQueryCmd(t *testing.T) {
	dir := writeModels(t)

	out, _, err := runCLI(t, "query", "--file-path", dir, "box.dae", "$.root.children[*].id")
	require.NoError(t, err)
	assert.Equal(t, "\"box\"\n", out)

	_, _, err = runCLI(t, "query", "--file-path", dir, "box.dae")
	assert.Error(t, err)
}

func TestIndexCmd(t *testing.T) {
	dir := writeModels(t)
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	_, _, err := runCLI(t, "index", "--file-path", dir, "box.dae")
	assert.ErrorContains(t, err, "no catalog configured")

	out, _, err := runCLI(t, "index", "--catalog", dbPath, "--file-path", dir, "box.dae")
	require.NoError(t, err)
	assert.Contains(t, out, "indexed box.dae")
	assert.Contains(t, out, "1 documents in "+dbPath)

	cat, err := catalog.Open(dbPath)
	require.NoError(t, err)
	defer cat.Close()
	urls, err := cat.FindNode("box")
	require.NoError(t, err)
	assert.Equal(t, []string{"box.dae"}, urls)
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("defaults", func(t *testing.T) {
		cfg := defaultConfig()
		assert.Equal(t, "/", cfg.FilePath)
		assert.Equal(t, 4, cfg.Workers)
		assert.Equal(t, LogLevelWarn, cfg.LogLevel)
		assert.NoError(t, cfg.validate())
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(dir, "ok.toml")
		require.NoError(t, os.WriteFile(path, []byte("file_path = \"/models/\"\nworkers = 8\nlog_level = \"error\"\n"), 0o644))

		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/models/", cfg.FilePath)
		assert.Equal(t, 8, cfg.Workers)
		assert.Equal(t, LogLevelError, cfg.LogLevel)
		assert.Empty(t, cfg.Catalog)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		path := filepath.Join(dir, "unknown.toml")
		require.NoError(t, os.WriteFile(path, []byte("colour = \"red\"\n"), 0o644))
		_, err := loadConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.toml")
		require.NoError(t, os.WriteFile(path, []byte("log_level = \"debug\"\n"), 0o644))
		_, err := loadConfig(path)
		assert.ErrorContains(t, err, "log_level")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(dir, "none.toml"))
		assert.Error(t, err)
	})

	t.Run("flags override the file", func(t *testing.T) {
		models := writeModels(t)
		path := filepath.Join(dir, "flags.toml")
		require.NoError(t, os.WriteFile(path, []byte("file_path = \"/nowhere/\"\n"), 0o644))

		out, _, err := runCLI(t, "validate", "--config", path, "--file-path", models, "box.dae")
		require.NoError(t, err)
		assert.Contains(t, out, "ok   box.dae")
	})
}

func TestLevelWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := config{LogLevel: LogLevelError}.newLogger(&buf)
	logger.Printf("[WARN] dropped")
	logger.Printf("[ERROR] kept")
	assert.Equal(t, "[ERROR] kept\n", buf.String())
}

func TestProfileFlag(t *testing.T) {
	dir := writeModels(t)

	out, stderr, err := runCLI(t, "validate", "--profile", "--log-level", "silent", "--file-path", dir, "box.dae", "bad.dae")
	assert.Error(t, err)
	assert.Contains(t, out, "ok   box.dae")
	assert.Contains(t, out, "FAIL bad.dae")
	assert.Contains(t, stderr, "[Profiler] 2 loads (1 failed)")
}
