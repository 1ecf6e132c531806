package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

const rangeJSON = `{"start":[2020,1,1],"endInclusive":[2020,12,31]}`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("SERDE_CONFIG_FILE_PATH", "")
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConvertStdin(t *testing.T) {
	out, _, err := run(t, rangeJSON, "convert", "--from", "json", "--to", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "start: [2020, 1, 1]\nendInclusive: [2020, 12, 31]\n", out)

	back, _, err := run(t, out, "convert", "-f", "yml", "-t", "json")
	require.NoError(t, err)
	assert.Equal(t, rangeJSON, back)
}

func TestConvertFileAndConfig(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "range.json")
	require.NoError(t, os.WriteFile(in, []byte(rangeJSON), 0o600))
	cfg := filepath.Join(dir, "serde.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("mapper:\n  default-content-type: yaml\nlog:\n  level: error\n"), 0o600))

	out, _, err := run(t, "", "convert", "--config", cfg, "--in", in)
	require.NoError(t, err)
	assert.Equal(t, "start: [2020, 1, 1]\nendInclusive: [2020, 12, 31]\n", out)

	_, _, err = run(t, "", "convert", "--in", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, _, err = run(t, "", "formats", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestConvertErrors(t *testing.T) {
	_, _, err := run(t, rangeJSON, "convert", "--to", "xml")
	assert.ErrorIs(t, err, merr.ErrUnsupportedFormat)

	_, _, err = run(t, `{"start":`, "convert", "--to", "yaml")
	assert.ErrorIs(t, err, merr.ErrFormatFailed)

	_, _, err = run(t, rangeJSON, "convert", "extra-arg")
	assert.Error(t, err)
}

func TestConvertMetrics(t *testing.T) {
	_, stderr, err := run(t, rangeJSON, "convert", "--to", "cbor", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, stderr, "serde_document_bytes")
	assert.Contains(t, stderr, `content_type="application/cbor"`)
}

func TestFormats(t *testing.T) {
	out, _, err := run(t, "", "formats")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "* application/json"), lines[1])
	assert.Contains(t, lines[3], "yml")
	for _, l := range lines {
		if !strings.HasPrefix(l, "*") {
			assert.True(t, strings.HasPrefix(l, "  application/"), l)
		}
	}
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.json", "b.json"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(rangeJSON), 0o600))
		files = append(files, p)
	}
	outDir := filepath.Join(dir, "out")

	args := append([]string{"batch", "-t", "yaml", "-o", outDir, "-w", "2"}, files...)
	out, _, err := run(t, "", args...)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(outDir, "a.yaml"))

	for _, name := range []string{"a.yaml", "b.yaml"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err)
		assert.Equal(t, "start: [2020, 1, 1]\nendInclusive: [2020, 12, 31]\n", string(data))
	}

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"start":`), 0o600))
	_, stderr, err := run(t, "", "batch", "-t", "cbor", "-o", outDir, files[0], bad)
	assert.ErrorContains(t, err, "1 of 2 conversions failed")
	assert.Contains(t, stderr, "FAIL "+bad)
	assert.FileExists(t, filepath.Join(outDir, "a.cbor"))

	other := filepath.Join(dir, "nested", "a.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(other), 0o755))
	require.NoError(t, os.WriteFile(other, []byte(rangeJSON), 0o600))
	collide := filepath.Join(dir, "collide")
	_, _, err = run(t, "", "batch", "-t", "yaml", "-o", collide, files[0], other)
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
	assert.ErrorContains(t, err, filepath.Join(collide, "a.yaml"))
	assert.NoFileExists(t, filepath.Join(collide, "a.yaml"))

		_, _, err = run(t, "", "batch", "-t", "xml", files[0])
	assert.Error(t, err)

	_, _, err = run(t, "", "batch")
	assert.Error(t, err)
}
