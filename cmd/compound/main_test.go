package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestInferEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	sample := writeFile(t, dir, "sample.json", `{"id":7,"label":"hello","score":1.5}`)

	layoutJSON := run(t, "infer", "point", sample, "--order", "id,label,score", "--codec", "go-json", "--log-level", "error")
	layout := writeFile(t, dir, "point.json", layoutJSON)
	assert.Contains(t, layoutJSON, `"name": "point"`)
	assert.Contains(t, layoutJSON, `"size": 21`)

	text := run(t, "layout", layout, "--format", "text", "--codec", "json")
	assert.True(t, strings.HasPrefix(text, "point(21){id@0:"), text)
	assert.Contains(t, text, "MEMBER")

	const want = "070000000000000068656c6c6f000000000000f83f"
	hexOut := run(t, "encode", layout, sample, "--joined=false", "--codec", "go-json")
	assert.Equal(t, want+"\n", hexOut)

	jsonOut := run(t, "decode", layout, want, "--enum-as", "name", "--duration-unit", "")
	assert.Equal(t, `{"id":7,"label":"hello","score":1.5}`+"\n", jsonOut)
}

func TestEncodeBatch(t *testing.T) {
	dir := t.TempDir()
	layout := writeFile(t, dir, "kv.json", `{
  "name": "kv",
  "size": 6,
  "members": [
    {"name": "k", "offset": 0, "storage": {"class": "integer", "size": 2, "signed": true}},
    {"name": "v", "offset": 2, "storage": {"class": "integer", "size": 4, "signed": true}}
  ]
}`)
	records := writeFile(t, dir, "records.json", `[{"k":1,"v":-1},{"k":2,"v":3}]`)

	lines := run(t, "encode", layout, records, "--joined=false", "--codec", "go-json")
	assert.Equal(t, "0100ffffffff\n020003000000\n", lines)

	joined := run(t, "encode", layout, records, "--joined", "--codec", "go-json")
	assert.Equal(t, "0100ffffffff020003000000\n", joined)

	decoded := run(t, "decode", layout, "0100ffffffff020003000000", "--enum-as", "name", "--duration-unit", "")
	assert.Equal(t, "{\"k\":1,\"v\":-1}\n{\"k\":2,\"v\":3}\n", decoded)
}

func TestReadRecords(t *testing.T) {
	recs, err := readRecords([]byte(`{"a":1,"b":2.5,"c":[1,2],"d":"x"}`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(1), recs[0]["a"])
	assert.Equal(t, 2.5, recs[0]["b"])
	assert.Equal(t, []any{int64(1), int64(2)}, recs[0]["c"])
	assert.Equal(t, "x", recs[0]["d"])

	_, err = readRecords([]byte(`[1]`))
	assert.Error(t, err)

	_, err = readRecords([]byte(`"x"`))
	assert.Error(t, err)
}

func TestDecodeOptions(t *testing.T) {
	decodeEnumAs, decodeDurationUnit = "ordinal", "hours"
	t.Cleanup(func() { decodeEnumAs, decodeDurationUnit = "name", "" })

	ro, err := decodeOptions()
	require.NoError(t, err)
	assert.Len(t, ro, 2)

	decodeEnumAs = "bogus"
	_, err = decodeOptions()
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, writeJSON(cmd, map[string]any{"s": "<a&b>"}, false))
	assert.Equal(t, `{"s":"<a&b>"}`+"\n", out.String())

	out.Reset()
	require.NoError(t, writeJSON(cmd, map[string]any{"n": 1}, true))
	assert.Equal(t, "{\n  \"n\": 1\n}\n", out.String())
}
