package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tyrese/isobox/internal/mp4test"
)

func writeSample(t *testing.T, name string, b []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func execute(args ...string) (stdout string, stderr string, err error) {
	return executeContext(context.Background(), args...)
}

func executeContext(ctx context.Context, args ...string) (stdout string, stderr string, err error) {
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func TestDumpText(t *testing.T) {
	path := writeSample(t, "a.mp4", mp4test.Sample())
	out, _, err := execute("dump", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "ftyp offset=0 size=28 brand=isom minor=512 compat=isom,iso2,mp41", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "moov offset=28 "))
	assert.True(t, strings.HasPrefix(lines[2], "  mvhd offset=36 size=108 dur=10000 timescale=1000"))
	assert.Contains(t, out, "      hdlr ")
	assert.Contains(t, out, "mdat offset=")
}

func TestDumpWhere(t *testing.T) {
	path := writeSample(t, "a.mp4", mp4test.Sample())

	out, _, err := execute("dump", path, "--where", `Tag == "hdlr"`)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "moov/trak/mdia/hdlr offset="))
	assert.Contains(t, lines[1], `handler=soun`)

	out, _, err = execute("dump", path, "-o", "json", "-w", `Kind == "opaque" && Depth == 0`)
	require.NoError(t, err)
	var records []record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "free", records[0].Type)
	assert.Equal(t, "mdat", records[1].Type)
	assert.Equal(t, uint32(40), records[1].Size)

	_, _, err = execute("dump", path, "--where", `Size +`)
	assert.ErrorContains(t, err, "invalid --where expression")

	_, _, err = execute("dump", path, "--where", `Size`)
	assert.Error(t, err)
}

func TestDumpMalformed(t *testing.T) {
	b := mp4test.Box("moov", mp4test.Box("mvhd", []byte{1, 0, 0, 0}))
	path := writeSample(t, "bad.mp4", b)

	_, _, err := execute("dump", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version")
	assert.Contains(t, err.Error(), "moov@0 > mvhd@8")
}

func TestInfoJSON(t *testing.T) {
	a := writeSample(t, "a.mp4", mp4test.Sample())
	b := writeSample(t, "b.mp4", mp4test.Sample())

	out, _, err := execute("info", "-o", "json", "--workers", "2", a, b)
	require.NoError(t, err)

	var results []struct {
		File string `json:"file"`
		Info struct {
			Brand    string `json:"brand"`
			Duration int64  `json:"duration"`
			Streams  []struct {
				TrackID  uint32 `json:"trackId"`
				Handler  string `json:"handler"`
				Language string `json:"language"`
			} `json:"streams"`
		} `json:"info"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, a, results[0].File)
	assert.Equal(t, b, results[1].File)
	assert.Equal(t, "isom", results[0].Info.Brand)
	assert.Equal(t, int64(10e9), results[0].Info.Duration)
	require.Len(t, results[0].Info.Streams, 2)
	assert.Equal(t, "vide", results[0].Info.Streams[0].Handler)
	assert.Equal(t, "eng", results[0].Info.Streams[1].Language)
}

func TestInfoTextAndFailures(t *testing.T) {
	good := writeSample(t, "good.mp4", mp4test.Sample())
	nomoov := writeSample(t, "nomoov.mp4", mp4test.Box("mdat", make([]byte, 8)))
	missing := filepath.Join(t.TempDir(), "missing.mp4")

	out, _, err := execute("info", good, nomoov, missing)
	assert.EqualError(t, err, "2 of 3 files failed")
	assert.Contains(t, out, "duration:   10s (timescale 1000)")
	assert.Contains(t, out, "created:    2001-09-09T01:46:40Z")
	assert.Contains(t, out, "#0 track 1 vide 10s lang=und 1280x720")
	assert.Contains(t, out, "#1 track 2 soun 10s lang=eng\n")
	assert.Contains(t, out, "moov' atom not found")
	assert.Contains(t, out, "no such file")
}

func TestInfoCanceled(t *testing.T) {
	good := writeSample(t, "good.mp4", mp4test.Sample())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, _, err := executeContext(ctx, "info", good, good)
	assert.EqualError(t, err, "2 of 2 files failed")
	assert.Contains(t, out, "  error: "+good+": context canceled\n")
	assert.NotContains(t, out, "duration:")

	_, _, err = executeContext(ctx, "dump", good)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInfoYAML(t *testing.T) {
	path := writeSample(t, "a.mp4", mp4test.Sample())
	out, _, err := execute("info", "-o", "yaml", path)
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	info := results[0]["info"].(map[string]any)
	assert.Equal(t, "isom", info["brand"])
	assert.Equal(t, 3, info["nextTrackId"])
}

func TestConfigAndMetrics(t *testing.T) {
	path := writeSample(t, "a.mp4", mp4test.Sample())
	prom := filepath.Join(t.TempDir(), "isobox.prom")
	cfg := writeSample(t, "isobox.yaml", []byte("log:\n  level: debug\nmetrics:\n  textfile: "+prom+"\n"))

	_, stderr, err := execute("--config", cfg, "dump", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"walked"`)

	b, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(b), `isobox_files_total{result="ok"} 1`)
	assert.Contains(t, string(b), `isobox_boxes_decoded_total{kind="movie-header"} 1`)

	_, _, err = execute("--max-depth", "2", "dump", path)
	assert.ErrorContains(t, err, "too deep")

	_, _, err = execute("-o", "xml", "dump", path)
	assert.Error(t, err)
}

func TestTagsAndVersion(t *testing.T) {
	out, _, err := execute("tags")
	require.NoError(t, err)
	assert.Contains(t, out, "mvhd decoded\n")
	assert.Contains(t, out, "meta container skip=4\n")
	assert.Contains(t, out, "moov container\n")

	out, _, err = execute("version")
	require.NoError(t, err)
	assert.Equal(t, "isobox dev (none)\n", out)
}
