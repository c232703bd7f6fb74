package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/resumepress/config"
	"github.com/ByLCY/resumepress/export"
	"github.com/ByLCY/resumepress/resume"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Scale = 1
	return cfg
}

func TestRunExportWritesDerivedFilename(t *testing.T) {
	dir := t.TempDir()
	debug := filepath.Join(dir, "debug", "layout.json")
	r := resume.Sample()
	r.PersonalInfo.Name = "Alex Morgan"

	path, err := runExport(context.Background(), testConfig(), r, export.FormatPDF, dir, debug)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Alex_Morgan_resume.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	raw, err := os.ReadFile(debug)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "page")
}

func TestRunExportExplicitFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cv.png")
	path, err := runExport(context.Background(), testConfig(), resume.Sample(), export.FormatPNG, out, "")
	require.NoError(t, err)
	assert.Equal(t, out, path)
	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "a.pdf"), outputPath(dir, "a.pdf"))
	assert.Equal(t, filepath.Join("build", "a.pdf"), outputPath("build/", "a.pdf"))
	assert.Equal(t, filepath.Join("build", "a.pdf"), outputPath("build", "a.pdf"))
	assert.Equal(t, "x/out.pdf", outputPath("x/out.pdf", "a.pdf"))
	assert.Equal(t, "a.pdf", outputPath("", "a.pdf"))
}

func TestTemplatesCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"templates"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[0], "classic"))
	assert.Contains(t, out.String(), "(= modern)")
}

func TestSampleRoundTrips(t *testing.T) {
	for _, asYAML := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, writeSample(&buf, asYAML))
		format := resume.FormatJSON
		if asYAML {
			format = resume.FormatYAML
		}
		r, err := resume.Decode(&buf, format)
		require.NoError(t, err)
		assert.Equal(t, resume.Sample(), r)
	}
}

func TestAssetDir(t *testing.T) {
	assert.Equal(t, "/srv/photos", assetDir("/srv/photos", []string{"cv/jane.yaml"}))
	assert.Equal(t, "cv", assetDir("", []string{"cv/jane.yaml"}))
	assert.Equal(t, ".", assetDir("", []string{"-"}))
	assert.Equal(t, ".", assetDir("", nil))
}
