package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/setanarut/mosaic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestImage saves a 3×2 picture: two red columns and a blue one.
func writeTestImage(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := range 2 {
		img.SetNRGBA(0, y, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
		img.SetNRGBA(1, y, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
		img.SetNRGBA(2, y, color.NRGBA{R: 40, G: 40, B: 200, A: 255})
	}
	path := filepath.Join(dir, "in.png")
	require.NoError(t, utils.SaveImage(img, path))
	return path
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "mosaic.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func runScene(t *testing.T, args ...string) utils.SceneFile {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err)
	var scene utils.SceneFile
	require.NoError(t, json.Unmarshal([]byte(out), &scene))
	return scene
}

func TestImageUsesConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeTestImage(t, dir)
	cfg := writeConfig(t, dir, "sizing = \"native\"\ncell_size = 1.0\nenable_coalescing = false\n")

	scene := runScene(t, "image", "--config", cfg, in)
	require.Len(t, scene.Primitives, 4)
	assert.Equal(t, [3]float64{2, 1, 1}, scene.Primitives[0].Scale)
}

func TestImageFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeTestImage(t, dir)
	cfg := writeConfig(t, dir, "sizing = \"native\"\ncell_size = 1.0\nenable_coalescing = false\n")

	scene := runScene(t, "image", "--config", cfg, "--coalesce", in)
	assert.Len(t, scene.Primitives, 2)

	scene = runScene(t, "image", "--config", cfg, "--coalesce", "--cell-size", "0.5", in)
	require.Len(t, scene.Primitives, 2)
	assert.Equal(t, [3]float64{1, 1, 0.5}, scene.Primitives[0].Scale)
}

func TestImageToleranceFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeTestImage(t, dir)
	cfg := writeConfig(t, dir, "sizing = \"native\"\ncell_size = 1.0\ncolor_same_margin = 1.0\n")

	// Red and blue fall within a margin of 1.
	assert.Len(t, runScene(t, "image", "--config", cfg, in).Primitives, 1)
	assert.Len(t, runScene(t, "image", "--config", cfg, "-t", "0.03", in).Primitives, 2)
}

func TestImageMissingConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeTestImage(t, dir)
	_, err := run(t, "image", "--config", filepath.Join(dir, "typo.toml"), "--sizing", "native", in)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = run(t, "compare", "--config", filepath.Join(dir, "typo.toml"), in)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImageBadEnumFlag(t *testing.T) {
	dir := t.TempDir()
	in := writeTestImage(t, dir)
	_, err := run(t, "image", "--order", "diagonal", in)
	assert.Error(t, err)
}

func TestImageWritesOutFile(t *testing.T) {
	dir := t.TempDir()
	in := writeTestImage(t, dir)
	out := filepath.Join(dir, "scene.yaml")
	stdout, err := run(t, "image", "--sizing", "native", "--out", out, "--format", "yaml", in)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: cube")

	_, err = run(t, "image", "--sizing", "native", "--out", filepath.Join(dir, "missing", "scene.json"), in)
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	in := writeTestImage(t, dir)
	out, err := run(t, "compare", "--sizing", "native", in)
	require.NoError(t, err)
	assert.Contains(t, out, "spans             4")
	assert.Contains(t, out, "horizontal-first  2")
	assert.Contains(t, out, "vertical-first    2")
}

func TestVector(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "shapes.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"shapes":[
		{"type":1,"data":[0,0,100,100],"color":[255,255,255,255],"score":1},
		{"type":64,"data":[1,2,3,4],"color":[0,0,0,255],"score":0},
		{"type":32,"data":[50,50,10],"color":[255,0,0,255],"score":0}
	]}`), 0o644))
	scene := runScene(t, "vector", "--size", "2", in)
	require.Len(t, scene.Primitives, 2)
	scale := scene.Primitives[0].Scale
	assert.InDelta(t, 6, scale[0], 1e-9)
	assert.InDelta(t, 6, scale[1], 1e-9)
}
