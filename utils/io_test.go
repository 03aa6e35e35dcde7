package utils

import (
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/mosaic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapesJSON = `{"shapes":[
	{"type":1,"data":[0,0,200,100],"color":[255,255,255,255],"score":0},
	{"type":32,"data":[50,50,10],"color":[255,0,0,128],"score":0.12},
	{"type":16,"data":[100,50,10,20,30],"color":[0,0,255,255],"score":0.1}
]}`

func TestDecodeShapes(t *testing.T) {
	shapes, err := DecodeShapes(strings.NewReader(shapesJSON))
	require.NoError(t, err)
	require.Len(t, shapes, 3)
	assert.Equal(t, mosaic.Circle, shapes[1].Type)
	assert.Equal(t, []int{50, 50, 10}, shapes[1].Data)
	assert.Equal(t, [4]int{255, 0, 0, 128}, shapes[1].Color)
	assert.Equal(t, 0.12, shapes[1].Score)

	p, err := mosaic.Place(shapes, 1)
	require.NoError(t, err)
	assert.Len(t, p.All(), 3)
}

func TestDecodeShapesError(t *testing.T) {
	_, err := DecodeShapes(strings.NewReader(`{"shapes": [`))
	assert.Error(t, err)
}

func TestReadShapesMissing(t *testing.T) {
	_, err := ReadShapes(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSaveAndReadImage(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(2, 1, color.NRGBA{R: 9, G: 8, B: 7, A: 255})
	path := filepath.Join(dir, "img.png")
	require.NoError(t, SaveImage(img, path))

	back, err := ReadImage(path)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), back.Bounds())
	assert.Equal(t, color.NRGBA{R: 9, G: 8, B: 7, A: 255}, color.NRGBAModel.Convert(back.At(2, 1)))

	_, err = ReadImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestSavePalette(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "palette.png")
	palette := []colorful.Color{{R: 1}, {G: 1}}
	require.NoError(t, SavePalette(palette, 4, path))

	img, err := ReadImage(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, color.NRGBAModel.Convert(img.At(5, 2)))

	assert.Error(t, SavePalette(nil, 4, path))
}
