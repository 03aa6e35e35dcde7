package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/setanarut/mosaic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

func testScene() []mosaic.Primitive {
	return []mosaic.Primitive{
		{
			Kind:     mosaic.KindCube,
			Position: r3.Vec{X: 1, Y: 2, Z: 3},
			Scale:    r3.Vec{X: 0.5, Y: 0.5, Z: 0.1},
			Color:    mosaic.FromRGBA8(255, 128, 0, 255),
		},
		{
			Kind:     mosaic.KindSphere,
			Position: r3.Vec{X: -1},
			Scale:    r3.Vec{X: 1, Y: 0.00001, Z: 2},
			Rotation: r3.Vec{X: 90},
			Color:    mosaic.FromRGBA8(0, 0, 255, 64),
		},
		{
			Kind:  mosaic.KindLight,
			Scale: r3.Vec{X: 1, Y: 1, Z: 1},
			Color: mosaic.FromRGBA8(10, 20, 30, 255),
			Light: &mosaic.LightParams{Range: 0.1, SpotAngle: 13.5, Intensity: 100},
		},
	}
}

func TestWritePrimitivesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePrimitives(&buf, testScene(), FormatJSON))

	var scene SceneFile
	require.NoError(t, json.Unmarshal(buf.Bytes(), &scene))
	require.Len(t, scene.Primitives, 3)
	assert.Equal(t, Records(testScene()), scene.Primitives)

	cube := scene.Primitives[0]
	assert.Equal(t, mosaic.KindCube, cube.Kind)
	assert.Equal(t, [3]float64{1, 2, 3}, cube.Position)
	assert.Equal(t, [4]uint8{255, 128, 0, 255}, cube.Color)
	assert.Nil(t, cube.Light)
	assert.Contains(t, buf.String(), `"kind": "sphere"`)
	assert.Equal(t, 13.5, scene.Primitives[2].Light.SpotAngle)
}

func TestWritePrimitivesYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePrimitives(&buf, testScene(), FormatYAML))
	assert.Contains(t, buf.String(), "kind: light")
	assert.Contains(t, buf.String(), "rotation: [90, 0, 0]")

	var scene SceneFile
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &scene))
	assert.Equal(t, Records(testScene()), scene.Primitives)
}

func TestWritePrimitivesUnknownFormat(t *testing.T) {
	assert.Error(t, WritePrimitives(&bytes.Buffer{}, nil, Format("xml")))
}

func TestFormatFlag(t *testing.T) {
	var f Format
	require.NoError(t, f.Set("yml"))
	assert.Equal(t, FormatYAML, f)
	require.NoError(t, f.Set("json"))
	assert.Equal(t, FormatJSON, f)
	assert.Error(t, f.Set("csv"))
	assert.Equal(t, "format", f.Type())
}
