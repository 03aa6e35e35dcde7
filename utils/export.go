package utils

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/setanarut/mosaic"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Format is a scene export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func (f *Format) Set(s string) error {
	switch Format(s) {
	case FormatJSON, FormatYAML:
		*f = Format(s)
		return nil
	case "yml":
		*f = FormatYAML
		return nil
	}
	return fmt.Errorf("unknown format %q (json or yaml)", s)
}

func (f Format) String() string { return string(f) }
func (f Format) Type() string   { return "format" }

// PrimitiveRecord is the file form of a mosaic.Primitive with an 8-bit color.
type PrimitiveRecord struct {
	Kind     mosaic.Kind  `json:"kind" yaml:"kind"`
	Position [3]float64   `json:"position" yaml:"position,flow"`
	Scale    [3]float64   `json:"scale" yaml:"scale,flow"`
	Rotation [3]float64   `json:"rotation" yaml:"rotation,flow"`
	Color    [4]uint8     `json:"color" yaml:"color,flow"`
	Light    *LightRecord `json:"light,omitempty" yaml:"light,omitempty"`
}

type LightRecord struct {
	Range     float64 `json:"range" yaml:"range"`
	SpotAngle float64 `json:"spot_angle" yaml:"spot_angle"`
	Intensity float64 `json:"intensity" yaml:"intensity"`
}

// SceneFile is the top level of an export.
type SceneFile struct {
	Primitives []PrimitiveRecord `json:"primitives" yaml:"primitives"`
}

func vec3(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Records converts primitives to their file form.
func Records(prims []mosaic.Primitive) []PrimitiveRecord {
	out := make([]PrimitiveRecord, len(prims))
	for i, p := range prims {
		c := p.Color.NRGBA()
		out[i] = PrimitiveRecord{
			Kind:     p.Kind,
			Position: vec3(p.Position),
			Scale:    vec3(p.Scale),
			Rotation: vec3(p.Rotation),
			Color:    [4]uint8{c.R, c.G, c.B, c.A},
		}
		if p.Light != nil {
			out[i].Light = &LightRecord{Range: p.Light.Range, SpotAngle: p.Light.SpotAngle, Intensity: p.Light.Intensity}
		}
	}
	return out
}

// WritePrimitives encodes prims to w.
func WritePrimitives(w io.Writer, prims []mosaic.Primitive, format Format) error {
	scene := SceneFile{Primitives: Records(prims)}
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(scene); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "\t")
		return enc.Encode(scene)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
