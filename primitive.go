package mosaic

import "gonum.org/v1/gonum/spatial/r3"

// Kind is the scene object a primitive stands for.
type Kind int

const (
	KindCube Kind = iota
	KindSphere
	KindLight
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindLight:
		return "light"
	default:
		return "cube"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "cube":
		*k = KindCube
	case "sphere":
		*k = KindSphere
	case "light":
		*k = KindLight
	default:
		return invalidf("unknown primitive kind %q", text)
	}
	return nil
}

// LightParams describes a spot light primitive.
type LightParams struct {
	Range     float64
	SpotAngle float64 // degrees
	Intensity float64
}

// Primitive is one placed scene object, ready for a scene builder to instantiate.
// Rotation holds Euler angles in degrees.
type Primitive struct {
	Kind     Kind
	Position r3.Vec
	Scale    r3.Vec
	Rotation r3.Vec
	Color    RGBA
	Light    *LightParams
}

// Footprint returns the extent of p in the scene's XY plane and its in-plane rotation
// in degrees, counterclockwise. Spheres are flattened discs whose radii lie on their
// local X and Z axes.
func (p Primitive) Footprint() (w, h, angle float64) {
	switch p.Kind {
	case KindSphere:
		// Euler(90-a, 90, 90) turns the disc's local X axis to angle a in XY.
		if p.Rotation.Y == 90 {
			angle = 90 - p.Rotation.X
		}
		return p.Scale.X, p.Scale.Z, angle
	default:
		return p.Scale.X, p.Scale.Y, p.Rotation.Z
	}
}
