package utils

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/setanarut/mosaic"
)

// lightRadius is the preview radius of a light, in scene units.
const lightRadius = 0.005

// Bounds returns the XY extent of prims in scene units, ignoring rotation.
func Bounds(prims []mosaic.Primitive) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range prims {
		w, h, a := p.Footprint()
		if p.Kind == mosaic.KindLight {
			w, h = 2*lightRadius, 2*lightRadius
		}
		// A rotated footprint fits inside the circle around its diagonal.
		if a != 0 {
			d := math.Hypot(w, h)
			w, h = d, d
		}
		minX = min(minX, p.Position.X-w/2)
		maxX = max(maxX, p.Position.X+w/2)
		minY = min(minY, p.Position.Y-h/2)
		maxY = max(maxY, p.Position.Y+h/2)
	}
	return minX, minY, maxX, maxY
}

// RenderPreview draws prims in list order as seen from the front, scene y up, into an
// image width pixels wide. It returns nil when there is nothing to draw.
func RenderPreview(prims []mosaic.Primitive, width int) (image.Image, error) {
	if len(prims) == 0 || width <= 0 {
		return nil, nil
	}
	minX, minY, maxX, maxY := Bounds(prims)
	if maxX <= minX || maxY <= minY {
		return nil, nil
	}
	s := float64(width) / (maxX - minX)
	height := max(1, int(math.Ceil((maxY-minY)*s)))

	dc := gg.NewContext(width, height)
	defer dc.Close()
	for _, p := range prims {
		cx := (p.Position.X - minX) * s
		cy := (maxY - p.Position.Y) * s
		dc.SetRGBA(p.Color.R, p.Color.G, p.Color.B, p.Color.A)
		switch p.Kind {
		case mosaic.KindLight:
			dc.DrawCircle(cx, cy, lightRadius*s)
		case mosaic.KindSphere:
			w, h, angle := p.Footprint()
			dc.Push()
			// Scene angles are counterclockwise with y up; the image has y down.
			dc.RotateAbout(-angle*math.Pi/180, cx, cy)
			dc.DrawEllipse(cx, cy, w*s/2, h*s/2)
			dc.Pop()
		default:
			w, h, angle := p.Footprint()
			dc.Push()
			dc.RotateAbout(-angle*math.Pi/180, cx, cy)
			dc.DrawRectangle(cx-w*s/2, cy-h*s/2, w*s, h*s)
			dc.Pop()
		}
		if err := dc.Fill(); err != nil {
			return nil, err
		}
	}
	if err := dc.FlushGPU(); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}
