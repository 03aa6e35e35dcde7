package mosaic

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter aborts a compile. Zero target sizes, a zero canvas height and
	// tolerances outside (0,1] all wrap it.
	ErrInvalidParameter = errors.New("mosaic: invalid parameter")

	// ErrEmptyImage marks a source raster without pixels. Builders treat it as an empty result.
	ErrEmptyImage = errors.New("mosaic: empty image")
)

// UnsupportedShapeError reports a shape type code the placer does not know.
// It never aborts placement.
type UnsupportedShapeError struct {
	Code int
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("mosaic: unsupported shape type %d", e.Code)
}

// MalformedShapeError reports a shape whose data slice is too short for its type.
type MalformedShapeError struct {
	Type ShapeType
	Len  int
	Want int
}

func (e *MalformedShapeError) Error() string {
	return fmt.Sprintf("mosaic: %s needs %d data values, got %d", e.Type, e.Want, e.Len)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidParameter}, args...)...)
}
