package parsing

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
)

// Box is an axis-aligned bounding box in pixel space.
type Box struct {
	X0 int
	Y0 int
	X1 int
	Y1 int
}

// Height returns the vertical extent of the box. Degenerate boxes report
// zero or a negative height.
func (b Box) Height() int {
	return b.Y1 - b.Y0
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// BoxFromRect converts an image.Rectangle into a Box.
func BoxFromRect(r image.Rectangle) Box {
	return Box{X0: r.Min.X, Y0: r.Min.Y, X1: r.Max.X, Y1: r.Max.Y}
}

// BoxFromQuad normalizes a four-corner quadrilateral into its axis-aligned extent.
func BoxFromQuad(q [4]image.Point) Box {
	b := Box{X0: q[0].X, Y0: q[0].Y, X1: q[0].X, Y1: q[0].Y}
	for _, p := range q[1:] {
		b.X0 = min(b.X0, p.X)
		b.Y0 = min(b.Y0, p.Y)
		b.X1 = max(b.X1, p.X)
		b.Y1 = max(b.Y1, p.Y)
	}
	return b
}

// MarshalJSON encodes the box as [x0, y0, x1, y1].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X0, b.Y0, b.X1, b.Y1})
}

var errBadBox = errors.New("box must be [x0,y0,x1,y1] or four [x,y] points")

// UnmarshalJSON accepts either [x0, y0, x1, y1] or a quadrilateral
// [[x, y], [x, y], [x, y], [x, y]].
func (b *Box) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return fmt.Errorf("%w: %w", errBadBox, err)
	}
	if len(elems) != 4 {
		return fmt.Errorf("%w: got %d elements", errBadBox, len(elems))
	}

	var flat [4]float64
	if err := json.Unmarshal(data, &flat); err == nil {
		*b = Box{X0: int(flat[0]), Y0: int(flat[1]), X1: int(flat[2]), Y1: int(flat[3])}
		return nil
	}

	var pts [4]image.Point
	for i, e := range elems {
		var p []float64
		if err := json.Unmarshal(e, &p); err != nil {
			return fmt.Errorf("%w: %w", errBadBox, err)
		}
		if len(p) != 2 {
			return fmt.Errorf("%w: point %d has %d coordinates", errBadBox, i, len(p))
		}
		pts[i] = image.Pt(int(p[0]), int(p[1]))
	}
	*b = BoxFromQuad(pts)
	return nil
}

// Token is one OCR-recognized text unit with its bounding box.
type Token struct {
	Text string `json:"text"`
	Box  Box    `json:"box"`
}
