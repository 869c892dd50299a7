package gamut

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mmuldo/inkdither/colorspace"
)

// Space is the metric space a tetrahedron is built in.
type Space int

const (
	// RGBSpace uses sRGB channels normalised to [0,1].
	RGBSpace Space = iota
	// LabSpace uses CIE L*a*b*.
	LabSpace
)

func (s Space) String() string {
	if s == LabSpace {
		return "lab"
	}
	return "rgb"
}

func (s Space) point(c colorspace.RGB) r3.Vec {
	if s == LabSpace {
		lab := colorspace.RGBToLab(c)
		return r3.Vec{X: lab.L(), Y: lab.A(), Z: lab.B()}
	}
	return r3.Vec{X: float64(c.R) / 255, Y: float64(c.G) / 255, Z: float64(c.B) / 255}
}

func (s Space) color(p r3.Vec) colorspace.RGB {
	if s == LabSpace {
		return colorspace.LabToRGB(colorspace.Lab{p.X, p.Y, p.Z})
	}
	return colorspace.RGB{
		R: colorspace.Round(p.X * 255),
		G: colorspace.Round(p.Y * 255),
		B: colorspace.Round(p.Z * 255),
	}
}

// HullMapper moves colors outside the palette tetrahedron onto its
// surface. Colors inside are returned unchanged.
type HullMapper struct {
	tetra    *tetrahedron
	space    Space
	centroid bool
}

// NewAntiSaturation projects outside colors to the nearest surface point.
func NewAntiSaturation(p []colorspace.RGB, s Space) (*HullMapper, error) {
	return newHull(p, s, false)
}

// NewCentroidClip clips outside colors along the ray from the tetrahedron
// centroid. This tends to exit through colored faces and so keeps more
// chroma than NewAntiSaturation.
func NewCentroidClip(p []colorspace.RGB, s Space) (*HullMapper, error) {
	return newHull(p, s, true)
}

func newHull(p []colorspace.RGB, s Space, centroid bool) (*HullMapper, error) {
	if len(p) != 4 {
		return nil, fmt.Errorf("%w: got %d", ErrPaletteSize, len(p))
	}
	var verts [4]r3.Vec
	for i, c := range p {
		verts[i] = s.point(c)
	}
	return &HullMapper{tetra: newTetrahedron(verts), space: s, centroid: centroid}, nil
}

// MapColor implements Mapper.
func (h *HullMapper) MapColor(c colorspace.RGB) colorspace.RGB {
	p := h.space.point(c)
	if h.tetra.contains(p) {
		return c
	}
	return h.space.color(h.project(p))
}

func (h *HullMapper) project(p r3.Vec) r3.Vec {
	if h.centroid {
		if q, ok := h.tetra.castFromCentroid(p); ok {
			return q
		}
	}
	return h.tetra.nearestSurface(p)
}
