package gamut

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// insideEps is how far outside a face plane a point may lie and still
	// count as inside.
	insideEps = 1e-10
	// baryEps widens triangles in the ray-hit test.
	baryEps = 1e-8
	// rayEps is the smallest accepted ray parameter.
	rayEps = 1e-10
	// degenerate guards every other near-zero denominator.
	degenerate = 1e-12
)

// faceIndex lists the vertex triple of each face and the excluded vertex.
var faceIndex = [4][4]int{
	{1, 2, 3, 0},
	{0, 3, 2, 1},
	{0, 1, 3, 2},
	{0, 2, 1, 3},
}

type face struct {
	v      [3]r3.Vec
	normal r3.Vec // unit outward normal, zero for a degenerate face
}

// tetrahedron is the solid spanned by 4 palette colors.
type tetrahedron struct {
	faces    [4]face
	centroid r3.Vec
}

func newTetrahedron(verts [4]r3.Vec) *tetrahedron {
	t := new(tetrahedron)
	for i, idx := range faceIndex {
		v0, v1, v2 := verts[idx[0]], verts[idx[1]], verts[idx[2]]
		n := r3.Cross(r3.Sub(v1, v0), r3.Sub(v2, v0))
		if l := r3.Norm(n); l > degenerate {
			n = r3.Scale(1/l, n)
		}
		// Outward normals point away from the excluded vertex.
		if r3.Dot(n, r3.Sub(verts[idx[3]], v0)) > 0 {
			n = r3.Scale(-1, n)
		}
		t.faces[i] = face{v: [3]r3.Vec{v0, v1, v2}, normal: n}
	}
	for _, v := range verts {
		t.centroid = r3.Add(t.centroid, v)
	}
	t.centroid = r3.Scale(0.25, t.centroid)
	return t
}

// contains reports whether p is on the interior side of every face.
func (t *tetrahedron) contains(p r3.Vec) bool {
	for _, f := range t.faces {
		if r3.Dot(r3.Sub(p, f.v[0]), f.normal) > insideEps {
			return false
		}
	}
	return true
}

// nearestSurface returns the point on the tetrahedron boundary closest to p.
func (t *tetrahedron) nearestSurface(p r3.Vec) r3.Vec {
	best := p
	bestDist := math.Inf(1)
	for _, f := range t.faces {
		q := closestOnTriangle(p, f.v[0], f.v[1], f.v[2])
		if d := r3.Norm2(r3.Sub(p, q)); d < bestDist {
			bestDist = d
			best = q
		}
	}
	return best
}

// closestOnTriangle returns the point of triangle abc nearest to p, testing
// the vertex, edge and face Voronoi regions in turn.
func closestOnTriangle(p, a, b, c r3.Vec) r3.Vec {
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)

	ap := r3.Sub(p, a)
	d1 := r3.Dot(ab, ap)
	d2 := r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := r3.Sub(p, b)
	d3 := r3.Dot(ab, bp)
	d4 := r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return r3.Add(a, r3.Scale(safeRatio(d1, d1-d3), ab))
	}

	cp := r3.Sub(p, c)
	d5 := r3.Dot(ab, cp)
	d6 := r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return r3.Add(a, r3.Scale(safeRatio(d2, d2-d6), ac))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := safeRatio(d4-d3, (d4-d3)+(d5-d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b)))
	}

	denom := va + vb + vc
	if math.Abs(denom) <= 1e-30 {
		return a
	}
	v := vb / denom
	w := vc / denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac)))
}

func safeRatio(num, den float64) float64 {
	if math.Abs(den) <= 1e-30 {
		return 0
	}
	return num / den
}

// castFromCentroid returns where the ray from the centroid through p leaves
// the tetrahedron. ok is false when p coincides with the centroid or no
// face is hit.
func (t *tetrahedron) castFromCentroid(p r3.Vec) (hit r3.Vec, ok bool) {
	dir := r3.Sub(p, t.centroid)
	l := r3.Norm(dir)
	if l < degenerate {
		return p, false
	}
	dir = r3.Scale(1/l, dir)

	bestT := math.Inf(1)
	for _, f := range t.faces {
		den := r3.Dot(dir, f.normal)
		if math.Abs(den) <= degenerate {
			continue
		}
		tt := r3.Dot(r3.Sub(f.v[0], t.centroid), f.normal) / den
		if tt <= rayEps || tt >= bestT {
			continue
		}
		q := r3.Add(t.centroid, r3.Scale(tt, dir))
		if !inTriangle(q, f.v[0], f.v[1], f.v[2]) {
			continue
		}
		bestT = tt
		hit = q
		ok = true
	}
	return hit, ok
}

// inTriangle reports whether q, assumed to lie in the plane of abc, is
// inside the triangle using barycentric coordinates.
func inTriangle(q, a, b, c r3.Vec) bool {
	e1 := r3.Sub(b, a)
	e2 := r3.Sub(c, a)
	h := r3.Sub(q, a)

	d11 := r3.Dot(e1, e1)
	d12 := r3.Dot(e1, e2)
	d22 := r3.Dot(e2, e2)
	denom := d11*d22 - d12*d12
	if math.Abs(denom) < 1e-30 {
		return false
	}
	dh1 := r3.Dot(h, e1)
	dh2 := r3.Dot(h, e2)
	u := (d22*dh1 - d12*dh2) / denom
	v := (d11*dh2 - d12*dh1) / denom
	return u >= -baryEps && v >= -baryEps && u+v <= 1+baryEps
}
