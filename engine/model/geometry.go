package model

import (
	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/chewxy/math32"
)

// meshData is an indexed triangle list in model space.
type meshData struct {
	vertices []GPUVertex
	indices  []uint32
}

func (d *meshData) add(pos, normal [3]float32, u, v float32) uint32 {
	d.vertices = append(d.vertices, GPUVertex{Position: pos, Normal: normal, TexCoord: [2]float32{u, v}})
	return uint32(len(d.vertices) - 1)
}

func (d *meshData) quad(a, b, c, e uint32) {
	d.indices = append(d.indices, a, b, c, a, c, e)
}

// generate builds the mesh for a primitive at its canonical size.
func generate(p common.Primitive, segments int) meshData {
	switch p {
	case common.PrimitiveSphere:
		return sphere(0.5, segments, segments/2)
	case common.PrimitiveCylinder:
		return cylinder(0.5, 0.5, 1, segments)
	case common.PrimitivePlane:
		return plane(1, 1)
	case common.PrimitiveCone:
		return cylinder(0, 0.5, 1, segments)
	case common.PrimitiveTorus:
		return torus(2, 0.2, segments/2, segments*3/2)
	default:
		return box(1, 1, 1)
	}
}

// box builds an axis-aligned box centered on the origin with flat-shaded faces.
func box(w, h, d float32) meshData {
	var m meshData
	hx, hy, hz := w/2, h/2, d/2
	faces := []struct {
		normal [3]float32
		u, v   [3]float32
	}{
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
	}
	half := [3]float32{hx, hy, hz}
	for _, f := range faces {
		var corners [4]uint32
		for i, uv := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			var p [3]float32
			for k := 0; k < 3; k++ {
				p[k] = (f.normal[k] + f.u[k]*uv[0] + f.v[k]*uv[1]) * half[k]
			}
			corners[i] = m.add(p, f.normal, (uv[0]+1)/2, (uv[1]+1)/2)
		}
		m.quad(corners[0], corners[1], corners[2], corners[3])
	}
	return m
}

// plane builds a w by h rectangle in the XY plane facing +Z.
func plane(w, h float32) meshData {
	var m meshData
	n := [3]float32{0, 0, 1}
	a := m.add([3]float32{-w / 2, -h / 2, 0}, n, 0, 0)
	b := m.add([3]float32{w / 2, -h / 2, 0}, n, 1, 0)
	c := m.add([3]float32{w / 2, h / 2, 0}, n, 1, 1)
	e := m.add([3]float32{-w / 2, h / 2, 0}, n, 0, 1)
	m.quad(a, b, c, e)
	return m
}

// sphere builds a UV sphere of the given radius.
func sphere(radius float32, widthSegments, heightSegments int) meshData {
	var m meshData
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)
	for y := 0; y <= heightSegments; y++ {
		v := float32(y) / float32(heightSegments)
		theta := v * math32.Pi
		for x := 0; x <= widthSegments; x++ {
			u := float32(x) / float32(widthSegments)
			phi := u * 2 * math32.Pi
			n := [3]float32{
				-math32.Cos(phi) * math32.Sin(theta),
				math32.Cos(theta),
				math32.Sin(phi) * math32.Sin(theta),
			}
			m.add(common.Scale3(n, radius), n, u, 1-v)
		}
	}
	row := uint32(widthSegments + 1)
	for y := 0; y < heightSegments; y++ {
		for x := 0; x < widthSegments; x++ {
			a := uint32(y)*row + uint32(x)
			m.quad(a, a+row, a+row+1, a+1)
		}
	}
	return m
}

// cylinder builds an open-ended lateral surface plus caps. A zero top radius makes a cone.
func cylinder(radiusTop, radiusBottom, height float32, radialSegments int) meshData {
	var m meshData
	radialSegments = max(radialSegments, 3)
	halfH := height / 2
	slope := (radiusBottom - radiusTop) / height

	for y := 0; y <= 1; y++ {
		r := radiusBottom + float32(y)*(radiusTop-radiusBottom)
		py := -halfH + float32(y)*height
		for x := 0; x <= radialSegments; x++ {
			u := float32(x) / float32(radialSegments)
			theta := u * 2 * math32.Pi
			sin, cos := math32.Sin(theta), math32.Cos(theta)
			n := common.Normalize3([3]float32{sin, slope, cos})
			m.add([3]float32{r * sin, py, r * cos}, n, u, float32(y))
		}
	}
	row := uint32(radialSegments + 1)
	for x := uint32(0); x < uint32(radialSegments); x++ {
		m.quad(x, x+1, x+row+1, x+row)
	}

	addCap := func(r, py, ny float32) {
		if r <= 0 {
			return
		}
		n := [3]float32{0, ny, 0}
		center := m.add([3]float32{0, py, 0}, n, 0.5, 0.5)
		first := uint32(len(m.vertices))
		for x := 0; x <= radialSegments; x++ {
			theta := float32(x) / float32(radialSegments) * 2 * math32.Pi
			sin, cos := math32.Sin(theta), math32.Cos(theta)
			m.add([3]float32{r * sin, py, r * cos}, n, sin*0.5+0.5, cos*0.5+0.5)
		}
		for x := uint32(0); x < uint32(radialSegments); x++ {
			if ny > 0 {
				m.indices = append(m.indices, center, first+x, first+x+1)
			} else {
				m.indices = append(m.indices, center, first+x+1, first+x)
			}
		}
	}
	addCap(radiusTop, halfH, 1)
	addCap(radiusBottom, -halfH, -1)
	return m
}

// torus builds a ring of major radius around the Z axis with a circular tube.
func torus(radius, tube float32, radialSegments, tubularSegments int) meshData {
	var m meshData
	radialSegments = max(radialSegments, 3)
	tubularSegments = max(tubularSegments, 3)
	for j := 0; j <= radialSegments; j++ {
		v := float32(j) / float32(radialSegments) * 2 * math32.Pi
		for i := 0; i <= tubularSegments; i++ {
			u := float32(i) / float32(tubularSegments) * 2 * math32.Pi
			p := [3]float32{
				(radius + tube*math32.Cos(v)) * math32.Cos(u),
				(radius + tube*math32.Cos(v)) * math32.Sin(u),
				tube * math32.Sin(v),
			}
			center := [3]float32{radius * math32.Cos(u), radius * math32.Sin(u), 0}
			n := common.Normalize3(common.Sub3(p, center))
			m.add(p, n, float32(i)/float32(tubularSegments), float32(j)/float32(radialSegments))
		}
	}
	row := uint32(tubularSegments + 1)
	for j := uint32(1); j <= uint32(radialSegments); j++ {
		for i := uint32(1); i <= uint32(tubularSegments); i++ {
			a := row*j + i - 1
			b := row*(j-1) + i - 1
			c := row*(j-1) + i
			d := row*j + i
			m.indices = append(m.indices, a, b, d, b, c, d)
		}
	}
	return m
}
