package render3d

import "github.com/chewxy/math32"

// Vec3 is a point or direction in model space.
type Vec3 struct {
	X, Y, Z float32
}

func V3(x, y, z float32) Vec3 { return Vec3{x, y, z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return v.Add(o.Scale(-1)) }
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Mul is the component-wise product.
func (v Vec3) Mul(o Vec3) Vec3    { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float32 { return math32.Sqrt(v.Dot(v)) }

// Normalize returns v at unit length, or zero for a degenerate vector.
func (v Vec3) Normalize() Vec3 {
	if l := v.Len(); l > 1e-10 {
		return v.Scale(1 / l)
	}
	return Vec3{}
}

func (v Vec3) Array() [3]float32 { return [3]float32{v.X, v.Y, v.Z} }

// Mat4 is an affine transform stored column-major: element (row r, col c)
// is at index c*4+r, and the translation occupies indices 12-14.
type Mat4 [16]float32

func (m Mat4) at(r, c int) float32 { return m[c*4+r] }

func Mat4Identity() Mat4 {
	return Mat4{0: 1, 5: 1, 10: 1, 15: 1}
}

func Mat4Translate(tx, ty, tz float32) Mat4 {
	return Mat4Identity().WithTranslation(V3(tx, ty, tz))
}

// Mat4RotateX rotates counter-clockwise about +x when looking down the axis.
func Mat4RotateX(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	return Mat4{0: 1, 5: c, 6: s, 9: -s, 10: c, 15: 1}
}

// Mat4RotateZ rotates counter-clockwise about +z when looking down the axis.
func Mat4RotateZ(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	return Mat4{0: c, 1: s, 4: -s, 5: c, 10: 1, 15: 1}
}

// Mat4FromRows builds an affine matrix from a row-major 3x4 block, the
// layout voxel section transforms are stored in.
func Mat4FromRows(r [12]float32) Mat4 {
	var m Mat4
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			m[col*4+row] = r[row*4+col]
		}
	}
	m[15] = 1
	return m
}

func (m Mat4) Translation() Vec3 { return Vec3{m[12], m[13], m[14]} }

func (m Mat4) WithTranslation(t Vec3) Mat4 {
	m[12], m[13], m[14] = t.X, t.Y, t.Z
	return m
}

// Mul returns a·b, the transform that applies b first.
func (a Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a.at(r, k) * b.at(k, c)
			}
			out[c*4+r] = sum
		}
	}
	return out
}

func (m Mat4) TransformPoint(v Vec3) Vec3 {
	return m.TransformDir(v).Add(m.Translation())
}

// TransformDir applies the linear part only.
func (m Mat4) TransformDir(v Vec3) Vec3 {
	return Vec3{
		m.at(0, 0)*v.X + m.at(0, 1)*v.Y + m.at(0, 2)*v.Z,
		m.at(1, 0)*v.X + m.at(1, 1)*v.Y + m.at(1, 2)*v.Z,
		m.at(2, 0)*v.X + m.at(2, 1)*v.Y + m.at(2, 2)*v.Z,
	}
}
