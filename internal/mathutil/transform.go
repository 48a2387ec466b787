package mathutil

// Transform places an object in world space: scale, then rotate, then translate.
type Transform struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{Rotation: QuatIdentity(), Scale: Vec3One}
}

// Matrix returns the local-to-world matrix.
func (t Transform) Matrix() Mat4 {
	r := QuatToMat3(t.Rotation.Normalize())
	return FromMat3Translation(Mat3Mul(r, Mat3Diag(t.Scale[0], t.Scale[1], t.Scale[2])), t.Position)
}

// TransformPoint maps a local point to world space.
func (t Transform) TransformPoint(p Vec3) Vec3 {
	return t.Rotation.Normalize().Rotate(p.Mul(t.Scale)).Add(t.Position)
}

// InverseTransformPoint maps a world point to local space. A zero scale
// component collapses that axis to 0 instead of producing Inf.
func (t Transform) InverseTransformPoint(p Vec3) Vec3 {
	r := QuatToMat3(t.Rotation.Normalize()).Transpose()
	l := r.MulVec3(p.Sub(t.Position))
	return Vec3{safeDiv(l[0], t.Scale[0]), safeDiv(l[1], t.Scale[1]), safeDiv(l[2], t.Scale[2])}
}

// TransformDirection rotates a direction; scale and translation are ignored.
func (t Transform) TransformDirection(d Vec3) Vec3 {
	return t.Rotation.Normalize().Rotate(d)
}

// Forward is the world direction of local +Z.
func (t Transform) Forward() Vec3 {
	return t.TransformDirection(Vec3Z)
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
