// Package camera maps between world space and the observing camera's
// normalized view space.
//
// Viewport coordinates follow the usual convention: (0,0) is the bottom-left
// corner of the view, (1,1) the top-right. Screen (pixel) coordinates start at
// the top-left corner.
package camera

import (
	"math"

	"projmap/internal/mathutil"
)

// Camera is a pinhole (or orthographic) camera looking down its local -Z axis
// with local +Y up.
type Camera struct {
	Position mathutil.Vec3
	Rotation mathutil.Quat

	FOV       float64 // vertical field of view in degrees
	Aspect    float64 // width / height; derived from Width/Height when zero
	Near      float64
	Far       float64
	Ortho     bool
	OrthoSize float64 // half-height of the orthographic view volume

	// Pixel size of the view, used by ScreenPointToRay.
	Width  int
	Height int
}

// New returns a camera with default settings at the origin looking down -Z.
func New() *Camera {
	c := &Camera{}
	c.Defaults()
	return c
}

// Defaults resets the projection settings and pose.
func (c *Camera) Defaults() {
	c.Position = mathutil.Vec3{}
	c.Rotation = mathutil.QuatIdentity()
	c.FOV = 60
	c.Aspect = 0
	c.Near = 0.01
	c.Far = 1000
	c.Ortho = false
	c.OrthoSize = 5
	c.Width = 1280
	c.Height = 720
}

// LookAt orients the camera toward target. A zero up vector means world up.
func (c *Camera) LookAt(target, up mathutil.Vec3) {
	if up.LenSq() == 0 {
		up = mathutil.WorldUp
	}
	c.Rotation = mathutil.LookRotation(target.Sub(c.Position), up)
}

// AspectRatio returns Aspect, or Width/Height when Aspect is unset.
func (c *Camera) AspectRatio() float64 {
	if c.Aspect > 0 {
		return c.Aspect
	}
	if c.Width > 0 && c.Height > 0 {
		return float64(c.Width) / float64(c.Height)
	}
	return 1
}

// Forward is the world-space viewing direction.
func (c *Camera) Forward() mathutil.Vec3 {
	return c.Rotation.Normalize().Rotate(mathutil.Vec3{0, 0, -1})
}

func (c *Camera) pose() mathutil.Transform {
	return mathutil.Transform{Position: c.Position, Rotation: c.Rotation, Scale: mathutil.Vec3One}
}

// ViewMatrix maps world space to camera space.
func (c *Camera) ViewMatrix() mathutil.Mat4 {
	return c.pose().Matrix().AffineInverse()
}

// ProjectionMatrix maps camera space to clip space.
func (c *Camera) ProjectionMatrix() mathutil.Mat4 {
	aspect := c.AspectRatio()
	if c.Ortho {
		h := 2 * c.OrthoSize
		return mathutil.Orthographic(aspect*h, h, c.Near, c.Far)
	}
	return mathutil.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// WorldToViewport projects p into viewport space: x and y in [0,1] for points
// inside the view, z the distance in front of the camera along its forward
// axis. Points on or behind the camera plane of a perspective camera report false.
func (c *Camera) WorldToViewport(p mathutil.Vec3) (mathutil.Vec3, bool) {
	v := c.pose().InverseTransformPoint(p)
	depth := -v[2]
	if !c.Ortho && depth <= 1e-9 {
		return mathutil.Vec3{}, false
	}
	clip := c.ProjectionMatrix().MulVec4(mathutil.V4(v, 1))
	if math.Abs(clip[3]) < 1e-12 {
		return mathutil.Vec3{}, false
	}
	return mathutil.Vec3{
		(clip[0]/clip[3] + 1) / 2,
		(clip[1]/clip[3] + 1) / 2,
		depth,
	}, true
}

// ViewportPointToRay returns the world ray through a viewport point.
func (c *Camera) ViewportPointToRay(vp mathutil.Vec2) mathutil.Ray {
	ndcX := vp[0]*2 - 1
	ndcY := vp[1]*2 - 1
	aspect := c.AspectRatio()
	pose := c.pose()
	if c.Ortho {
		local := mathutil.Vec3{ndcX * c.OrthoSize * aspect, ndcY * c.OrthoSize, 0}
		return mathutil.NewRay(pose.TransformPoint(local), c.Forward())
	}
	tanHalf := math.Tan(mathutil.Deg2Rad(c.FOV) / 2)
	dir := mathutil.Vec3{ndcX * tanHalf * aspect, ndcY * tanHalf, -1}
	return mathutil.NewRay(c.Position, pose.TransformDirection(dir))
}

// ScreenPointToRay returns the world ray through a pixel position measured
// from the top-left corner.
func (c *Camera) ScreenPointToRay(px mathutil.Vec2) mathutil.Ray {
	return c.ViewportPointToRay(c.ScreenToViewport(px))
}

// ScreenToViewport converts top-left pixel coordinates to viewport space.
func (c *Camera) ScreenToViewport(px mathutil.Vec2) mathutil.Vec2 {
	w, h := float64(c.Width), float64(c.Height)
	if w <= 0 || h <= 0 {
		return px
	}
	return mathutil.Vec2{px[0] / w, 1 - px[1]/h}
}

// View is a saved camera pose.
type View struct {
	Position mathutil.Vec3
	Rotation mathutil.Quat
	FOV      float64
}

// SaveView captures the current pose.
func (c *Camera) SaveView() View {
	return View{Position: c.Position, Rotation: c.Rotation, FOV: c.FOV}
}

// RestoreView applies a saved pose. A zero FOV keeps the current one.
func (c *Camera) RestoreView(v View) {
	c.Position = v.Position
	c.Rotation = v.Rotation.Normalize()
	if v.FOV > 0 {
		c.FOV = v.FOV
	}
}
