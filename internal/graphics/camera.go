package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits a target point at a fixed distance. Yaw and pitch are
// in degrees; pitch is clamped short of the poles so the view matrix
// never degenerates.
type Camera struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		Distance:    24,
		Yaw:         45,
		Pitch:       30,
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
	}
}

// Position returns the camera's world-space position on the orbit.
func (c *Camera) Position() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return c.Target.Add(mgl32.Vec3{
		c.Distance * float32(math.Cos(pitch)*math.Sin(yaw)),
		c.Distance * float32(math.Sin(pitch)),
		c.Distance * float32(math.Cos(pitch)*math.Cos(yaw)),
	})
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// Rotate adjusts yaw and pitch by the given deltas in degrees.
func (c *Camera) Rotate(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch += dPitch
	if c.Pitch > 89 {
		c.Pitch = 89
	}
	if c.Pitch < -89 {
		c.Pitch = -89
	}
}

// Zoom moves the camera along its orbit radius.
func (c *Camera) Zoom(delta float32) {
	c.Distance -= delta
	if c.Distance < 1 {
		c.Distance = 1
	}
	if c.Distance > 512 {
		c.Distance = 512
	}
}

// Pan moves the orbit target in the camera's horizontal plane.
func (c *Camera) Pan(dx, dy float32) {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	right := mgl32.Vec3{float32(math.Cos(yaw)), 0, float32(-math.Sin(yaw))}
	c.Target = c.Target.Add(right.Mul(dx)).Add(mgl32.Vec3{0, dy, 0})
}

// SetViewport updates the aspect ratio after a window resize.
func (c *Camera) SetViewport(width, height int) {
	if height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}
