package graphics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is an orbit camera looking at Target from Distance away.
type Camera struct {
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	Target   mgl32.Vec3
	Distance float32
	Yaw      float32 // radians
	Pitch    float32 // radians, positive looks down
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		FOV:       60.0,
		NearPlane: 0.1,
		FarPlane:  1000.0,
		Distance:  60,
		Pitch:     mgl32.DegToRad(35),
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio
func (c *Camera) SetViewport(width, height int) {
	if height <= 0 {
		height = 1
	}
	c.AspectRatio = float32(width) / float32(height)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// Eye returns the camera position in world space
func (c *Camera) Eye() mgl32.Vec3 {
	offset := mgl32.SphericalToCartesian(c.Distance, mgl32.DegToRad(90)-c.Pitch, c.Yaw)
	// SphericalToCartesian is Z-up; swap into Y-up
	return c.Target.Add(mgl32.Vec3{offset.X(), offset.Z(), offset.Y()})
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Orbit rotates the camera around its target
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, mgl32.DegToRad(5), mgl32.DegToRad(85))
}

// Zoom scales the orbit distance by factor, staying within sane bounds.
func (c *Camera) Zoom(factor float32) {
	c.Distance = mgl32.Clamp(c.Distance*factor, 5, 400)
}
