package main

import (
	"math"

	"github.com/milk9111/stfu/common"
)

// Camera follows a world point in pixels and keeps the view inside the
// level bounds.
type Camera struct {
	PosX float64
	PosY float64

	screenW, screenH float64
	worldW, worldH   float64
	smooth           float64
}

func NewCamera(screenW, screenH float64) *Camera {
	return &Camera{
		PosX:    screenW / 2,
		PosY:    screenH / 2,
		screenW: screenW,
		screenH: screenH,
		smooth:  0.15,
	}
}

func (c *Camera) SetWorldBounds(w, h float64) {
	c.worldW = w
	c.worldH = h
}

// Snap jumps straight to the target.
func (c *Camera) Snap(targetX, targetY float64) {
	c.PosX, c.PosY = targetX, targetY
	c.clamp()
}

func (c *Camera) Update(targetX, targetY float64) {
	c.PosX += (targetX - c.PosX) * c.smooth
	c.PosY += (targetY - c.PosY) * c.smooth
	c.PosX = math.Round(c.PosX)
	c.PosY = math.Round(c.PosY)
	c.clamp()
}

func (c *Camera) clamp() {
	halfW, halfH := c.screenW/2, c.screenH/2
	if c.worldW > c.screenW {
		c.PosX = common.Clamp(c.PosX, halfW, c.worldW-halfW)
	} else if c.worldW > 0 {
		c.PosX = c.worldW / 2
	}
	if c.worldH > c.screenH {
		c.PosY = common.Clamp(c.PosY, halfH, c.worldH-halfH)
	} else if c.worldH > 0 {
		c.PosY = c.worldH / 2
	}
}

// WorldToScreen maps simulation units to screen pixels.
func (c *Camera) WorldToScreen(x, y float64) (float64, float64) {
	return common.ToPixels(x) - c.PosX + c.screenW/2, common.ToPixels(y) - c.PosY + c.screenH/2
}
