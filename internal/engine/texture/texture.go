// Package texture generates procedural images for material textures.
package texture

import (
	"fmt"
	"image"
	"image/color"
)

// Solid returns a 1x1 image of c.
func Solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return img
}

// Checker returns a size x size image of alternating cell x cell squares,
// starting with a in the top-left corner.
func Checker(size, cell int, a, b color.RGBA) (*image.RGBA, error) {
	if size <= 0 || cell <= 0 {
		return nil, fmt.Errorf("texture: invalid checker size=%d cell=%d", size, cell)
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

// Bricks returns a size x size running-bond brick pattern with mortar lines
// one pixel wide.
func Bricks(size, rows int, brick, mortar color.RGBA) (*image.RGBA, error) {
	if size <= 0 || rows <= 0 || size < rows*2 {
		return nil, fmt.Errorf("texture: invalid brick size=%d rows=%d", size, rows)
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	h := size / rows
	w := h * 2
	for y := 0; y < size; y++ {
		row := y / h
		shift := 0
		if row%2 == 1 {
			shift = w / 2
		}
		for x := 0; x < size; x++ {
			c := brick
			if y%h == 0 || (x+shift)%w == 0 {
				c = mortar
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}
