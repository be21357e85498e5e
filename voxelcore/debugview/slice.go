// Package debugview renders cross sections of voxel objects to images.
package debugview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Palette maps voxel types to colors.
type Palette func(t chunks.VoxelType) color.RGBA

// DefaultPalette cycles through a few distinct colors.
func DefaultPalette(t chunks.VoxelType) color.RGBA {
	colors := [...]color.RGBA{
		{200, 170, 120, 255},
		{90, 140, 200, 255},
		{120, 190, 90, 255},
		{200, 90, 90, 255},
		{170, 110, 200, 255},
	}
	return colors[int(t)%len(colors)]
}

var (
	surfaceTint = color.RGBA{255, 255, 255, 255}
	labelColor  = color.RGBA{255, 255, 0, 255}
)

// SliceOptions control RenderSlice. Scale is the number of pixels per voxel.
type SliceOptions struct {
	Scale   int
	Palette Palette
	Label   bool
}

// RenderSlice draws the layer of voxels at index along axis. The image's x
// and y follow the next two axes in cyclic order. Empty voxels are shaded by
// their signed distance and surface voxels are brightened.
func RenderSlice(obj *chunks.ChunkedVoxelObject, axis, index int, opts SliceOptions) (*image.RGBA, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("invalid slice axis %d", axis)
	}
	shape := obj.GridShape()
	if index < 0 || index >= shape[axis] {
		return nil, fmt.Errorf("slice index %d outside [0, %d) along axis %d", index, shape[axis], axis)
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.Palette == nil {
		opts.Palette = DefaultPalette
	}

	u, v := (axis+1)%3, (axis+2)%3
	w, h := shape[u], shape[v]
	voxels := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			var idx [3]int
			idx[axis], idx[u], idx[v] = index, x, y
			// Flip so that increasing v points up in the image.
			voxels.SetRGBA(x, h-1-y, voxelColor(obj.GetVoxel(idx[0], idx[1], idx[2]), opts.Palette))
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, w*opts.Scale, h*opts.Scale))
	draw.NearestNeighbor.Scale(img, img.Bounds(), voxels, voxels.Bounds(), draw.Src, nil)
	if opts.Label {
		drawLabel(img, fmt.Sprintf("%c=%d", "xyz"[axis], index))
	}
	return img, nil
}

func voxelColor(v chunks.Voxel, palette Palette) color.RGBA {
	if v.IsEmpty() {
		// Darker the further from the surface.
		shade := uint8(80 * (1 - v.SignedDistance()/chunks.MaxSignedDistance))
		return color.RGBA{shade, shade, shade, 255}
	}
	c := palette(v.Type())
	if v.IsSurface() {
		c = blend(c, surfaceTint)
	}
	return c
}

func blend(a, b color.RGBA) color.RGBA {
	return color.RGBA{
		uint8((uint16(a.R) + uint16(b.R)) / 2),
		uint8((uint16(a.G) + uint16(b.G)) / 2),
		uint8((uint16(a.B) + uint16(b.B)) / 2),
		255,
	}
}

func drawLabel(img *image.RGBA, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(2, basicfont.Face7x13.Ascent+2),
	}
	d.DrawString(text)
}

func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
