package device

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

var _ Device = (*Framebuffer)(nil)

// Framebuffer is a write-mostly pixel sink: it generalizes the
// character-output Console to a 2D grid of one-byte pixels, the
// way a simple display peripheral would be memory-mapped on a home
// computer. Each written byte is an RGB332-packed color (3 bits red, 3
// bits green, 2 bits blue) at offset = y*width + x, and reads return
// whatever was last written, the way real video RAM behaves.
type Framebuffer struct {
	width, height int
	pixels        []uint8
}

// NewFramebuffer creates a Framebuffer of the given dimensions, all
// pixels initialized to 0 (black).
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]uint8, width*height),
	}
}

// TypeName implements Device.
func (f *Framebuffer) TypeName() string { return "Framebuffer" }

// Read implements Device.
func (f *Framebuffer) Read(offset uint16) uint8 {
	i := int(offset)
	if i >= len(f.pixels) {
		return 0
	}
	return f.pixels[i]
}

// Write implements Device.
func (f *Framebuffer) Write(offset uint16, val uint8) {
	i := int(offset)
	if i >= len(f.pixels) {
		return
	}
	f.pixels[i] = val
}

// rgb332 unpacks a byte into an RGB332 color.
func rgb332(b uint8) color.NRGBA {
	r := (b >> 5) & 0x07
	g := (b >> 2) & 0x07
	bl := b & 0x03
	return color.NRGBA{
		R: uint8(uint16(r) * 255 / 7),
		G: uint8(uint16(g) * 255 / 7),
		B: uint8(uint16(bl) * 255 / 3),
		A: 255,
	}
}

// Image renders the current pixel buffer as an image.Image.
func (f *Framebuffer) Image() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			img.SetNRGBA(x, y, rgb332(f.pixels[y*f.width+x]))
		}
	}
	return img
}

// SavePNG scales the framebuffer up by scale (nearest-neighbor, via
// golang.org/x/image/draw since the standard library has no scaler of its
// own) and writes it to path as a PNG.
func (f *Framebuffer) SavePNG(path string, scale int) error {
	if scale < 1 {
		scale = 1
	}
	src := f.Image()
	dstRect := image.Rect(0, 0, f.width*scale, f.height*scale)
	dst := image.NewNRGBA(dstRect)
	draw.NearestNeighbor.Scale(dst, dstRect, src, src.Bounds(), draw.Over, nil)

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, dst)
}
