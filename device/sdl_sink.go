package device

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// SDLSink mirrors a Framebuffer into a live SDL window. It is not itself a
// Device — it has no address-space presence — it simply polls a
// Framebuffer and blits it to a window, the way vcs_main.go's fastImage
// pushes TIA output to an sdl.Surface. Kept separate from Framebuffer so
// headless use (tests, PNG dumps) never touches SDL.
type SDLSink struct {
	fb      *Framebuffer
	scale   int
	window  *sdl.Window
	surface *sdl.Surface
}

// NewSDLSink opens a window sized to fb scaled by scale and returns a sink
// that can repeatedly blit fb's current contents into it.
func NewSDLSink(fb *Framebuffer, title string, scale int) (*SDLSink, error) {
	if scale < 1 {
		scale = 1
	}
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}
	w, h := int32(fb.width*scale), int32(fb.height*scale)
	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		w, h, sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("sdl create window: %w", err)
	}
	surface, err := window.GetSurface()
	if err != nil {
		return nil, fmt.Errorf("sdl get surface: %w", err)
	}
	return &SDLSink{fb: fb, scale: scale, window: window, surface: surface}, nil
}

// Present draws the current framebuffer contents to the window, scaling
// each logical pixel up to a scale x scale block with one sdl.Surface.Set
// call (and one sdl.Color conversion) per output pixel.
func (s *SDLSink) Present() error {
	for y := 0; y < s.fb.height; y++ {
		for x := 0; x < s.fb.width; x++ {
			c := rgb332(s.fb.pixels[y*s.fb.width+x])
			packed := sdl.MapRGBA(s.surface.Format, c.R, c.G, c.B, c.A)
			for sy := 0; sy < s.scale; sy++ {
				for sx := 0; sx < s.scale; sx++ {
					if err := s.surface.Set(x*s.scale+sx, y*s.scale+sy, rgbaFromPacked(s.surface, packed)); err != nil {
						return err
					}
				}
			}
		}
	}
	return s.window.UpdateSurface()
}

// rgbaFromPacked exists only so Present can reuse sdl.Surface.Set's
// color.Color signature after already mapping to the surface's native
// pixel format.
func rgbaFromPacked(surface *sdl.Surface, packed uint32) sdl.Color {
	r, g, b, a := sdl.GetRGBA(packed, surface.Format)
	return sdl.Color{R: r, G: g, B: b, A: a}
}

// Close releases the SDL window and shuts down the video subsystem.
func (s *SDLSink) Close() {
	s.window.Destroy()
	sdl.Quit()
}
