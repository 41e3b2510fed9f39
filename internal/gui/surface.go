package gui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/san-kum/starfield/internal/starfield"
)

// Background is the page color the field is drawn over.
var Background = color.NRGBA{R: 10, G: 10, B: 10, A: 255}

// ImageSurface draws onto an offscreen ebiten image that the window blits
// every Draw. It is only touched from the game loop.
type ImageSurface struct {
	img      *ebiten.Image
	detached bool
}

func NewImageSurface() *ImageSurface { return &ImageSurface{} }

func (s *ImageSurface) Context() (starfield.Context, error) {
	if s.detached {
		return nil, starfield.ErrSurfaceUnavailable
	}
	return s, nil
}

// Detach disposes the image. The renderer stops at its next frame.
func (s *ImageSurface) Detach() {
	s.detached = true
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
}

// Image is the last drawn frame, or nil before the first frame.
func (s *ImageSurface) Image() *ebiten.Image { return s.img }

func (s *ImageSurface) SetSize(size starfield.Size) {
	size = size.Clamp()
	if s.img != nil {
		b := s.img.Bounds()
		if b.Dx() == size.Width && b.Dy() == size.Height {
			return
		}
		s.img.Deallocate()
	}
	s.img = ebiten.NewImage(size.Width, size.Height)
}

func (s *ImageSurface) Clear() {
	if s.img == nil {
		return
	}
	s.img.Fill(Background)
}

func (s *ImageSurface) FillCircle(x, y, r float64, c starfield.Color) {
	if s.img == nil {
		return
	}
	vector.DrawFilledCircle(s.img, float32(x), float32(y), float32(r), c.NRGBA(), true)
}

func (s *ImageSurface) StrokeLine(x0, y0, x1, y1, width float64, c starfield.Color) {
	if s.img == nil {
		return
	}
	vector.StrokeLine(s.img, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), c.NRGBA(), true)
}
