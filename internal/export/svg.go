package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/starfield/internal/starfield"
)

// Background is the page color behind an exported frame.
const Background = "#0a0a0a"

// SVG is a surface that keeps the most recent frame as SVG elements.
type SVG struct {
	size  starfield.Size
	body  strings.Builder
	count int
}

func NewSVG() *SVG { return &SVG{} }

func (s *SVG) Context() (starfield.Context, error) { return s, nil }

func (s *SVG) SetSize(size starfield.Size) { s.size = size.Clamp() }

func (s *SVG) Clear() {
	s.body.Reset()
	s.count = 0
}

func (s *SVG) FillCircle(x, y, r float64, c starfield.Color) {
	s.body.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.3f"/>
`, x, y, r, rgb(c), c.A))
	s.count++
}

func (s *SVG) StrokeLine(x0, y0, x1, y1, width float64, c starfield.Color) {
	s.body.WriteString(fmt.Sprintf(`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%.3f" stroke-width="%.1f"/>
`, x0, y0, x1, y1, rgb(c), c.A, width))
	s.count++
}

// Elements is the number of shapes in the current frame.
func (s *SVG) Elements() int { return s.count }

func (s *SVG) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, s.size.Width, s.size.Height, s.size.Width, s.size.Height, Background))
	sb.WriteString(s.body.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

func rgb(c starfield.Color) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}
