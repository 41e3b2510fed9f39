package surface

import (
	"math"
	"strings"

	"github.com/san-kum/starfield/internal/starfield"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// CircleFloor is the opacity below which a star is not drawn; braille dots
// have no alpha, so dim stars simply blink out.
const CircleFloor = 0.35

// Braille draws onto a grid of braille cells. The logical viewport set by
// SetSize is stretched over the (Width*2) x (Height*4) dot grid.
type Braille struct {
	Width, Height int
	Grid          [][]rune

	logical  starfield.Size
	detached bool
}

func NewBraille(cols, rows int) *Braille {
	b := &Braille{}
	b.Resize(cols, rows)
	return b
}

// Resize reallocates the grid to cols x rows cells.
func (b *Braille) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	b.Width, b.Height = cols, rows
	b.Grid = make([][]rune, rows)
	for i := range b.Grid {
		b.Grid[i] = make([]rune, cols)
	}
	b.Clear()
}

// Dots is the size of the dot grid.
func (b *Braille) Dots() (int, int) { return b.Width * 2, b.Height * 4 }

func (b *Braille) Context() (starfield.Context, error) {
	if b.detached {
		return nil, starfield.ErrSurfaceUnavailable
	}
	return b, nil
}

func (b *Braille) Detach() { b.detached = true }

func (b *Braille) SetSize(s starfield.Size) { b.logical = s.Clamp() }

func (b *Braille) Clear() {
	for i := range b.Grid {
		for j := range b.Grid[i] {
			b.Grid[i][j] = blank
		}
	}
}

// Set sets a dot at (x, y) in dot coordinates.
func (b *Braille) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= b.Width || row >= b.Height {
		return
	}
	b.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (b *Braille) project(x, y float64) (int, int) {
	w, h := b.Dots()
	lw, lh := float64(b.logical.Width), float64(b.logical.Height)
	if lw == 0 || lh == 0 {
		return int(x), int(y)
	}
	return int(math.Floor(x / lw * float64(w))), int(math.Floor(y / lh * float64(h)))
}

func (b *Braille) FillCircle(x, y, r float64, c starfield.Color) {
	if c.A < CircleFloor {
		return
	}
	cx, cy := b.project(x, y)
	b.Set(cx, cy)
	// stars larger than a dot get a small cross
	w, _ := b.Dots()
	if b.logical.Width > 0 && r/float64(b.logical.Width)*float64(w) >= 1 {
		b.Set(cx-1, cy)
		b.Set(cx+1, cy)
		b.Set(cx, cy-1)
		b.Set(cx, cy+1)
	}
}

func (b *Braille) StrokeLine(x0, y0, x1, y1, _ float64, c starfield.Color) {
	if c.A <= 0 {
		return
	}
	ax, ay := b.project(x0, y0)
	bx, by := b.project(x1, y1)
	b.line(ax, ay, bx, by)
}

// line draws with Bresenham's algorithm
func (b *Braille) line(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		b.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (b *Braille) String() string {
	var sb strings.Builder
	for i, row := range b.Grid {
		sb.WriteString(string(row))
		if i < len(b.Grid)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
