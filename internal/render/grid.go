package render

import (
	"image/color"
	"strings"
)

// Cell is one rendered character.
type Cell struct {
	Glyph rune
	Color color.RGBA
}

// Grid is the character layout of the last rendered frame.
type Grid struct {
	Cols       int
	Rows       int
	Background color.RGBA
	Cells      []Cell
}

func (g *Grid) resize(cols, rows int) {
	g.Cols, g.Rows = cols, rows
	if n := cols * rows; cap(g.Cells) >= n {
		g.Cells = g.Cells[:n]
	} else {
		g.Cells = make([]Cell, n)
	}
}

// At returns the cell at (col, row).
func (g *Grid) At(col, row int) Cell {
	return g.Cells[row*g.Cols+col]
}

// CopyTo copies g into dst, reusing dst's storage.
func (g *Grid) CopyTo(dst *Grid) {
	dst.resize(g.Cols, g.Rows)
	dst.Background = g.Background
	copy(dst.Cells, g.Cells)
}

// Empty reports whether the grid has no cells.
func (g *Grid) Empty() bool { return g.Cols == 0 || g.Rows == 0 }

// Text returns the glyphs as lines of plain text without trailing spaces.
func (g *Grid) Text() string {
	var sb strings.Builder
	sb.Grow(len(g.Cells) + g.Rows)
	line := make([]rune, 0, g.Cols)
	for row := 0; row < g.Rows; row++ {
		line = line[:0]
		for _, c := range g.Cells[row*g.Cols : (row+1)*g.Cols] {
			line = append(line, c.Glyph)
		}
		sb.WriteString(strings.TrimRight(string(line), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
