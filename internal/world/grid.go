// Bounded 2D grid with obstacle layer and agent occupancy index
package world

import "sort"

// Coord is a cell position on the grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Chebyshev returns the Chebyshev (8-neighborhood) distance to o.
// This is the single distance metric used for movement, sensing,
// communication range and nearest-hub selection.
func (c Coord) Chebyshev(o Coord) int {
	dx := c.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := c.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// Grid is a bounded width x height cell space. Multiple agents may occupy
// one cell; obstacle cells admit no drone. The obstacle layer is fixed
// after initialization.
type Grid struct {
	Width  int
	Height int

	obstacles map[Coord]struct{}
	occupancy map[Coord]map[string]struct{}
}

// NewGrid creates an empty grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:     width,
		Height:    height,
		obstacles: make(map[Coord]struct{}),
		occupancy: make(map[Coord]map[string]struct{}),
	}
}

// AddObstacle marks a cell as impassable. Only called during world setup.
func (g *Grid) AddObstacle(c Coord) {
	g.obstacles[c] = struct{}{}
}

// InBounds reports whether c lies inside the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// IsObstacle reports whether c is an obstacle cell.
func (g *Grid) IsObstacle(c Coord) bool {
	_, ok := g.obstacles[c]
	return ok
}

// Walkable reports whether a drone may enter c.
func (g *Grid) Walkable(c Coord) bool {
	return g.InBounds(c) && !g.IsObstacle(c)
}

// Neighbors returns all in-bounds cells within the given Chebyshev radius
// of c, excluding c itself. A radius of 0 yields no cells.
func (g *Grid) Neighbors(c Coord, radius int) []Coord {
	if radius <= 0 {
		return nil
	}
	out := make([]Coord, 0, (2*radius+1)*(2*radius+1)-1)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := Coord{X: c.X + dx, Y: c.Y + dy}
			if g.InBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// FreeCells returns the number of non-obstacle cells.
func (g *Grid) FreeCells() int {
	return g.Width*g.Height - len(g.obstacles)
}

// Place records an agent id at a cell.
func (g *Grid) Place(id string, c Coord) {
	cell, ok := g.occupancy[c]
	if !ok {
		cell = make(map[string]struct{})
		g.occupancy[c] = cell
	}
	cell[id] = struct{}{}
}

// Move relocates an agent id between cells.
func (g *Grid) Move(id string, from, to Coord) {
	if cell, ok := g.occupancy[from]; ok {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.occupancy, from)
		}
	}
	g.Place(id, to)
}

// Remove deletes an agent id from a cell.
func (g *Grid) Remove(id string, c Coord) {
	if cell, ok := g.occupancy[c]; ok {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.occupancy, c)
		}
	}
}

// Occupants returns the agent ids at c in sorted order.
func (g *Grid) Occupants(c Coord) []string {
	cell, ok := g.occupancy[c]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(cell))
	for id := range cell {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
