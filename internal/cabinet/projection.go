package cabinet

import (
	"sort"
	"time"

	"github.com/luisceladatrigo/hw-mockup/internal/grid"
)

// DefaultCycleLength is the wall-clock quantum used to rotate collision
// colors on a shared line.
const DefaultCycleLength = 1000 * time.Millisecond

// LitLine is one illuminated row-line or column-line. Color is the value to
// display at the resolved instant; Colors is the full ordered collision list.
type LitLine struct {
	Index  int          `json:"index"`
	Color  grid.Color   `json:"color"`
	Colors []grid.Color `json:"colors"`
}

// CellMarker is the intersection marker of one mark at its exact cell.
// Intersections never rotate or cancel; each mark keeps its own cell.
type CellMarker struct {
	ID    string     `json:"id"`
	Row   int        `json:"row"`
	Col   int        `json:"col"`
	Color grid.Color `json:"color"`
}

// Projection is the compact display representation derived from a snapshot.
type Projection struct {
	Rows  []LitLine    `json:"rows"`
	Cols  []LitLine    `json:"cols"`
	Cells []CellMarker `json:"cells"`
}

// Resolver derives lit lines from a mark snapshot. It never mutates marks;
// its only inputs are the snapshot and the current time, so concurrent
// callers at the same instant observe the same result.
type Resolver struct {
	cycle time.Duration
	now   func() time.Time
}

// NewResolver builds a resolver with the given collision cycle length. A
// non-positive cycle falls back to DefaultCycleLength; a nil clock falls
// back to time.Now.
func NewResolver(cycle time.Duration, now func() time.Time) *Resolver {
	if cycle <= 0 {
		cycle = DefaultCycleLength
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{cycle: cycle, now: now}
}

// Project resolves the snapshot at the resolver clock's current instant.
func (r *Resolver) Project(marks []grid.Mark) Projection {
	return r.ProjectAt(marks, r.now())
}

// ProjectAt resolves the snapshot at an explicit instant. Marks are consumed
// in snapshot order, which fixes the collision color order and makes the
// rotation reproducible from the timestamp alone.
func (r *Resolver) ProjectAt(marks []grid.Mark, now time.Time) Projection {
	rows := make(map[int][]grid.Color)
	cols := make(map[int][]grid.Color)
	cells := make([]CellMarker, 0, len(marks))
	for i := range marks {
		m := marks[i]
		rows[m.Row] = appendColor(rows[m.Row], m.Color)
		cols[m.Col] = appendColor(cols[m.Col], m.Color)
		cells = append(cells, CellMarker{
			ID:    m.ID,
			Row:   m.Row,
			Col:   m.Col,
			Color: m.Color,
		})
	}
	return Projection{
		Rows:  r.litLines(rows, now),
		Cols:  r.litLines(cols, now),
		Cells: cells,
	}
}

// litLines orders the touched line indexes and resolves each line's color.
func (r *Resolver) litLines(byIndex map[int][]grid.Color, now time.Time) []LitLine {
	out := make([]LitLine, 0, len(byIndex))
	for index, colors := range byIndex {
		out = append(out, LitLine{
			Index:  index,
			Color:  r.resolveColor(colors, now),
			Colors: colors,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// resolveColor picks the displayed color for one line. A single color shows
// continuously; a collision rotates through the ordered list one color per
// wall-clock cycle.
func (r *Resolver) resolveColor(colors []grid.Color, now time.Time) grid.Color {
	if len(colors) == 1 {
		return colors[0]
	}
	slot := now.UnixMilli() / r.cycle.Milliseconds()
	idx := int(slot % int64(len(colors)))
	if idx < 0 {
		idx += len(colors)
	}
	return colors[idx]
}

// appendColor accumulates distinct colors in first-touch order. Two marks of
// the same color on one line still count as a single steady color.
func appendColor(colors []grid.Color, c grid.Color) []grid.Color {
	for i := range colors {
		if colors[i] == c {
			return colors
		}
	}
	return append(colors, c)
}
