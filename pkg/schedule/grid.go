package schedule

import (
	"errors"
	"fmt"
)

// Cell is one rectangle of a day table. It starts at Column of its row and
// covers Rowspan rows and Colspan columns.
type Cell struct {
	Item    *ScheduleItem `json:"item,omitempty"` // nil for a filler cell
	Venue   Venue         `json:"venue"`          // The item's venue, or the first covered venue of a filler
	Column  int           `json:"column"`
	Rowspan int           `json:"rowspan"`
	Colspan int           `json:"colspan"`
}

// Empty reports whether the cell is a filler with no item.
func (c Cell) Empty() bool {
	return c.Item == nil
}

// Row is one slot of a day table and the cells that start in it.
type Row struct {
	Slot  ResolvedSlot `json:"slot"`
	Cells []Cell       `json:"cells"`
}

// DayTable is the table of one day. Err is set, and Rows is empty, when the
// day's slots could not be resolved.
type DayTable struct {
	Day    Day     `json:"day"`
	Venues []Venue `json:"venues"`
	Rows   []Row   `json:"rows"`
	Err    error   `json:"-"`
}

// BuildTable lays out a day as rows of slots and columns of permitted venues.
//
// An item attached to consecutive slots of its venue becomes one cell with a
// rowspan; empty columns are merged into a neighbouring occupied cell of the
// same row (preceding if there is one, otherwise following). Cells never
// overlap and every row that has cells is fully covered; a row with no items
// and nothing spanning into it has no cells at all.
func (s *Snapshot) BuildTable(dayID string) ([]Row, error) {
	slots, err := s.ResolveDay(dayID)
	if err != nil {
		return nil, err
	}

	g := s.newGrid(slots, s.VenuesForDay(dayID))

	rows := make([]Row, len(slots))
	for r := range slots {
		rows[r] = Row{Slot: slots[r], Cells: g.buildRow(r)}
	}
	return rows, nil
}

// BuildSchedule builds the table of every day in ascending date order.
// Days that fail carry their error in DayTable.Err; the returned error joins
// them so callers can refuse to render just those days.
func (s *Snapshot) BuildSchedule() ([]DayTable, error) {
	var tables []DayTable
	var errs []error

	for _, day := range s.Days() {
		table := DayTable{Day: day, Venues: s.VenuesForDay(day.ID)}

		rows, err := s.BuildTable(day.ID)
		if err != nil {
			table.Err = err
			errs = append(errs, fmt.Errorf("failed to build table for %s: %w", day.Date.Format("2006-01-02"), err))
		} else {
			table.Rows = rows
		}

		tables = append(tables, table)
	}

	return tables, errors.Join(errs...)
}

// grid is the transient working state of one BuildTable call.
type grid struct {
	venues []Venue
	occ    [][][]*ScheduleItem // [row][column] -> items, ordered by id
	taken  [][]bool            // [row][column] covered by a cell already
}

func (s *Snapshot) newGrid(slots []ResolvedSlot, venues []Venue) *grid {
	rowOf := make(map[string]int, len(slots))
	for r, rs := range slots {
		rowOf[rs.Slot.ID] = r
	}
	colOf := make(map[string]int, len(venues))
	for c, v := range venues {
		colOf[v.ID] = c
	}

	g := &grid{
		venues: venues,
		occ:    make([][][]*ScheduleItem, len(slots)),
		taken:  make([][]bool, len(slots)),
	}
	for r := range slots {
		g.occ[r] = make([][]*ScheduleItem, len(venues))
		g.taken[r] = make([]bool, len(venues))
	}

	items := s.Items()
	for k := range items {
		item := &items[k]
		c, ok := colOf[item.VenueID]
		if !ok {
			continue
		}
		seen := make(map[int]bool)
		for _, slotID := range item.SlotIDs {
			r, ok := rowOf[slotID]
			if !ok || seen[r] {
				continue
			}
			seen[r] = true
			g.occ[r][c] = append(g.occ[r][c], item)
		}
	}

	return g
}

func (g *grid) buildRow(r int) []Cell {
	ncols := len(g.venues)

	// Row-span pass: anchor a cell at every occupied column not yet covered.
	anchors := make(map[int]*Cell)
	covered := false
	for c := 0; c < ncols; c++ {
		if g.taken[r][c] {
			covered = true
			continue
		}
		if len(g.occ[r][c]) == 0 {
			continue
		}

		item := g.occ[r][c][0]
		span := 1
		for next := r + 1; next < len(g.occ) && !g.taken[next][c] && containsItem(g.occ[next][c], item); next++ {
			span++
		}
		g.claim(r, span, c, c+1)
		anchors[c] = &Cell{Item: item, Venue: g.venues[c], Column: c, Rowspan: span, Colspan: 1}
	}

	if len(anchors) == 0 && !covered {
		return []Cell{}
	}

	// Col-span pass over the row, left to right.
	cells := make([]Cell, 0, ncols)
	last := -1    // index in cells of the occupied cell that may still grow right
	pending := -1 // first column of a run of empty columns with no owner yet

	flush := func(end int) {
		if pending < 0 {
			return
		}
		g.claim(r, 1, pending, end)
		cells = append(cells, Cell{Venue: g.venues[pending], Column: pending, Rowspan: 1, Colspan: end - pending})
		pending = -1
	}

	for c := 0; c < ncols; c++ {
		if anchor, ok := anchors[c]; ok {
			if pending >= 0 && g.free(r, anchor.Rowspan, pending, c) {
				g.claim(r, anchor.Rowspan, pending, c)
				anchor.Colspan += c - pending
				anchor.Column = pending
				pending = -1
			} else {
				flush(c)
			}
			cells = append(cells, *anchor)
			last = len(cells) - 1
			continue
		}

		if g.taken[r][c] {
			// Covered by a cell from an earlier row; segments end here.
			flush(c)
			last = -1
			continue
		}

		if pending < 0 && last >= 0 && g.free(r, cells[last].Rowspan, c, c+1) {
			g.claim(r, cells[last].Rowspan, c, c+1)
			cells[last].Colspan++
			continue
		}

		last = -1
		if pending < 0 {
			pending = c
		}
	}
	flush(ncols)

	return cells
}

// free reports whether columns [from, to) are uncovered and empty for rowspan rows from r.
func (g *grid) free(r, rowspan, from, to int) bool {
	for k := r; k < r+rowspan; k++ {
		for c := from; c < to; c++ {
			if g.taken[k][c] || len(g.occ[k][c]) > 0 {
				return false
			}
		}
	}
	return true
}

func (g *grid) claim(r, rowspan, from, to int) {
	for k := r; k < r+rowspan; k++ {
		for c := from; c < to; c++ {
			g.taken[k][c] = true
		}
	}
}

func containsItem(items []*ScheduleItem, item *ScheduleItem) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}
