package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dyluth/agenda/pkg/schedule"
	"github.com/olekukonko/tablewriter"
)

// Markers used in text tables for positions covered by a cell that starts elsewhere.
const (
	MarkRowSpan = "|"  // covered by a cell from an earlier row
	MarkColSpan = "<"  // covered by the cell to the left
	MarkEmpty   = "--" // filler cell
)

// ItemTitle returns Title truncated to one line of 40 characters.
func ItemTitle(snap *schedule.Snapshot, item schedule.ScheduleItem) string {
	return truncate(Title(snap, item), 40)
}

// Title returns the display text of a schedule item: the talk title, the page
// name or, failing both, the free-text details.
func Title(snap *schedule.Snapshot, item schedule.ScheduleItem) string {
	var title string

	talkID, hasTalk := item.Content.TalkID()
	pageID, hasPage := item.Content.PageID()
	if hasTalk {
		if talk, ok := snap.Talk(talkID); ok {
			title = talk.Title
		} else {
			title = "talk " + talkID
		}
	}
	if hasPage {
		name := "page " + pageID
		if page, ok := snap.Page(pageID); ok {
			name = page.Name
		}
		if title != "" {
			title += " / " + name
		} else {
			title = name
		}
	}
	if title == "" {
		title = item.Details
	}

	return title
}

// DayGrid converts one day table to a matrix of display strings, one row per
// slot and one column per venue. Positions covered by a spanning cell carry
// MarkRowSpan or MarkColSpan.
func DayGrid(snap *schedule.Snapshot, table schedule.DayTable) [][]string {
	ncols := len(table.Venues)
	grid := make([][]string, len(table.Rows))
	for r := range grid {
		grid[r] = make([]string, ncols)
	}

	for r, row := range table.Rows {
		for _, cell := range row.Cells {
			text := MarkEmpty
			if cell.Item != nil {
				text = ItemTitle(snap, *cell.Item)
			}
			for k := r; k < r+cell.Rowspan; k++ {
				for c := cell.Column; c < cell.Column+cell.Colspan; c++ {
					switch {
					case k == r && c == cell.Column:
						grid[k][c] = text
					case k == r:
						grid[k][c] = MarkColSpan
					default:
						grid[k][c] = MarkRowSpan
					}
				}
			}
		}
	}

	return grid
}

// FormatDay writes one day as a text table to the provided writer.
func FormatDay(w io.Writer, snap *schedule.Snapshot, table schedule.DayTable) error {
	fmt.Fprintf(w, "%s (%s)\n", table.Day.Date.Format("Monday 2 January 2006"), table.Day.ID)

	if table.Err != nil {
		fmt.Fprintf(w, "  cannot lay out this day: %v\n\n", table.Err)
		return nil
	}
	if len(table.Rows) == 0 || len(table.Venues) == 0 {
		fmt.Fprintf(w, "  nothing scheduled\n\n")
		return nil
	}

	header := []any{"TIME"}
	for _, v := range table.Venues {
		header = append(header, v.Name)
	}

	grid := DayGrid(snap, table)
	rows := make([][]string, 0, len(grid))
	for r, cells := range grid {
		slot := table.Rows[r].Slot
		line := append([]string{fmt.Sprintf("%s-%s", slot.Start, slot.End)}, cells...)
		rows = append(rows, line)
	}

	tw := tablewriter.NewWriter(w)
	tw.Header(header...)
	if err := tw.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	if err := tw.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	fmt.Fprintln(w)

	return nil
}

// FormatSchedule writes every day table in order. Returns the number of days written.
func FormatSchedule(w io.Writer, snap *schedule.Snapshot, tables []schedule.DayTable, conference string) (int, error) {
	if len(tables) == 0 {
		fmt.Fprintf(w, "No days found for conference '%s'\n", conference)
		return 0, nil
	}

	fmt.Fprintf(w, "Schedule for conference '%s':\n\n", conference)
	for _, table := range tables {
		if err := FormatDay(w, snap, table); err != nil {
			return 0, err
		}
	}
	return len(tables), nil
}

// ScheduleJSON is the machine-readable form of a built schedule.
type ScheduleJSON struct {
	Conference string    `json:"conference"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	Days       []DayJSON `json:"days"`
}

// DayJSON is one day of ScheduleJSON. Error is set instead of Rows when the
// day could not be laid out.
type DayJSON struct {
	schedule.DayTable
	Error string `json:"error,omitempty"`
}

// FormatScheduleJSON writes the schedule as pretty-printed JSON.
func FormatScheduleJSON(w io.Writer, conference, snapshotID string, tables []schedule.DayTable) error {
	out := ScheduleJSON{Conference: conference, SnapshotID: snapshotID, Days: make([]DayJSON, 0, len(tables))}
	for _, table := range tables {
		day := DayJSON{DayTable: table}
		if table.Err != nil {
			day.Error = table.Err.Error()
		}
		out.Days = append(out.Days, day)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schedule to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)

	return nil
}

// truncate keeps the first non-empty line, shortened to max characters.
// Empty text returns "-".
func truncate(text string, max int) string {
	var first string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			first = trimmed
			break
		}
	}
	if first == "" {
		return "-"
	}

	runes := []rune(first)
	if len(runes) > max {
		return string(runes[:max-3]) + "..."
	}
	return first
}
