package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dyluth/agenda/pkg/schedule"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Document is the on-disk YAML form of a schedule snapshot.
type Document struct {
	Days   []DayDoc   `yaml:"days"`
	Venues []VenueDoc `yaml:"venues"`
	Slots  []SlotDoc  `yaml:"slots"`
	Talks  []TalkDoc  `yaml:"talks,omitempty"`
	Pages  []PageDoc  `yaml:"pages,omitempty"`
	Items  []ItemDoc  `yaml:"items"`
}

type DayDoc struct {
	ID   string `yaml:"id"`
	Date string `yaml:"date"` // YYYY-MM-DD
}

type VenueDoc struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Order int      `yaml:"order"`
	Days  []string `yaml:"days,omitempty"`
}

type SlotDoc struct {
	ID       string `yaml:"id"`
	Day      string `yaml:"day"`
	Name     string `yaml:"name,omitempty"`
	Start    string `yaml:"start,omitempty"`
	Previous string `yaml:"previous,omitempty"`
	End      string `yaml:"end"`
}

type TalkDoc struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	Status string `yaml:"status"`
}

type PageDoc struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

type ItemDoc struct {
	ID      string   `yaml:"id"`
	Venue   string   `yaml:"venue"`
	Slots   []string `yaml:"slots"`
	Talk    string   `yaml:"talk,omitempty"`
	Page    string   `yaml:"page,omitempty"`
	Details string   `yaml:"details,omitempty"`
}

// LoadFile reads a YAML snapshot file and builds a Snapshot from it.
func LoadFile(path string) (*schedule.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	snap, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// Load decodes a YAML snapshot document and builds a Snapshot from it.
func Load(r io.Reader) (*schedule.Snapshot, error) {
	data, err := Decode(r)
	if err != nil {
		return nil, err
	}

	snap, err := schedule.NewSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("inconsistent snapshot: %w", err)
	}
	return snap, nil
}

// Decode parses a YAML snapshot document into schedule data without checking
// references between entities.
func Decode(r io.Reader) (schedule.Data, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return schedule.Data{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return doc.ToData()
}

// ToData converts the document to schedule data, parsing dates and times.
func (d *Document) ToData() (schedule.Data, error) {
	var data schedule.Data

	for i, day := range d.Days {
		date, err := time.Parse(dateLayout, day.Date)
		if err != nil {
			return data, fmt.Errorf("days[%d] '%s': invalid date '%s' (expected YYYY-MM-DD)", i, day.ID, day.Date)
		}
		data.Days = append(data.Days, schedule.Day{ID: day.ID, Date: date})
	}

	for _, v := range d.Venues {
		data.Venues = append(data.Venues, schedule.Venue{ID: v.ID, Name: v.Name, Order: v.Order, DayIDs: v.Days})
	}

	for i, s := range d.Slots {
		slot := schedule.Slot{ID: s.ID, DayID: s.Day, Name: s.Name, PreviousSlotID: s.Previous}
		if s.Start != "" {
			start, err := schedule.ParseClock(s.Start)
			if err != nil {
				return data, fmt.Errorf("slots[%d] '%s': start: %w", i, s.ID, err)
			}
			slot.Start = &start
		}
		end, err := schedule.ParseClock(s.End)
		if err != nil {
			return data, fmt.Errorf("slots[%d] '%s': end: %w", i, s.ID, err)
		}
		slot.End = end
		data.Slots = append(data.Slots, slot)
	}

	for _, t := range d.Talks {
		data.Talks = append(data.Talks, schedule.Talk{ID: t.ID, Title: t.Title, Status: schedule.TalkStatus(t.Status)})
	}

	for _, p := range d.Pages {
		data.Pages = append(data.Pages, schedule.Page{ID: p.ID, Name: p.Name, Slug: p.Slug})
	}

	for _, it := range d.Items {
		data.Items = append(data.Items, schedule.ScheduleItem{
			ID:      it.ID,
			VenueID: it.Venue,
			SlotIDs: it.Slots,
			Content: schedule.ContentFromRefs(it.Talk, it.Page),
			Details: it.Details,
		})
	}

	return data, nil
}

// FromData converts schedule data back to its document form.
func FromData(data schedule.Data) *Document {
	doc := &Document{}

	for _, day := range data.Days {
		doc.Days = append(doc.Days, DayDoc{ID: day.ID, Date: day.Date.Format(dateLayout)})
	}
	for _, v := range data.Venues {
		doc.Venues = append(doc.Venues, VenueDoc{ID: v.ID, Name: v.Name, Order: v.Order, Days: v.DayIDs})
	}
	for _, s := range data.Slots {
		sd := SlotDoc{ID: s.ID, Day: s.DayID, Name: s.Name, Previous: s.PreviousSlotID, End: s.End.String()}
		if s.Start != nil {
			sd.Start = s.Start.String()
		}
		doc.Slots = append(doc.Slots, sd)
	}
	for _, t := range data.Talks {
		doc.Talks = append(doc.Talks, TalkDoc{ID: t.ID, Title: t.Title, Status: string(t.Status)})
	}
	for _, p := range data.Pages {
		doc.Pages = append(doc.Pages, PageDoc{ID: p.ID, Name: p.Name, Slug: p.Slug})
	}
	for _, it := range data.Items {
		talk, _ := it.Content.TalkID()
		page, _ := it.Content.PageID()
		doc.Items = append(doc.Items, ItemDoc{
			ID:      it.ID,
			Venue:   it.VenueID,
			Slots:   it.SlotIDs,
			Talk:    talk,
			Page:    page,
			Details: it.Details,
		})
	}

	return doc
}

// Encode writes a snapshot as a YAML document that Load reads back unchanged.
func Encode(w io.Writer, snap *schedule.Snapshot) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(FromData(snap.Data())); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
