package schedule

import (
	"encoding/json"
	"fmt"
)

// ContentKind tags the variant held by a ContentRef.
type ContentKind int

const (
	// ContentNone means the item references no talk or page.
	ContentNone ContentKind = iota
	// ContentTalk means the item references a talk.
	ContentTalk
	// ContentPage means the item references a page.
	ContentPage
	// ContentConflict means the source data named both a talk and a page.
	// It is never valid and is reported by ValidateItems.
	ContentConflict
)

func (k ContentKind) String() string {
	switch k {
	case ContentNone:
		return "none"
	case ContentTalk:
		return "talk"
	case ContentPage:
		return "page"
	case ContentConflict:
		return "conflict"
	default:
		return fmt.Sprintf("ContentKind(%d)", int(k))
	}
}

// ContentRef is what a schedule item shows: Talk(id) | Page(id) | None,
// plus the explicit Conflict state for data that named both.
type ContentRef struct {
	kind   ContentKind
	talkID string
	pageID string
}

// NoContent returns an empty reference.
func NoContent() ContentRef { return ContentRef{} }

// TalkContent references a talk.
func TalkContent(talkID string) ContentRef {
	return ContentRef{kind: ContentTalk, talkID: talkID}
}

// PageContent references a page.
func PageContent(pageID string) ContentRef {
	return ContentRef{kind: ContentPage, pageID: pageID}
}

// ContentFromRefs builds a reference from two optional ids, as stored by
// relational sources. Both set yields ContentConflict.
func ContentFromRefs(talkID, pageID string) ContentRef {
	switch {
	case talkID != "" && pageID != "":
		return ContentRef{kind: ContentConflict, talkID: talkID, pageID: pageID}
	case talkID != "":
		return TalkContent(talkID)
	case pageID != "":
		return PageContent(pageID)
	default:
		return NoContent()
	}
}

// Kind returns the variant tag.
func (c ContentRef) Kind() ContentKind { return c.kind }

// TalkID returns the referenced talk id, if any.
func (c ContentRef) TalkID() (string, bool) {
	return c.talkID, c.talkID != ""
}

// PageID returns the referenced page id, if any.
func (c ContentRef) PageID() (string, bool) {
	return c.pageID, c.pageID != ""
}

// keys returns the duplicate-detection keys of the referenced content.
func (c ContentRef) keys() []string {
	var keys []string
	if c.talkID != "" {
		keys = append(keys, "talk:"+c.talkID)
	}
	if c.pageID != "" {
		keys = append(keys, "page:"+c.pageID)
	}
	return keys
}

func (c ContentRef) String() string {
	switch c.kind {
	case ContentTalk:
		return "talk:" + c.talkID
	case ContentPage:
		return "page:" + c.pageID
	case ContentConflict:
		return fmt.Sprintf("conflict(talk:%s, page:%s)", c.talkID, c.pageID)
	default:
		return "none"
	}
}

type contentJSON struct {
	Talk string `json:"talk,omitempty"`
	Page string `json:"page,omitempty"`
}

// MarshalJSON encodes the reference as {"talk": id} / {"page": id} / {}.
func (c ContentRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(contentJSON{Talk: c.talkID, Page: c.pageID})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (c *ContentRef) UnmarshalJSON(data []byte) error {
	var raw contentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode content reference: %w", err)
	}
	*c = ContentFromRefs(raw.Talk, raw.Page)
	return nil
}
