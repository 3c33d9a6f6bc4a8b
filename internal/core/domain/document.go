package domain

import (
	"fmt"
	"strings"
)

// DocumentSet is one published, versioned text such as a single Bible
// translation. It is decoded from the remote JSON body and kept in memory
// for the duration of a session.
type DocumentSet struct {
	// Language is the human-readable language name.
	Language string `json:"language"`

	// Locale is the language tag used in cache keys (e.g. "en").
	Locale string `json:"locale"`

	// Code identifies the set. Comparison is case-insensitive.
	Code string `json:"code"`

	// DisplayName is the full title shown to readers.
	DisplayName string `json:"name"`

	// Year is the publication year.
	Year int `json:"year"`

	// Description is free text from the publisher.
	Description string `json:"description,omitempty"`

	// LastUpdatedAt is the publisher's version stamp. It is opaque and
	// only ever compared for equality.
	LastUpdatedAt string `json:"last_update_DT"`

	// Collections are the books, in canonical order.
	Collections []Collection `json:"books"`
}

// Collection is a named group of sections (a book).
type Collection struct {
	// Name is the collection title.
	Name string `json:"name"`

	// Sections are the chapters, in order.
	Sections []Section `json:"chapters"`
}

// Section is an ordered list of item texts (the verses of a chapter).
// Items may embed pericope markers, see Tokenize.
type Section []string

// Signature identifies a specific version of a document set.
// Two sets with equal signatures are the same publication.
type Signature struct {
	Locale        string
	Code          string
	Year          int
	DisplayName   string
	LastUpdatedAt string
}

// String returns the signature in its display form.
func (s Signature) String() string {
	return fmt.Sprintf("%s, %s, %d, %s, %s", s.Locale, s.Code, s.Year, s.DisplayName, s.LastUpdatedAt)
}

// Signature returns the identity of this version of the set.
func (d *DocumentSet) Signature() Signature {
	return Signature{
		Locale:        d.Locale,
		Code:          d.Code,
		Year:          d.Year,
		DisplayName:   d.DisplayName,
		LastUpdatedAt: d.LastUpdatedAt,
	}
}

// MatchesCode reports whether code identifies this set, ignoring case.
func (d *DocumentSet) MatchesCode(code string) bool {
	return strings.EqualFold(d.Code, code)
}

// Clamp moves pos into the valid range of this set. Each coordinate is
// clamped in turn: collection first, then section within that collection,
// then item within that section. Values below 1 become 1 and values above
// the maximum become the maximum.
//
// Returns false if the set has no content at the clamped location.
func (d *DocumentSet) Clamp(pos Position) (Position, bool) {
	if len(d.Collections) == 0 {
		return pos, false
	}
	pos.Collection = clamp(pos.Collection, len(d.Collections))

	sections := d.Collections[pos.Collection-1].Sections
	if len(sections) == 0 {
		return pos, false
	}
	pos.Section = clamp(pos.Section, len(sections))

	items := sections[pos.Section-1]
	if len(items) == 0 {
		return pos, false
	}
	pos.Item = clamp(pos.Item, len(items))

	return pos, true
}

// CollectionName returns the name of the collection at the clamped index.
func (d *DocumentSet) CollectionName(collection int) (string, bool) {
	if len(d.Collections) == 0 {
		return "", false
	}
	return d.Collections[clamp(collection, len(d.Collections))-1].Name, true
}

// Item returns the text at pos without clamping.
// Returns false if any coordinate is out of range.
func (d *DocumentSet) Item(pos Position) (string, bool) {
	section, ok := d.Section(pos.Collection, pos.Section)
	if !ok || pos.Item < 1 || pos.Item > len(section) {
		return "", false
	}
	return section[pos.Item-1], true
}

// Section returns the section at the given 1-based coordinates without clamping.
func (d *DocumentSet) Section(collection, section int) (Section, bool) {
	c, ok := d.Collection(collection)
	if !ok || section < 1 || section > len(c.Sections) {
		return nil, false
	}
	return c.Sections[section-1], true
}

// Collection returns the collection at the 1-based index without clamping.
func (d *DocumentSet) Collection(collection int) (*Collection, bool) {
	if collection < 1 || collection > len(d.Collections) {
		return nil, false
	}
	return &d.Collections[collection-1], true
}

func clamp(v, upper int) int {
	if v < 1 {
		return 1
	}
	if v > upper {
		return upper
	}
	return v
}
