// Package gen defines the genealogy data model: persons, family unions,
// named trees, and the pure relationship queries over them.
//
// Entities reference each other exclusively by ID (arena style). A Family
// links up to two spouses to an ordered list of children; the spouse pair
// is semantically an unordered 2-element set, so code comparing spouse
// pairs must use [PairKey] rather than positional comparison.
//
// All queries in this package are pure functions over in-memory snapshots.
// They never touch storage and never fail on missing links: a person with
// no birth family or no spouse families simply yields empty results.
package gen

import (
	"time"

	"github.com/google/uuid"
)

// Sex is the recorded sex of a person.
type Sex string

// Recognized sex values. Anything unrecognized decodes to SexUnknown.
const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// UnionType classifies a family union.
type UnionType string

// Recognized union types.
const (
	UnionMarried     UnionType = "married"
	UnionPartnership UnionType = "partnership"
	UnionUnknown     UnionType = "unknown"
)

// EventDetail is a life event with free-form date and place text.
// Dates are deliberately unstructured: "1854", "Jun 1920" and
// "14 February 1891" are all valid and must survive round-trips intact.
type EventDetail struct {
	Date  string `json:"date,omitempty"`
	Place string `json:"place,omitempty"`
}

// Empty reports whether the event carries no information.
func (e *EventDetail) Empty() bool {
	return e == nil || (e.Date == "" && e.Place == "")
}

// Person is a single individual record.
//
// Rev is an opaque token re-minted on every mutation; it exists for future
// conflict detection and carries no ordering semantics. Deleted marks a
// soft-deleted record, which is excluded from layout, queries and export.
type Person struct {
	ID        string `json:"id"`
	Rev       string `json:"rev"`
	Deleted   bool   `json:"_deleted,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`

	GivenNames   string `json:"givenNames"`
	Surname      string `json:"surname"`
	BirthSurname string `json:"birthSurname,omitempty"`
	Sex          Sex    `json:"sex"`

	Birth *EventDetail `json:"birth,omitempty"`
	Death *EventDetail `json:"death,omitempty"`

	Photo      []byte `json:"photo,omitempty"`
	PhotoThumb []byte `json:"photoThumb,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// FullName returns "GivenNames Surname" with missing parts elided.
func (p *Person) FullName() string {
	switch {
	case p.GivenNames == "":
		return p.Surname
	case p.Surname == "":
		return p.GivenNames
	default:
		return p.GivenNames + " " + p.Surname
	}
}

// Family is a parental/marital unit linking 0-2 spouses to an ordered list
// of children. Child order is meaningful (birth order). Either spouse slot
// may be empty to support single-parent families.
type Family struct {
	ID        string `json:"id"`
	Rev       string `json:"rev"`
	Deleted   bool   `json:"_deleted,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`

	Spouse1ID string   `json:"spouse1Id,omitempty"`
	Spouse2ID string   `json:"spouse2Id,omitempty"`
	ChildIDs  []string `json:"childIds"`

	Marriage *EventDetail `json:"marriage,omitempty"`
	Divorce  *EventDetail `json:"divorce,omitempty"`

	Type UnionType `json:"type"`
}

// HasSpouse reports whether id occupies either spouse slot.
func (f *Family) HasSpouse(id string) bool {
	return id != "" && (f.Spouse1ID == id || f.Spouse2ID == id)
}

// HasChild reports whether id appears in the family's child list.
func (f *Family) HasChild(id string) bool {
	for _, c := range f.ChildIDs {
		if c == id {
			return true
		}
	}
	return false
}

// OtherSpouse returns the spouse that is not id, or "" if id is not a
// spouse of this family or the other slot is empty.
func (f *Family) OtherSpouse(id string) string {
	switch id {
	case f.Spouse1ID:
		return f.Spouse2ID
	case f.Spouse2ID:
		return f.Spouse1ID
	default:
		return ""
	}
}

// PairKey returns a canonical key for an unordered spouse pair.
// PairKey(a, b) == PairKey(b, a) for all a, b, so families keyed by their
// spouse pair can be found regardless of slot assignment.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

// Tree is a named view over the person/family set with an optional default
// focal person for layout.
type Tree struct {
	ID           string `json:"id"`
	Rev          string `json:"rev"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	RootPersonID string `json:"rootPersonId,omitempty"`
}

// NewID mints a fresh entity identifier.
func NewID() string { return uuid.NewString() }

// NewRev mints a fresh revision token.
func NewRev() string { return uuid.NewString() }

// Now returns the current unix timestamp used for entity bookkeeping.
func Now() int64 { return time.Now().Unix() }

// ParseSex maps a GEDCOM-style sex code to a Sex value.
// "M" maps to male, "F" to female, anything else to unknown.
func ParseSex(code string) Sex {
	switch code {
	case "M":
		return SexMale
	case "F":
		return SexFemale
	default:
		return SexUnknown
	}
}
