package store

import (
	"encoding/json"

	"github.com/kintreehq/kintree/pkg/gen"
)

// personRow is the GORM row mapping for persons. Event details are
// flattened into columns; photos are BLOBs. Seq preserves creation order
// for deterministic layout input.
type personRow struct {
	ID        string `gorm:"primaryKey"`
	Seq       int64  `gorm:"autoIncrement;uniqueIndex"`
	Rev       string `gorm:"not null"`
	Deleted   bool   `gorm:"not null;default:false;index"`
	CreatedAt int64  `gorm:"not null"`
	UpdatedAt int64  `gorm:"not null"`

	GivenNames   string
	Surname      string
	BirthSurname string
	Sex          string

	BirthDate  string
	BirthPlace string
	DeathDate  string
	DeathPlace string

	Photo      []byte
	PhotoThumb []byte
	Notes      string
}

func (personRow) TableName() string { return "persons" }

// familyRow is the GORM row mapping for family unions. The ordered child
// list is serialized as a JSON array in a TEXT column, since SQLite has no
// native list type and child order is meaningful.
type familyRow struct {
	ID        string `gorm:"primaryKey"`
	Seq       int64  `gorm:"autoIncrement;uniqueIndex"`
	Rev       string `gorm:"not null"`
	Deleted   bool   `gorm:"not null;default:false;index"`
	CreatedAt int64  `gorm:"not null"`
	UpdatedAt int64  `gorm:"not null"`

	Spouse1ID string `gorm:"index"`
	Spouse2ID string `gorm:"index"`
	ChildIDs  string // JSON array of person IDs, birth order

	MarriageDate  string
	MarriagePlace string
	DivorceDate   string
	DivorcePlace  string

	Type string
}

func (familyRow) TableName() string { return "families" }

// treeRow is the GORM row mapping for named tree views.
type treeRow struct {
	ID        string `gorm:"primaryKey"`
	Seq       int64  `gorm:"autoIncrement;uniqueIndex"`
	Rev       string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null"`
	UpdatedAt int64  `gorm:"not null"`

	Name         string `gorm:"not null"`
	Description  string
	RootPersonID string
}

func (treeRow) TableName() string { return "trees" }

func eventFromColumns(date, place string) *gen.EventDetail {
	if date == "" && place == "" {
		return nil
	}
	return &gen.EventDetail{Date: date, Place: place}
}

func eventColumns(e *gen.EventDetail) (date, place string) {
	if e == nil {
		return "", ""
	}
	return e.Date, e.Place
}

func personFromRow(r *personRow) *gen.Person {
	return &gen.Person{
		ID:           r.ID,
		Rev:          r.Rev,
		Deleted:      r.Deleted,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		GivenNames:   r.GivenNames,
		Surname:      r.Surname,
		BirthSurname: r.BirthSurname,
		Sex:          gen.Sex(r.Sex),
		Birth:        eventFromColumns(r.BirthDate, r.BirthPlace),
		Death:        eventFromColumns(r.DeathDate, r.DeathPlace),
		Photo:        r.Photo,
		PhotoThumb:   r.PhotoThumb,
		Notes:        r.Notes,
	}
}

func rowFromPerson(p *gen.Person) *personRow {
	r := &personRow{
		ID:           p.ID,
		Rev:          p.Rev,
		Deleted:      p.Deleted,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		GivenNames:   p.GivenNames,
		Surname:      p.Surname,
		BirthSurname: p.BirthSurname,
		Sex:          string(p.Sex),
		Photo:        p.Photo,
		PhotoThumb:   p.PhotoThumb,
		Notes:        p.Notes,
	}
	r.BirthDate, r.BirthPlace = eventColumns(p.Birth)
	r.DeathDate, r.DeathPlace = eventColumns(p.Death)
	return r
}

func familyFromRow(r *familyRow) (*gen.Family, error) {
	var children []string
	if r.ChildIDs != "" {
		if err := json.Unmarshal([]byte(r.ChildIDs), &children); err != nil {
			return nil, err
		}
	}
	return &gen.Family{
		ID:        r.ID,
		Rev:       r.Rev,
		Deleted:   r.Deleted,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Spouse1ID: r.Spouse1ID,
		Spouse2ID: r.Spouse2ID,
		ChildIDs:  children,
		Marriage:  eventFromColumns(r.MarriageDate, r.MarriagePlace),
		Divorce:   eventFromColumns(r.DivorceDate, r.DivorcePlace),
		Type:      gen.UnionType(r.Type),
	}, nil
}

func rowFromFamily(f *gen.Family) (*familyRow, error) {
	children, err := json.Marshal(f.ChildIDs)
	if err != nil {
		return nil, err
	}
	r := &familyRow{
		ID:        f.ID,
		Rev:       f.Rev,
		Deleted:   f.Deleted,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		Spouse1ID: f.Spouse1ID,
		Spouse2ID: f.Spouse2ID,
		ChildIDs:  string(children),
		Type:      string(f.Type),
	}
	r.MarriageDate, r.MarriagePlace = eventColumns(f.Marriage)
	r.DivorceDate, r.DivorcePlace = eventColumns(f.Divorce)
	return r, nil
}
