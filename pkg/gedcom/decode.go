package gedcom

import (
	"regexp"
	"strings"

	"github.com/kintreehq/kintree/pkg/gen"
)

// nameRe matches the composite GEDCOM name form "Given /Surname/".
var nameRe = regexp.MustCompile(`^([^/]*)/([^/]*)/`)

// decoder holds the pointer→ID map for one Decode call. The map is local
// state created per call, so separate imports can never leak IDs into
// each other: re-importing the same document yields entirely fresh IDs.
type decoder struct {
	pointerID map[string]string
}

// Decode parses GEDCOM text into persons and families, in document order.
//
// Malformed input is never an error: individuals and families without a
// cross-reference pointer are skipped, unparseable name or date fragments
// fall back to safe defaults, and a document yielding no records at all
// decodes to empty slices.
func Decode(text string) ([]*gen.Person, []*gen.Family) {
	d := &decoder{pointerID: make(map[string]string)}
	roots := parseRecords(text)

	var persons []*gen.Person
	for _, rec := range collect(roots, "INDI") {
		if p := d.decodePerson(rec); p != nil {
			persons = append(persons, p)
		}
	}

	var families []*gen.Family
	for _, rec := range collect(roots, "FAM") {
		if f := d.decodeFamily(rec); f != nil {
			families = append(families, f)
		}
	}

	return persons, families
}

// id returns the stable internal ID for a pointer, minting one on first
// sight. Within one Decode call the mapping is bijective.
func (d *decoder) id(pointer string) string {
	if id, ok := d.pointerID[pointer]; ok {
		return id
	}
	id := gen.NewID()
	d.pointerID[pointer] = id
	return id
}

func (d *decoder) decodePerson(rec *Record) *gen.Person {
	if rec.Pointer == "" {
		return nil // structural anomaly: skipped, not counted
	}
	p := &gen.Person{ID: d.id(rec.Pointer), Sex: gen.SexUnknown}

	p.GivenNames, p.Surname = decodeName(rec.First("NAME"))
	if sex := rec.First("SEX"); sex != nil {
		p.Sex = gen.ParseSex(strings.TrimSpace(sex.Data))
	}
	p.Birth = decodeEvent(rec.First("BIRT"))
	p.Death = decodeEvent(rec.First("DEAT"))
	if note := rec.First("NOTE"); note != nil {
		p.Notes = decodeNote(note)
	}
	return p
}

// decodeName extracts given names and surname from a NAME record,
// preferring structured GIVN/SURN sub-fields and falling back to the
// composite "Given /Surname/" form. Yields "Unknown" with an empty
// surname when nothing parseable is present.
func decodeName(name *Record) (given, surname string) {
	if name != nil {
		given = strings.TrimSpace(name.FirstData("GIVN"))
		surname = strings.TrimSpace(name.FirstData("SURN"))
		if given == "" && surname == "" {
			if m := nameRe.FindStringSubmatch(name.Data); m != nil {
				given = strings.TrimSpace(m[1])
				surname = strings.TrimSpace(m[2])
			} else {
				given = strings.TrimSpace(name.Data)
			}
		}
	}
	if given == "" && surname == "" {
		given = "Unknown"
	}
	return given, surname
}

// decodeEvent turns a BIRT/DEAT/MARR-style record into an EventDetail.
// Returns nil unless at least one of date or place is present.
func decodeEvent(rec *Record) *gen.EventDetail {
	if rec == nil {
		return nil
	}
	e := &gen.EventDetail{
		Date:  strings.TrimSpace(rec.FirstData("DATE")),
		Place: strings.TrimSpace(rec.FirstData("PLAC")),
	}
	if e.Empty() {
		return nil
	}
	return e
}

// decodeNote rejoins a NOTE record with its CONT continuation lines.
func decodeNote(note *Record) string {
	lines := []string{note.Data}
	for _, cont := range note.All("CONT") {
		lines = append(lines, cont.Data)
	}
	return strings.Join(lines, "\n")
}

func (d *decoder) decodeFamily(rec *Record) *gen.Family {
	if rec.Pointer == "" {
		return nil
	}
	f := &gen.Family{ID: d.id(rec.Pointer), Type: gen.UnionUnknown}

	if husb := rec.First("HUSB"); husb != nil && husb.Data != "" {
		f.Spouse1ID = d.id(strings.TrimSpace(husb.Data))
	}
	if wife := rec.First("WIFE"); wife != nil && wife.Data != "" {
		f.Spouse2ID = d.id(strings.TrimSpace(wife.Data))
	}
	for _, chil := range rec.All("CHIL") {
		if ptr := strings.TrimSpace(chil.Data); ptr != "" {
			f.ChildIDs = append(f.ChildIDs, d.id(ptr))
		}
	}

	if marr := rec.First("MARR"); marr != nil {
		f.Type = gen.UnionMarried
		f.Marriage = decodeEvent(marr)
	}
	f.Divorce = decodeEvent(rec.First("DIV"))

	return f
}
