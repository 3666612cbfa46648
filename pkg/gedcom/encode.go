package gedcom

import (
	"fmt"
	"strings"
	"time"

	"github.com/kintreehq/kintree/pkg/gen"
)

// Encode serializes persons and families as a GEDCOM 5.5.1 document.
//
// Pointers are re-minted on every export: persons become @I1@, @I2@, … in
// slice order and families @F1@, @F2@, …, so output is deterministic for
// a fixed input modulo the header export date. Soft-deleted entities and
// family references to persons outside the pointer map are skipped.
func Encode(persons []*gen.Person, families []*gen.Family) string {
	return encodeAt(persons, families, time.Now())
}

func encodeAt(persons []*gen.Person, families []*gen.Family, now time.Time) string {
	personPtr := make(map[string]string, len(persons))
	live := make([]*gen.Person, 0, len(persons))
	for _, p := range persons {
		if p.Deleted {
			continue
		}
		live = append(live, p)
		personPtr[p.ID] = fmt.Sprintf("@I%d@", len(live))
	}

	familyPtr := make(map[string]string, len(families))
	liveFams := make([]*gen.Family, 0, len(families))
	for _, f := range families {
		if f.Deleted {
			continue
		}
		liveFams = append(liveFams, f)
		familyPtr[f.ID] = fmt.Sprintf("@F%d@", len(liveFams))
	}

	// Reverse index: person → families referencing them, built once so
	// FAMS/FAMC emission is O(1) per person instead of O(families).
	spouseOf := make(map[string][]string)
	childOf := make(map[string][]string)
	for _, f := range liveFams {
		ptr := familyPtr[f.ID]
		for _, sid := range []string{f.Spouse1ID, f.Spouse2ID} {
			if sid != "" {
				spouseOf[sid] = append(spouseOf[sid], ptr)
			}
		}
		for _, cid := range f.ChildIDs {
			childOf[cid] = append(childOf[cid], ptr)
		}
	}

	var b strings.Builder
	writeHeader(&b, now)
	for _, p := range live {
		writePerson(&b, p, personPtr[p.ID], spouseOf[p.ID], childOf[p.ID])
	}
	for _, f := range liveFams {
		writeFamily(&b, f, familyPtr[f.ID], personPtr)
	}
	b.WriteString("0 TRLR\n")
	return b.String()
}

func writeHeader(b *strings.Builder, now time.Time) {
	b.WriteString("0 HEAD\n")
	b.WriteString("1 SOUR kintree\n")
	b.WriteString("1 GEDC\n")
	b.WriteString("2 VERS 5.5.1\n")
	b.WriteString("1 CHAR UTF-8\n")
	fmt.Fprintf(b, "1 DATE %s\n", strings.ToUpper(now.Format("2 Jan 2006")))
}

func writePerson(b *strings.Builder, p *gen.Person, ptr string, fams, famc []string) {
	fmt.Fprintf(b, "0 %s INDI\n", ptr)
	fmt.Fprintf(b, "1 NAME %s /%s/\n", p.GivenNames, p.Surname)
	if p.GivenNames != "" {
		fmt.Fprintf(b, "2 GIVN %s\n", p.GivenNames)
	}
	if p.Surname != "" {
		fmt.Fprintf(b, "2 SURN %s\n", p.Surname)
	}
	switch p.Sex {
	case gen.SexMale:
		b.WriteString("1 SEX M\n")
	case gen.SexFemale:
		b.WriteString("1 SEX F\n")
	}
	writeEvent(b, "BIRT", p.Birth)
	writeEvent(b, "DEAT", p.Death)
	if p.Notes != "" {
		lines := strings.Split(p.Notes, "\n")
		fmt.Fprintf(b, "1 NOTE %s\n", lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(b, "2 CONT %s\n", line)
		}
	}
	for _, f := range fams {
		fmt.Fprintf(b, "1 FAMS %s\n", f)
	}
	for _, f := range famc {
		fmt.Fprintf(b, "1 FAMC %s\n", f)
	}
}

func writeEvent(b *strings.Builder, tag string, e *gen.EventDetail) {
	if e.Empty() {
		return
	}
	fmt.Fprintf(b, "1 %s\n", tag)
	if e.Date != "" {
		fmt.Fprintf(b, "2 DATE %s\n", e.Date)
	}
	if e.Place != "" {
		fmt.Fprintf(b, "2 PLAC %s\n", e.Place)
	}
}

func writeFamily(b *strings.Builder, f *gen.Family, ptr string, personPtr map[string]string) {
	fmt.Fprintf(b, "0 %s FAM\n", ptr)
	// dangling spouse references are skipped, not emitted
	if p, ok := personPtr[f.Spouse1ID]; ok {
		fmt.Fprintf(b, "1 HUSB %s\n", p)
	}
	if p, ok := personPtr[f.Spouse2ID]; ok {
		fmt.Fprintf(b, "1 WIFE %s\n", p)
	}
	if f.Type == gen.UnionMarried || !f.Marriage.Empty() {
		if f.Marriage.Empty() {
			b.WriteString("1 MARR\n")
		} else {
			writeEvent(b, "MARR", f.Marriage)
		}
	}
	writeEvent(b, "DIV", f.Divorce)
	for _, cid := range f.ChildIDs {
		if p, ok := personPtr[cid]; ok {
			fmt.Fprintf(b, "1 CHIL %s\n", p)
		}
	}
}
