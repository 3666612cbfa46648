package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/kintreehq/kintree/pkg/gen"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "kintree.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLitePersonRoundTrip(t *testing.T) {
	s := openTestDB(t)

	p := &gen.Person{
		GivenNames: "Elizabeth",
		Surname:    "Bennet",
		Sex:        gen.SexFemale,
		Birth:      &gen.EventDetail{Date: "about 1795", Place: "Hertfordshire"},
		Notes:      "line one\nline two",
		Photo:      []byte{0x89, 0x50, 0x4e, 0x47},
	}
	if err := s.CreatePerson(p); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	got, err := s.PersonByID(p.ID)
	if err != nil {
		t.Fatalf("PersonByID: %v", err)
	}
	if got.GivenNames != "Elizabeth" || got.Surname != "Bennet" {
		t.Errorf("name = %q %q", got.GivenNames, got.Surname)
	}
	if got.Birth == nil || got.Birth.Date != "about 1795" || got.Birth.Place != "Hertfordshire" {
		t.Errorf("birth = %+v", got.Birth)
	}
	if got.Death != nil {
		t.Errorf("death = %+v, want nil", got.Death)
	}
	if string(got.Photo) != string(p.Photo) {
		t.Error("photo blob mangled")
	}
}

func TestSQLiteFamilyChildOrder(t *testing.T) {
	s := openTestDB(t)

	f := &gen.Family{
		Spouse1ID: "pa",
		Spouse2ID: "ma",
		ChildIDs:  []string{"first", "second", "third"},
		Type:      gen.UnionMarried,
		Marriage:  &gen.EventDetail{Date: "1812"},
	}
	if err := s.CreateFamily(f); err != nil {
		t.Fatalf("CreateFamily: %v", err)
	}

	got, err := s.FamilyByID(f.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	if len(got.ChildIDs) != len(want) {
		t.Fatalf("childIDs = %v", got.ChildIDs)
	}
	for i := range want {
		if got.ChildIDs[i] != want[i] {
			t.Errorf("childIDs[%d] = %s, want %s", i, got.ChildIDs[i], want[i])
		}
	}
	if got.Type != gen.UnionMarried {
		t.Errorf("type = %s, want married", got.Type)
	}
}

func TestSQLiteUpdateUnknown(t *testing.T) {
	s := openTestDB(t)
	err := s.UpdatePerson(&gen.Person{ID: "ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteTransactRollback(t *testing.T) {
	s := openTestDB(t)

	boom := errors.New("boom")
	err := s.Transact(func(tx Store) error {
		if err := tx.CreatePerson(&gen.Person{GivenNames: "partial"}); err != nil {
			return err
		}
		if err := tx.CreateFamily(&gen.Family{}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transact err = %v", err)
	}

	persons, err := s.Persons(true)
	if err != nil {
		t.Fatal(err)
	}
	families, err := s.Families(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(persons) != 0 || len(families) != 0 {
		t.Errorf("after rollback: %d persons, %d families, want 0/0", len(persons), len(families))
	}
}

func TestSQLiteDeleteAll(t *testing.T) {
	s := openTestDB(t)
	if err := s.CreatePerson(&gen.Person{}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTree(&gen.Tree{Name: "main"}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	persons, err := s.Persons(true)
	if err != nil {
		t.Fatal(err)
	}
	trees, err := s.Trees()
	if err != nil {
		t.Fatal(err)
	}
	if len(persons) != 0 || len(trees) != 0 {
		t.Error("DeleteAll left rows behind")
	}
}
