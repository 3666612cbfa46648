package store

import (
	"errors"
	"testing"

	"github.com/kintreehq/kintree/pkg/gen"
)

func TestMemoryCreateStampsBookkeeping(t *testing.T) {
	m := NewMemory()
	p := &gen.Person{GivenNames: "John", Surname: "Smith"}
	if err := m.CreatePerson(p); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if p.ID == "" || p.Rev == "" {
		t.Error("create must assign ID and revision")
	}
	if p.CreatedAt == 0 || p.UpdatedAt == 0 {
		t.Error("create must assign timestamps")
	}
}

func TestMemoryUpdateBumpsRevision(t *testing.T) {
	m := NewMemory()
	p := &gen.Person{GivenNames: "John"}
	if err := m.CreatePerson(p); err != nil {
		t.Fatal(err)
	}
	oldRev := p.Rev

	p.GivenNames = "Johann"
	if err := m.UpdatePerson(p); err != nil {
		t.Fatalf("UpdatePerson: %v", err)
	}
	if p.Rev == oldRev {
		t.Error("update must re-mint the revision token")
	}

	got, err := m.PersonByID(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.GivenNames != "Johann" {
		t.Errorf("GivenNames = %q, want Johann", got.GivenNames)
	}
}

func TestMemoryUpdateUnknownIsHardFailure(t *testing.T) {
	m := NewMemory()
	err := m.UpdatePerson(&gen.Person{ID: "ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	err = m.UpdateFamily(&gen.Family{ID: "ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemorySoftDeleteExclusion(t *testing.T) {
	m := NewMemory()
	keep := &gen.Person{GivenNames: "Keep"}
	gone := &gen.Person{GivenNames: "Gone"}
	for _, p := range []*gen.Person{keep, gone} {
		if err := m.CreatePerson(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.SoftDeletePerson(gone.ID); err != nil {
		t.Fatal(err)
	}

	visible, err := m.Persons(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 1 || visible[0].ID != keep.ID {
		t.Errorf("visible persons = %d, want only %s", len(visible), keep.ID)
	}

	all, err := m.Persons(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("all persons = %d, want 2", len(all))
	}

	// Deleted entities remain addressable by ID.
	if _, err := m.PersonByID(gone.ID); err != nil {
		t.Errorf("PersonByID(deleted) = %v, want nil error", err)
	}
}

func TestMemoryCreationOrderPreserved(t *testing.T) {
	m := NewMemory()
	names := []string{"a", "b", "c", "d"}
	for _, n := range names {
		if err := m.CreatePerson(&gen.Person{GivenNames: n}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := m.Persons(false)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range got {
		if p.GivenNames != names[i] {
			t.Errorf("persons[%d] = %q, want %q", i, p.GivenNames, names[i])
		}
	}
}

func TestMemoryFamilyRejectsSelfParent(t *testing.T) {
	m := NewMemory()
	f := &gen.Family{Spouse1ID: "pa", Spouse2ID: "ma", ChildIDs: []string{"kid", "pa"}}
	if err := m.CreateFamily(f); err != nil {
		t.Fatal(err)
	}
	if len(f.ChildIDs) != 1 || f.ChildIDs[0] != "kid" {
		t.Errorf("childIDs = %v, want [kid]", f.ChildIDs)
	}

	if err := m.SetFamilyChildren(f.ID, []string{"kid", "ma"}); err != nil {
		t.Fatal(err)
	}
	got, err := m.FamilyByID(f.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.ChildIDs) != 1 || got.ChildIDs[0] != "kid" {
		t.Errorf("after SetFamilyChildren: childIDs = %v, want [kid]", got.ChildIDs)
	}
}

func TestMemoryTransactRollsBackOnError(t *testing.T) {
	m := NewMemory()
	if err := m.CreatePerson(&gen.Person{GivenNames: "existing"}); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := m.Transact(func(tx Store) error {
		if err := tx.CreatePerson(&gen.Person{GivenNames: "partial"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transact err = %v, want boom", err)
	}

	persons, err := m.Persons(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(persons) != 1 {
		t.Errorf("persons after rollback = %d, want 1", len(persons))
	}
}

func TestMemoryTransactNotifiesOnce(t *testing.T) {
	m := NewMemory()
	var calls int
	cancel := m.Subscribe(func() { calls++ })
	defer cancel()

	err := m.Transact(func(tx Store) error {
		for range 3 {
			if err := tx.CreatePerson(&gen.Person{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("notifications = %d, want 1", calls)
	}
}

func TestMemorySubscribeCancel(t *testing.T) {
	m := NewMemory()
	var calls int
	cancel := m.Subscribe(func() { calls++ })

	if err := m.CreatePerson(&gen.Person{}); err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := m.CreatePerson(&gen.Person{}); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("notifications = %d, want 1 after cancel", calls)
	}
}

func TestMemoryReadsReturnCopies(t *testing.T) {
	m := NewMemory()
	p := &gen.Person{GivenNames: "John"}
	if err := m.CreatePerson(p); err != nil {
		t.Fatal(err)
	}

	got, err := m.PersonByID(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	got.GivenNames = "Mutated"

	again, err := m.PersonByID(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.GivenNames != "John" {
		t.Error("mutating a read result must not affect the store")
	}
}
