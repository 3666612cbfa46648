package store

import (
	"testing"

	"github.com/kintreehq/kintree/pkg/gen"
)

func mustCreatePersons(t *testing.T, st Store, names ...string) map[string]string {
	t.Helper()
	ids := make(map[string]string, len(names))
	for _, n := range names {
		p := &gen.Person{GivenNames: n}
		if err := st.CreatePerson(p); err != nil {
			t.Fatal(err)
		}
		ids[n] = p.ID
	}
	return ids
}

func TestGetOrCreateFamilyUnorderedPair(t *testing.T) {
	m := NewMemory()
	ids := mustCreatePersons(t, m, "a", "b")

	f1, err := GetOrCreateFamily(m, ids["a"], ids["b"])
	if err != nil {
		t.Fatal(err)
	}
	f2, err := GetOrCreateFamily(m, ids["b"], ids["a"])
	if err != nil {
		t.Fatal(err)
	}
	if f1.ID != f2.ID {
		t.Errorf("(a,b) and (b,a) returned different families: %s vs %s", f1.ID, f2.ID)
	}

	families, err := m.Families(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(families) != 1 {
		t.Errorf("families = %d, want 1", len(families))
	}
}

func TestGetOrCreateFamilySingleParent(t *testing.T) {
	m := NewMemory()
	ids := mustCreatePersons(t, m, "solo")

	f, err := GetOrCreateFamily(m, ids["solo"], "")
	if err != nil {
		t.Fatal(err)
	}
	if !f.HasSpouse(ids["solo"]) {
		t.Error("single parent must occupy a spouse slot")
	}
	if f.Spouse2ID != "" {
		t.Errorf("spouse2 = %q, want empty", f.Spouse2ID)
	}
}

func TestSetParentsRelinksBirthFamily(t *testing.T) {
	m := NewMemory()
	ids := mustCreatePersons(t, m, "kid", "pa", "ma", "stepma")

	if err := SetParents(m, ids["kid"], ids["pa"], ids["ma"]); err != nil {
		t.Fatal(err)
	}
	old, err := GetOrCreateFamily(m, ids["pa"], ids["ma"])
	if err != nil {
		t.Fatal(err)
	}
	if !old.HasChild(ids["kid"]) {
		t.Fatal("kid not linked to first family")
	}

	// Reparent: kid moves to (pa, stepma); the old link must be removed.
	if err := SetParents(m, ids["kid"], ids["pa"], ids["stepma"]); err != nil {
		t.Fatal(err)
	}

	oldAfter, err := m.FamilyByID(old.ID)
	if err != nil {
		t.Fatal(err)
	}
	if oldAfter.HasChild(ids["kid"]) {
		t.Error("kid still a child of the old birth family")
	}

	next, err := GetOrCreateFamily(m, ids["stepma"], ids["pa"])
	if err != nil {
		t.Fatal(err)
	}
	if !next.HasChild(ids["kid"]) {
		t.Error("kid not linked to the new birth family")
	}
}

func TestSetParentsIdempotent(t *testing.T) {
	m := NewMemory()
	ids := mustCreatePersons(t, m, "kid", "pa", "ma")

	for range 2 {
		if err := SetParents(m, ids["kid"], ids["pa"], ids["ma"]); err != nil {
			t.Fatal(err)
		}
	}
	f, err := GetOrCreateFamily(m, ids["pa"], ids["ma"])
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, c := range f.ChildIDs {
		if c == ids["kid"] {
			count++
		}
	}
	if count != 1 {
		t.Errorf("kid linked %d times, want 1", count)
	}
}

func TestSetParentsDetach(t *testing.T) {
	m := NewMemory()
	ids := mustCreatePersons(t, m, "kid", "pa", "ma")

	if err := SetParents(m, ids["kid"], ids["pa"], ids["ma"]); err != nil {
		t.Fatal(err)
	}
	if err := SetParents(m, ids["kid"], "", ""); err != nil {
		t.Fatal(err)
	}

	families, err := m.Families(false)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.HasChild(ids["kid"]) {
			t.Errorf("kid still a child of family %s after detach", f.ID)
		}
	}
}

func TestSetChildrenRemovesAndAdds(t *testing.T) {
	m := NewMemory()
	ids := mustCreatePersons(t, m, "pa", "ma", "old", "kept", "new")

	if err := SetChildren(m, ids["pa"], ids["ma"], []string{ids["old"], ids["kept"]}); err != nil {
		t.Fatal(err)
	}
	if err := SetChildren(m, ids["pa"], ids["ma"], []string{ids["kept"], ids["new"]}); err != nil {
		t.Fatal(err)
	}

	f, err := GetOrCreateFamily(m, ids["pa"], ids["ma"])
	if err != nil {
		t.Fatal(err)
	}
	want := []string{ids["kept"], ids["new"]}
	if len(f.ChildIDs) != len(want) {
		t.Fatalf("childIDs = %v, want %v", f.ChildIDs, want)
	}
	for i := range want {
		if f.ChildIDs[i] != want[i] {
			t.Errorf("childIDs[%d] = %s, want %s", i, f.ChildIDs[i], want[i])
		}
	}
}

func TestSetChildrenSingleParent(t *testing.T) {
	m := NewMemory()
	ids := mustCreatePersons(t, m, "solo", "kid")

	if err := SetChildren(m, ids["solo"], "", []string{ids["kid"]}); err != nil {
		t.Fatal(err)
	}

	f, err := GetOrCreateFamily(m, ids["solo"], "")
	if err != nil {
		t.Fatal(err)
	}
	if !f.HasChild(ids["kid"]) {
		t.Error("kid not linked to single-parent family")
	}
}

func TestSetChildrenNeverSelfParents(t *testing.T) {
	m := NewMemory()
	ids := mustCreatePersons(t, m, "pa", "ma")

	// Asking a parent to be their own child must be ignored.
	if err := SetChildren(m, ids["pa"], ids["ma"], []string{ids["pa"], ids["ma"]}); err != nil {
		t.Fatal(err)
	}
	families, err := m.Families(false)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		for _, c := range f.ChildIDs {
			if c == f.Spouse1ID || c == f.Spouse2ID {
				t.Errorf("family %s lists spouse %s as child", f.ID, c)
			}
		}
	}
}
