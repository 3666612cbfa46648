package gen

import "testing"

// buildClan constructs a three-generation fixture:
//
//	grandpa + grandma -> william
//	william + elizabeth -> john, mary
//	william + second -> paul
func buildClan() ([]*Person, []*Family) {
	persons := []*Person{
		{ID: "grandpa", GivenNames: "George", Surname: "Smith", Sex: SexMale},
		{ID: "grandma", GivenNames: "Anne", Surname: "Smith", Sex: SexFemale},
		{ID: "william", GivenNames: "William", Surname: "Smith", Sex: SexMale},
		{ID: "elizabeth", GivenNames: "Elizabeth", Surname: "Smith", Sex: SexFemale},
		{ID: "second", GivenNames: "Clara", Surname: "Jones", Sex: SexFemale},
		{ID: "john", GivenNames: "John", Surname: "Smith", Sex: SexMale},
		{ID: "mary", GivenNames: "Mary", Surname: "Smith", Sex: SexFemale},
		{ID: "paul", GivenNames: "Paul", Surname: "Smith", Sex: SexMale},
	}
	families := []*Family{
		{ID: "f-grand", Spouse1ID: "grandpa", Spouse2ID: "grandma", ChildIDs: []string{"william"}, Type: UnionMarried},
		{ID: "f-first", Spouse1ID: "william", Spouse2ID: "elizabeth", ChildIDs: []string{"john", "mary"}, Type: UnionMarried},
		{ID: "f-second", Spouse1ID: "william", Spouse2ID: "second", ChildIDs: []string{"paul"}, Type: UnionMarried},
	}
	return persons, families
}

func ids(persons []*Person) []string {
	out := make([]string, len(persons))
	for i, p := range persons {
		out[i] = p.ID
	}
	return out
}

func equalIDs(got []*Person, want []string) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

func TestIndexQueries(t *testing.T) {
	persons, families := buildClan()
	idx := NewIndex(persons, families)

	tests := []struct {
		name  string
		query func(string) []*Person
		id    string
		want  []string
	}{
		{"ParentsOfWilliam", idx.Parents, "william", []string{"grandpa", "grandma"}},
		{"ParentsOfRootAncestor", idx.Parents, "grandpa", nil},
		{"SpousesOfWilliam", idx.Spouses, "william", []string{"elizabeth", "second"}},
		{"SpousesOfUnmarried", idx.Spouses, "john", nil},
		{"ChildrenOfWilliam", idx.Children, "william", []string{"john", "mary", "paul"}},
		{"ChildrenOfElizabeth", idx.Children, "elizabeth", []string{"john", "mary"}},
		{"SiblingsOfJohn", idx.Siblings, "john", []string{"mary"}},
		{"SiblingsOfOnlyChild", idx.Siblings, "william", nil},
		{"UnknownPerson", idx.Parents, "nobody", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.query(tt.id)
			if !equalIDs(got, tt.want) {
				t.Errorf("got %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestIndexFirstBirthFamilyWins(t *testing.T) {
	persons := []*Person{{ID: "a"}, {ID: "b"}, {ID: "kid"}}
	families := []*Family{
		{ID: "f1", Spouse1ID: "a", ChildIDs: []string{"kid"}},
		{ID: "f2", Spouse1ID: "b", ChildIDs: []string{"kid"}}, // anomaly: second birth family
	}
	idx := NewIndex(persons, families)

	if got := idx.BirthFamily("kid"); got == nil || got.ID != "f1" {
		t.Errorf("birth family = %v, want f1", got)
	}
	if got := idx.Parents("kid"); !equalIDs(got, []string{"a"}) {
		t.Errorf("parents = %v, want [a]", ids(got))
	}
}

func TestIndexExcludesDeleted(t *testing.T) {
	persons := []*Person{
		{ID: "alive"},
		{ID: "gone", Deleted: true},
	}
	families := []*Family{
		{ID: "f-live", Spouse1ID: "alive", ChildIDs: []string{"gone"}},
		{ID: "f-dead", Spouse1ID: "alive", Deleted: true},
	}
	idx := NewIndex(persons, families)

	if idx.Person("gone") != nil {
		t.Error("deleted person should not be indexed")
	}
	if len(idx.Persons()) != 1 {
		t.Errorf("persons = %d, want 1", len(idx.Persons()))
	}
	if got := idx.SpouseFamilies("alive"); len(got) != 1 || got[0].ID != "f-live" {
		t.Errorf("spouse families = %v, want only f-live", got)
	}
}

func TestPairKeyUnordered(t *testing.T) {
	if PairKey("a", "b") != PairKey("b", "a") {
		t.Error("PairKey must be order independent")
	}
	if PairKey("a", "b") == PairKey("a", "c") {
		t.Error("PairKey must distinguish different pairs")
	}
	if PairKey("", "x") != PairKey("x", "") {
		t.Error("PairKey must canonicalize empty slots")
	}
}

func TestFamilyOtherSpouse(t *testing.T) {
	f := &Family{Spouse1ID: "a", Spouse2ID: "b"}
	tests := []struct {
		in, want string
	}{
		{"a", "b"},
		{"b", "a"},
		{"c", ""},
	}
	for _, tt := range tests {
		if got := f.OtherSpouse(tt.in); got != tt.want {
			t.Errorf("OtherSpouse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPersonFullName(t *testing.T) {
	tests := []struct {
		name   string
		person Person
		want   string
	}{
		{"Both", Person{GivenNames: "John", Surname: "Smith"}, "John Smith"},
		{"GivenOnly", Person{GivenNames: "John"}, "John"},
		{"SurnameOnly", Person{Surname: "Smith"}, "Smith"},
		{"Neither", Person{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.person.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventDetailEmpty(t *testing.T) {
	var nilEvent *EventDetail
	if !nilEvent.Empty() {
		t.Error("nil event should be empty")
	}
	if !(&EventDetail{}).Empty() {
		t.Error("zero event should be empty")
	}
	if (&EventDetail{Date: "1854"}).Empty() {
		t.Error("dated event should not be empty")
	}
	if (&EventDetail{Place: "London"}).Empty() {
		t.Error("placed event should not be empty")
	}
}
