package gen

// Index holds the two relationship lookups the layout engine and query
// layer share: person -> families where the person is a spouse, and
// person -> the single family where the person is a child.
//
// Both indexes are built in input order, so every traversal that walks
// them is deterministic for a fixed input slice. A person recorded as a
// child in more than one family is a data anomaly; the first family found
// wins and later ones are ignored.
//
// Soft-deleted families are skipped entirely. The index holds pointers
// into the input slice and must be rebuilt after any mutation.
type Index struct {
	persons        map[string]*Person
	spouseFamilies map[string][]*Family
	birthFamily    map[string]*Family
	order          []*Person // input order, deleted persons excluded
}

// NewIndex builds relationship indexes over the given snapshot.
// Deleted persons and families are excluded.
func NewIndex(persons []*Person, families []*Family) *Index {
	idx := &Index{
		persons:        make(map[string]*Person, len(persons)),
		spouseFamilies: make(map[string][]*Family),
		birthFamily:    make(map[string]*Family),
	}
	for _, p := range persons {
		if p.Deleted {
			continue
		}
		if _, ok := idx.persons[p.ID]; ok {
			continue
		}
		idx.persons[p.ID] = p
		idx.order = append(idx.order, p)
	}
	for _, f := range families {
		if f.Deleted {
			continue
		}
		if f.Spouse1ID != "" {
			idx.spouseFamilies[f.Spouse1ID] = append(idx.spouseFamilies[f.Spouse1ID], f)
		}
		if f.Spouse2ID != "" {
			idx.spouseFamilies[f.Spouse2ID] = append(idx.spouseFamilies[f.Spouse2ID], f)
		}
		for _, c := range f.ChildIDs {
			// first birth family wins
			if _, ok := idx.birthFamily[c]; !ok {
				idx.birthFamily[c] = f
			}
		}
	}
	return idx
}

// Person returns the indexed person with the given ID, or nil.
func (idx *Index) Person(id string) *Person { return idx.persons[id] }

// Persons returns all indexed persons in input order.
func (idx *Index) Persons() []*Person { return idx.order }

// SpouseFamilies returns the families where the person is a spouse, in
// input order. Returns nil for an unknown or unmarried person.
func (idx *Index) SpouseFamilies(id string) []*Family { return idx.spouseFamilies[id] }

// BirthFamily returns the family where the person appears as a child, or
// nil for a root ancestor with no recorded parents.
func (idx *Index) BirthFamily(id string) *Family { return idx.birthFamily[id] }

// Parents returns the 0-2 parents of the person: the spouses of the birth
// family, unknown IDs skipped.
func (idx *Index) Parents(id string) []*Person {
	f := idx.birthFamily[id]
	if f == nil {
		return nil
	}
	var out []*Person
	for _, sid := range []string{f.Spouse1ID, f.Spouse2ID} {
		if p := idx.persons[sid]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Spouses returns every partner of the person across all spouse families,
// in family order.
func (idx *Index) Spouses(id string) []*Person {
	var out []*Person
	for _, f := range idx.spouseFamilies[id] {
		if p := idx.persons[f.OtherSpouse(id)]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Children returns the person's children across all spouse families,
// deduplicated, in family and birth order.
func (idx *Index) Children(id string) []*Person {
	var out []*Person
	seen := make(map[string]bool)
	for _, f := range idx.spouseFamilies[id] {
		for _, cid := range f.ChildIDs {
			if seen[cid] {
				continue
			}
			seen[cid] = true
			if p := idx.persons[cid]; p != nil {
				out = append(out, p)
			}
		}
	}
	return out
}

// Siblings returns the other children of the person's birth family,
// excluding the person, in birth order.
func (idx *Index) Siblings(id string) []*Person {
	f := idx.birthFamily[id]
	if f == nil {
		return nil
	}
	var out []*Person
	for _, cid := range f.ChildIDs {
		if cid == id {
			continue
		}
		if p := idx.persons[cid]; p != nil {
			out = append(out, p)
		}
	}
	return out
}
