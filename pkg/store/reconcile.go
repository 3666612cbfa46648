package store

import "github.com/kintreehq/kintree/pkg/gen"

// Reconciliation: relationship edits made when a person is saved from an
// editor form. These operations keep the family graph consistent:
//
//   - a person belongs to at most one birth family
//   - one family exists per unordered spouse pair
//   - a family never lists one of its own spouses as a child
//
// All operations are plain Store calls, so callers wanting atomicity wrap
// them in Store.Transact.

// GetOrCreateFamily returns the non-deleted family whose spouse pair
// equals {a, b} regardless of slot order, creating it if none exists.
// Either ID may be empty to model a single-parent family.
func GetOrCreateFamily(st Store, a, b string) (*gen.Family, error) {
	families, err := st.Families(false)
	if err != nil {
		return nil, err
	}
	want := gen.PairKey(a, b)
	for _, f := range families {
		if gen.PairKey(f.Spouse1ID, f.Spouse2ID) == want {
			return f, nil
		}
	}
	f := &gen.Family{Spouse1ID: a, Spouse2ID: b, Type: gen.UnionUnknown}
	if err := st.CreateFamily(f); err != nil {
		return nil, err
	}
	return f, nil
}

// SetParents links the person into a family whose spouse pair equals the
// desired parents, unlinking them from their current birth family first
// when the parent set changed. Passing two empty IDs detaches the person
// from any birth family.
func SetParents(st Store, personID, parent1, parent2 string) error {
	families, err := st.Families(false)
	if err != nil {
		return err
	}

	want := gen.PairKey(parent1, parent2)
	var current *gen.Family
	for _, f := range families {
		if f.HasChild(personID) {
			current = f
			break // first birth family wins; later links are anomalies
		}
	}

	if current != nil {
		if gen.PairKey(current.Spouse1ID, current.Spouse2ID) == want {
			return nil // already linked to the right parents
		}
		if err := removeChild(st, current, personID); err != nil {
			return err
		}
	}

	if parent1 == "" && parent2 == "" {
		return nil
	}

	target, err := GetOrCreateFamily(st, parent1, parent2)
	if err != nil {
		return err
	}
	if target.HasChild(personID) {
		return nil
	}
	return st.SetFamilyChildren(target.ID, append(target.ChildIDs, personID))
}

// SetChildren reconciles the desired child set for the spouse pair
// (parentID, otherParentID). Children of parentID no longer desired are
// removed from every family where parentID is a spouse; newly desired
// children are linked into the pair's family, which is created on demand.
// otherParentID may be empty for a single-parent family.
func SetChildren(st Store, parentID, otherParentID string, desired []string) error {
	families, err := st.Families(false)
	if err != nil {
		return err
	}

	want := make(map[string]bool, len(desired))
	for _, id := range desired {
		want[id] = true
	}

	// Drop children that are no longer desired from every spouse family.
	for _, f := range families {
		if !f.HasSpouse(parentID) {
			continue
		}
		kept := f.ChildIDs[:0:0]
		for _, c := range f.ChildIDs {
			if want[c] {
				kept = append(kept, c)
			}
		}
		if len(kept) != len(f.ChildIDs) {
			if err := st.SetFamilyChildren(f.ID, kept); err != nil {
				return err
			}
		}
	}

	// Link newly desired children, relocating them from any previous
	// birth family so the single-birth-family invariant holds.
	for _, childID := range desired {
		if childID == parentID || childID == otherParentID {
			continue
		}
		if err := SetParents(st, childID, parentID, otherParentID); err != nil {
			return err
		}
	}
	return nil
}

func removeChild(st Store, f *gen.Family, personID string) error {
	kept := f.ChildIDs[:0:0]
	for _, c := range f.ChildIDs {
		if c != personID {
			kept = append(kept, c)
		}
	}
	return st.SetFamilyChildren(f.ID, kept)
}
