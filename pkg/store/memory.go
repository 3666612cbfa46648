package store

import (
	"slices"
	"sync"

	"github.com/kintreehq/kintree/pkg/gen"
)

// Memory is an insertion-ordered in-memory Store. It is the reference
// implementation for tests and for previewing imports without touching
// the on-device database.
//
// Reads return copies, so callers can mutate results freely and persist
// changes only through the Store methods.
type Memory struct {
	mu       sync.Mutex
	persons  []*gen.Person
	families []*gen.Family
	trees    []*gen.Tree

	subMu sync.Mutex
	subs  map[int]func()
	nextS int
	muted int // >0 while inside Transact; notifications deferred to commit
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{subs: make(map[int]func())}
}

func copyPerson(p *gen.Person) *gen.Person {
	cp := *p
	cp.Photo = slices.Clone(p.Photo)
	cp.PhotoThumb = slices.Clone(p.PhotoThumb)
	if p.Birth != nil {
		b := *p.Birth
		cp.Birth = &b
	}
	if p.Death != nil {
		d := *p.Death
		cp.Death = &d
	}
	return &cp
}

func copyFamily(f *gen.Family) *gen.Family {
	cf := *f
	cf.ChildIDs = slices.Clone(f.ChildIDs)
	if f.Marriage != nil {
		m := *f.Marriage
		cf.Marriage = &m
	}
	if f.Divorce != nil {
		d := *f.Divorce
		cf.Divorce = &d
	}
	return &cf
}

// Persons returns all persons in creation order.
func (m *Memory) Persons(includeDeleted bool) ([]*gen.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*gen.Person, 0, len(m.persons))
	for _, p := range m.persons {
		if p.Deleted && !includeDeleted {
			continue
		}
		out = append(out, copyPerson(p))
	}
	return out, nil
}

// Families returns all families in creation order.
func (m *Memory) Families(includeDeleted bool) ([]*gen.Family, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*gen.Family, 0, len(m.families))
	for _, f := range m.families {
		if f.Deleted && !includeDeleted {
			continue
		}
		out = append(out, copyFamily(f))
	}
	return out, nil
}

// PersonByID returns the person or ErrNotFound. Soft-deleted persons are
// still addressable by ID.
func (m *Memory) PersonByID(id string) (*gen.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p := m.findPerson(id); p != nil {
		return copyPerson(p), nil
	}
	return nil, ErrNotFound
}

// FamilyByID returns the family or ErrNotFound.
func (m *Memory) FamilyByID(id string) (*gen.Family, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f := m.findFamily(id); f != nil {
		return copyFamily(f), nil
	}
	return nil, ErrNotFound
}

func (m *Memory) findPerson(id string) *gen.Person {
	for _, p := range m.persons {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *Memory) findFamily(id string) *gen.Family {
	for _, f := range m.families {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// CreatePerson persists a new person and stamps its bookkeeping fields.
func (m *Memory) CreatePerson(p *gen.Person) error {
	m.mu.Lock()
	stampCreate(&p.ID, &p.Rev, &p.CreatedAt, &p.UpdatedAt)
	m.persons = append(m.persons, copyPerson(p))
	m.mu.Unlock()
	m.notify()
	return nil
}

// CreateFamily persists a new family, dropping self-parent child entries.
func (m *Memory) CreateFamily(f *gen.Family) error {
	m.mu.Lock()
	stampCreate(&f.ID, &f.Rev, &f.CreatedAt, &f.UpdatedAt)
	f.ChildIDs = dropSelfChildren(f)
	if f.Type == "" {
		f.Type = gen.UnionUnknown
	}
	m.families = append(m.families, copyFamily(f))
	m.mu.Unlock()
	m.notify()
	return nil
}

// UpdatePerson replaces the stored person.
func (m *Memory) UpdatePerson(p *gen.Person) error {
	if p.ID == "" {
		return ErrMissingID
	}
	m.mu.Lock()
	cur := m.findPerson(p.ID)
	if cur == nil {
		m.mu.Unlock()
		return ErrNotFound
	}
	stampUpdate(&p.Rev, &p.UpdatedAt)
	p.CreatedAt = cur.CreatedAt
	*cur = *copyPerson(p)
	m.mu.Unlock()
	m.notify()
	return nil
}

// UpdateFamily replaces the stored family.
func (m *Memory) UpdateFamily(f *gen.Family) error {
	if f.ID == "" {
		return ErrMissingID
	}
	m.mu.Lock()
	cur := m.findFamily(f.ID)
	if cur == nil {
		m.mu.Unlock()
		return ErrNotFound
	}
	stampUpdate(&f.Rev, &f.UpdatedAt)
	f.CreatedAt = cur.CreatedAt
	f.ChildIDs = dropSelfChildren(f)
	*cur = *copyFamily(f)
	m.mu.Unlock()
	m.notify()
	return nil
}

// SetFamilyChildren replaces a family's ordered child list.
func (m *Memory) SetFamilyChildren(id string, childIDs []string) error {
	m.mu.Lock()
	f := m.findFamily(id)
	if f == nil {
		m.mu.Unlock()
		return ErrNotFound
	}
	f.ChildIDs = slices.Clone(childIDs)
	f.ChildIDs = dropSelfChildren(f)
	stampUpdate(&f.Rev, &f.UpdatedAt)
	m.mu.Unlock()
	m.notify()
	return nil
}

// SoftDeletePerson marks the person deleted.
func (m *Memory) SoftDeletePerson(id string) error {
	m.mu.Lock()
	p := m.findPerson(id)
	if p == nil {
		m.mu.Unlock()
		return ErrNotFound
	}
	p.Deleted = true
	stampUpdate(&p.Rev, &p.UpdatedAt)
	m.mu.Unlock()
	m.notify()
	return nil
}

// SoftDeleteFamily marks the family deleted.
func (m *Memory) SoftDeleteFamily(id string) error {
	m.mu.Lock()
	f := m.findFamily(id)
	if f == nil {
		m.mu.Unlock()
		return ErrNotFound
	}
	f.Deleted = true
	stampUpdate(&f.Rev, &f.UpdatedAt)
	m.mu.Unlock()
	m.notify()
	return nil
}

// DeleteAll removes everything. Irreversible.
func (m *Memory) DeleteAll() error {
	m.mu.Lock()
	m.persons = nil
	m.families = nil
	m.trees = nil
	m.mu.Unlock()
	m.notify()
	return nil
}

// Trees returns all named tree views in creation order.
func (m *Memory) Trees() ([]*gen.Tree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*gen.Tree, len(m.trees))
	for i, t := range m.trees {
		cp := *t
		out[i] = &cp
	}
	return out, nil
}

// SaveTree creates or updates a named tree view.
func (m *Memory) SaveTree(t *gen.Tree) error {
	m.mu.Lock()
	if t.ID != "" {
		if cur := m.findTree(t.ID); cur != nil {
			stampUpdate(&t.Rev, &t.UpdatedAt)
			t.CreatedAt = cur.CreatedAt
			*cur = *t
			m.mu.Unlock()
			m.notify()
			return nil
		}
	}
	stampCreate(&t.ID, &t.Rev, &t.CreatedAt, &t.UpdatedAt)
	cp := *t
	m.trees = append(m.trees, &cp)
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *Memory) findTree(id string) *gen.Tree {
	for _, t := range m.trees {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Transact runs fn with snapshot/rollback semantics: on error the store is
// restored to its pre-transaction state. Per-write notifications are muted
// for the duration; subscribers see exactly one notification, on commit.
func (m *Memory) Transact(fn func(Store) error) error {
	m.mu.Lock()
	snapPersons := make([]*gen.Person, len(m.persons))
	for i, p := range m.persons {
		snapPersons[i] = copyPerson(p)
	}
	snapFamilies := make([]*gen.Family, len(m.families))
	for i, f := range m.families {
		snapFamilies[i] = copyFamily(f)
	}
	snapTrees := make([]*gen.Tree, len(m.trees))
	for i, t := range m.trees {
		cp := *t
		snapTrees[i] = &cp
	}
	m.mu.Unlock()

	m.mute()
	err := fn(m)
	m.unmute()

	if err != nil {
		m.mu.Lock()
		m.persons = snapPersons
		m.families = snapFamilies
		m.trees = snapTrees
		m.mu.Unlock()
		return err
	}
	m.notify()
	return nil
}

// Subscribe registers a change callback.
func (m *Memory) Subscribe(fn func()) (cancel func()) {
	m.subMu.Lock()
	id := m.nextS
	m.nextS++
	m.subs[id] = fn
	m.subMu.Unlock()
	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Memory) mute() {
	m.subMu.Lock()
	m.muted++
	m.subMu.Unlock()
}

func (m *Memory) unmute() {
	m.subMu.Lock()
	m.muted--
	m.subMu.Unlock()
}

func (m *Memory) notify() {
	m.subMu.Lock()
	if m.muted > 0 {
		m.subMu.Unlock()
		return
	}
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
