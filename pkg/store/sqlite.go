package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kintreehq/kintree/pkg/gen"
)

// SQLite is the GORM-backed on-device store.
//
// All rows carry an autoincrement Seq column, and every list query orders
// by it, so Persons and Families return entities in creation order — the
// determinism the layout engine depends on.
type SQLite struct {
	db *gorm.DB

	subMu sync.Mutex
	subs  map[int]func()
	nextS int
	muted int

	// root points at the outermost store when this value wraps a
	// transaction, so notifications reach the shared subscriber list.
	root *SQLite
}

// OpenSQLite opens (creating if necessary) the database at path and
// migrates the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&personRow{}, &familyRow{}, &treeRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{db: db, subs: make(map[int]func())}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Persons returns all persons in creation order.
func (s *SQLite) Persons(includeDeleted bool) ([]*gen.Person, error) {
	var rows []personRow
	q := s.db.Order("seq ASC")
	if !includeDeleted {
		q = q.Where("deleted = ?", false)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	out := make([]*gen.Person, len(rows))
	for i := range rows {
		out[i] = personFromRow(&rows[i])
	}
	return out, nil
}

// Families returns all families in creation order.
func (s *SQLite) Families(includeDeleted bool) ([]*gen.Family, error) {
	var rows []familyRow
	q := s.db.Order("seq ASC")
	if !includeDeleted {
		q = q.Where("deleted = ?", false)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}
	out := make([]*gen.Family, len(rows))
	for i := range rows {
		f, err := familyFromRow(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("family %s: %w", rows[i].ID, err)
		}
		out[i] = f
	}
	return out, nil
}

// PersonByID returns the person or ErrNotFound.
func (s *SQLite) PersonByID(id string) (*gen.Person, error) {
	var row personRow
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get person %s: %w", id, err)
	}
	return personFromRow(&row), nil
}

// FamilyByID returns the family or ErrNotFound.
func (s *SQLite) FamilyByID(id string) (*gen.Family, error) {
	var row familyRow
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get family %s: %w", id, err)
	}
	return familyFromRow(&row)
}

// CreatePerson persists a new person and stamps its bookkeeping fields.
func (s *SQLite) CreatePerson(p *gen.Person) error {
	stampCreate(&p.ID, &p.Rev, &p.CreatedAt, &p.UpdatedAt)
	if err := s.db.Create(rowFromPerson(p)).Error; err != nil {
		return fmt.Errorf("create person: %w", err)
	}
	s.notify()
	return nil
}

// CreateFamily persists a new family, dropping self-parent child entries.
func (s *SQLite) CreateFamily(f *gen.Family) error {
	stampCreate(&f.ID, &f.Rev, &f.CreatedAt, &f.UpdatedAt)
	f.ChildIDs = dropSelfChildren(f)
	if f.Type == "" {
		f.Type = gen.UnionUnknown
	}
	row, err := rowFromFamily(f)
	if err != nil {
		return fmt.Errorf("encode family: %w", err)
	}
	if err := s.db.Create(row).Error; err != nil {
		return fmt.Errorf("create family: %w", err)
	}
	s.notify()
	return nil
}

// UpdatePerson replaces the stored person. Returns ErrNotFound for
// unknown IDs, since an update presupposes prior existence.
func (s *SQLite) UpdatePerson(p *gen.Person) error {
	if p.ID == "" {
		return ErrMissingID
	}
	stampUpdate(&p.Rev, &p.UpdatedAt)
	row := rowFromPerson(p)
	res := s.db.Model(&personRow{}).Where("id = ?", p.ID).Select("*").
		Omit("id", "seq", "created_at").Updates(row)
	if res.Error != nil {
		return fmt.Errorf("update person %s: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.notify()
	return nil
}

// UpdateFamily replaces the stored family.
func (s *SQLite) UpdateFamily(f *gen.Family) error {
	if f.ID == "" {
		return ErrMissingID
	}
	stampUpdate(&f.Rev, &f.UpdatedAt)
	f.ChildIDs = dropSelfChildren(f)
	row, err := rowFromFamily(f)
	if err != nil {
		return fmt.Errorf("encode family: %w", err)
	}
	res := s.db.Model(&familyRow{}).Where("id = ?", f.ID).Select("*").
		Omit("id", "seq", "created_at").Updates(row)
	if res.Error != nil {
		return fmt.Errorf("update family %s: %w", f.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.notify()
	return nil
}

// SetFamilyChildren replaces a family's ordered child list.
func (s *SQLite) SetFamilyChildren(id string, childIDs []string) error {
	f, err := s.FamilyByID(id)
	if err != nil {
		return err
	}
	f.ChildIDs = slices.Clone(childIDs)
	return s.UpdateFamily(f)
}

// SoftDeletePerson marks the person deleted.
func (s *SQLite) SoftDeletePerson(id string) error {
	return s.softDelete(&personRow{}, id, "person")
}

// SoftDeleteFamily marks the family deleted.
func (s *SQLite) SoftDeleteFamily(id string) error {
	return s.softDelete(&familyRow{}, id, "family")
}

func (s *SQLite) softDelete(model any, id, kind string) error {
	res := s.db.Model(model).Where("id = ?", id).Updates(map[string]any{
		"deleted":    true,
		"rev":        gen.NewRev(),
		"updated_at": gen.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.notify()
	return nil
}

// DeleteAll hard-deletes every person, family and tree. Irreversible.
func (s *SQLite) DeleteAll() error {
	err := s.transact(func(tx *SQLite) error {
		for _, model := range []any{&personRow{}, &familyRow{}, &treeRow{}} {
			if err := tx.db.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("clear: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Trees returns all named tree views in creation order.
func (s *SQLite) Trees() ([]*gen.Tree, error) {
	var rows []treeRow
	if err := s.db.Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list trees: %w", err)
	}
	out := make([]*gen.Tree, len(rows))
	for i, r := range rows {
		out[i] = &gen.Tree{
			ID:           r.ID,
			Rev:          r.Rev,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
			Name:         r.Name,
			Description:  r.Description,
			RootPersonID: r.RootPersonID,
		}
	}
	return out, nil
}

// SaveTree creates or updates a named tree view.
func (s *SQLite) SaveTree(t *gen.Tree) error {
	if t.ID != "" {
		res := s.db.Model(&treeRow{}).Where("id = ?", t.ID).Updates(map[string]any{
			"rev":            gen.NewRev(),
			"updated_at":     gen.Now(),
			"name":           t.Name,
			"description":    t.Description,
			"root_person_id": t.RootPersonID,
		})
		if res.Error != nil {
			return fmt.Errorf("update tree %s: %w", t.ID, res.Error)
		}
		if res.RowsAffected > 0 {
			s.notify()
			return nil
		}
	}
	stampCreate(&t.ID, &t.Rev, &t.CreatedAt, &t.UpdatedAt)
	row := &treeRow{
		ID:           t.ID,
		Rev:          t.Rev,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		Name:         t.Name,
		Description:  t.Description,
		RootPersonID: t.RootPersonID,
	}
	if err := s.db.Create(row).Error; err != nil {
		return fmt.Errorf("create tree: %w", err)
	}
	s.notify()
	return nil
}

// Transact runs fn inside a database transaction. Either every write in
// fn commits atomically or the transaction rolls back. Subscribers are
// notified once, after commit.
func (s *SQLite) Transact(fn func(Store) error) error {
	if err := s.transact(func(tx *SQLite) error { return fn(tx) }); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *SQLite) transact(fn func(*SQLite) error) error {
	root := s.rootStore()
	return s.db.Transaction(func(tx *gorm.DB) error {
		inner := &SQLite{db: tx, root: root}
		return fn(inner)
	})
}

func (s *SQLite) rootStore() *SQLite {
	if s.root != nil {
		return s.root
	}
	return s
}

// Subscribe registers a change callback.
func (s *SQLite) Subscribe(fn func()) (cancel func()) {
	root := s.rootStore()
	root.subMu.Lock()
	id := root.nextS
	root.nextS++
	if root.subs == nil {
		root.subs = make(map[int]func())
	}
	root.subs[id] = fn
	root.subMu.Unlock()
	return func() {
		root.subMu.Lock()
		delete(root.subs, id)
		root.subMu.Unlock()
	}
}

func (s *SQLite) notify() {
	// Writes inside a transaction defer notification to Transact.
	if s.root != nil {
		return
	}
	s.subMu.Lock()
	if s.muted > 0 {
		s.subMu.Unlock()
		return
	}
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
