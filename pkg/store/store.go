// Package store provides on-device persistence for genealogy entities.
//
// The layout core consumes storage through the [Store] interface and pulls
// explicit snapshots; nothing in this repository assumes reactive live
// queries. Change notification is available through [Store.Subscribe] for
// callers that want to recompute layouts when the entity set changes.
//
// Two implementations are provided:
//   - [Memory]: insertion-ordered in-memory store for tests and previews
//   - [SQLite]: GORM-backed store for the on-device database
//
// Revision and timestamp bookkeeping is owned here: every create mints an
// ID and revision token, every update re-mints the revision and refreshes
// UpdatedAt. Deletion is soft by default; hard deletion exists only for
// destructive whole-database operations (backup restore, clear-all).
package store

import (
	"errors"

	"github.com/kintreehq/kintree/pkg/gen"
)

var (
	// ErrNotFound is returned by lookups and updates when the entity does
	// not exist. Updates presuppose prior existence, so this is a hard
	// failure rather than an upsert.
	ErrNotFound = errors.New("entity not found")

	// ErrMissingID is returned by updates when the entity has no ID.
	ErrMissingID = errors.New("entity has no ID")
)

// Store is the persistence contract consumed by the codec, backup and
// layout layers. Implementations must keep iteration order stable:
// Persons and Families return entities in creation order so that layout
// output is reproducible for a fixed database state.
type Store interface {
	// Persons returns all persons in creation order.
	// Soft-deleted records are excluded unless includeDeleted is set.
	Persons(includeDeleted bool) ([]*gen.Person, error)

	// Families returns all families in creation order.
	Families(includeDeleted bool) ([]*gen.Family, error)

	// PersonByID returns the person or ErrNotFound.
	// Soft-deleted persons are still addressable by ID.
	PersonByID(id string) (*gen.Person, error)

	// FamilyByID returns the family or ErrNotFound.
	FamilyByID(id string) (*gen.Family, error)

	// CreatePerson persists a new person, assigning ID, revision and
	// timestamps for any that are unset. The argument is updated in place.
	CreatePerson(p *gen.Person) error

	// CreateFamily persists a new family. Spouse IDs present in ChildIDs
	// are dropped before the write (no self-parenting).
	CreateFamily(f *gen.Family) error

	// UpdatePerson replaces the stored person, re-minting the revision and
	// refreshing UpdatedAt. Returns ErrNotFound for unknown IDs.
	UpdatePerson(p *gen.Person) error

	// UpdateFamily replaces the stored family with the same bookkeeping
	// and self-parent filtering as CreateFamily.
	UpdateFamily(f *gen.Family) error

	// SetFamilyChildren replaces a family's ordered child list.
	SetFamilyChildren(id string, childIDs []string) error

	// SoftDeletePerson marks the person deleted.
	SoftDeletePerson(id string) error

	// SoftDeleteFamily marks the family deleted.
	SoftDeleteFamily(id string) error

	// DeleteAll irreversibly removes every person, family and tree.
	DeleteAll() error

	// Trees returns all named tree views in creation order.
	Trees() ([]*gen.Tree, error)

	// SaveTree creates or updates a named tree view.
	SaveTree(t *gen.Tree) error

	// Transact runs fn against a transactional view of the store. Either
	// every write inside fn becomes visible atomically, or none does.
	// Subscribers are notified once, after commit.
	Transact(fn func(Store) error) error

	// Subscribe registers a callback invoked after each committed
	// mutation. The returned function cancels the subscription.
	Subscribe(fn func()) (cancel func())
}

// stampCreate fills in identity and bookkeeping fields for a new entity.
func stampCreate(id, rev *string, createdAt, updatedAt *int64) {
	if *id == "" {
		*id = gen.NewID()
	}
	*rev = gen.NewRev()
	now := gen.Now()
	if *createdAt == 0 {
		*createdAt = now
	}
	*updatedAt = now
}

// stampUpdate refreshes bookkeeping fields for a mutated entity.
func stampUpdate(rev *string, updatedAt *int64) {
	*rev = gen.NewRev()
	*updatedAt = gen.Now()
}

// dropSelfChildren returns childIDs without the family's own spouses.
// A family must never list one of its spouses as a child.
func dropSelfChildren(f *gen.Family) []string {
	out := f.ChildIDs[:0:0]
	for _, c := range f.ChildIDs {
		if c == f.Spouse1ID || c == f.Spouse2ID {
			continue
		}
		out = append(out, c)
	}
	return out
}
