// Package backup exports and restores whole-database snapshots.
//
// A backup is a versioned JSON document carrying every person, family and
// tree, including soft-deleted records, so a restore reproduces the
// database exactly. Binary photo fields travel base64-encoded inside the
// JSON and decode back to raw bytes on restore.
//
// Restore is destructive and atomic: the incoming document is validated
// in full before any write happens, the existing database is cleared, and
// all records are written inside one transaction. A failed restore leaves
// the previous state untouched.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kintreehq/kintree/pkg/gen"
	"github.com/kintreehq/kintree/pkg/store"
)

// Version is the current backup document version.
const Version = 1

var (
	// ErrMissingVersion is returned when the document has no version tag.
	ErrMissingVersion = errors.New("backup document has no version")

	// ErrUnsupportedVersion is returned for versions this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported backup version")

	// ErrMissingPersons is returned when the persons array is absent.
	// An empty database backs up to an empty array, never to a missing one.
	ErrMissingPersons = errors.New("backup document has no persons array")
)

// Document is the backup file format. Person photo bytes serialize as
// base64 through encoding/json's []byte handling.
type Document struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exportedAt"`
	Persons    []*gen.Person `json:"persons"`
	Families   []*gen.Family `json:"families"`
	Trees      []*gen.Tree   `json:"trees"`
}

// Options configures backup operations.
type Options struct {
	// Logger receives progress output. Nil discards it.
	Logger *log.Logger
}

// Export writes a backup document of the store's full contents, including
// soft-deleted records.
func Export(st store.Store, w io.Writer, opts Options) error {
	persons, err := st.Persons(true)
	if err != nil {
		return err
	}
	families, err := st.Families(true)
	if err != nil {
		return err
	}
	trees, err := st.Trees()
	if err != nil {
		return err
	}
	if persons == nil {
		persons = []*gen.Person{}
	}
	if families == nil {
		families = []*gen.Family{}
	}
	if trees == nil {
		trees = []*gen.Tree{}
	}

	doc := Document{
		Version:    Version,
		ExportedAt: time.Now().UTC(),
		Persons:    persons,
		Families:   families,
		Trees:      trees,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if opts.Logger != nil {
		opts.Logger.Info("backup exported",
			"persons", len(persons), "families", len(families), "trees", len(trees))
	}
	return nil
}

// Restore replaces the store's contents with the backup document read
// from r. Validation failures surface before any write occurs.
func Restore(st store.Store, r io.Reader, opts Options) error {
	doc, err := readDocument(r)
	if err != nil {
		return err
	}

	err = st.Transact(func(tx store.Store) error {
		if err := tx.DeleteAll(); err != nil {
			return err
		}
		for _, p := range doc.Persons {
			if err := tx.CreatePerson(p); err != nil {
				return err
			}
		}
		for _, f := range doc.Families {
			if err := tx.CreateFamily(f); err != nil {
				return err
			}
		}
		for _, t := range doc.Trees {
			if err := tx.SaveTree(t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if opts.Logger != nil {
		opts.Logger.Info("backup restored",
			"persons", len(doc.Persons), "families", len(doc.Families), "trees", len(doc.Trees))
	}
	return nil
}

// readDocument decodes and validates a backup document. Format violations
// are hard failures so a restore never begins against a bad document.
func readDocument(r io.Reader) (*Document, error) {
	// raw probe first: distinguish "version absent" from "version zero"
	// and "persons absent" from "persons empty"
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	if _, ok := probe["version"]; !ok {
		return nil, ErrMissingVersion
	}
	if _, ok := probe["persons"]; !ok {
		return nil, ErrMissingPersons
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	return &doc, nil
}
