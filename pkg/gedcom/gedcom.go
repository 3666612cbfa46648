// Package gedcom implements the GEDCOM 5.5.1 interchange codec: parsing
// line-oriented genealogical records into persons and families, and
// serializing them back.
//
// # Format
//
// GEDCOM is a line-based format where each line carries a nesting level,
// an optional @POINTER@ cross-reference, a tag and optional data:
//
//	0 @I1@ INDI
//	1 NAME John /Smith/
//	1 SEX M
//	0 @F1@ FAM
//	1 HUSB @I1@
//
// The codec recognizes HEAD, INDI, FAM, NAME, GIVN, SURN, SEX, BIRT,
// DEAT, DATE, PLAC, NOTE, CONT, HUSB, WIFE, CHIL, MARR, DIV, FAMS, FAMC
// and TRLR. Unknown tags are carried through the parse tree and ignored.
//
// # Pointer scoping
//
// Pointer→ID mapping is bijective within one Decode call and exists
// nowhere else: importing the same file twice produces two disjoint
// entity sets. Export re-mints sequential pointers from scratch.
//
// # Error posture
//
// Parsing never fails. Unparseable fragments degrade to safe defaults
// (dates stay opaque text, a missing name becomes "Unknown"), records
// without pointers are dropped silently, and an input with no usable
// records is a valid empty import.
package gedcom

import (
	"github.com/charmbracelet/log"

	"github.com/kintreehq/kintree/pkg/store"
)

// ImportStats reports what an import persisted.
type ImportStats struct {
	Persons  int
	Families int
}

// ImportOptions configures Import.
type ImportOptions struct {
	// Logger receives progress output. Nil discards it.
	Logger *log.Logger
}

// Import decodes GEDCOM text and persists the result as one atomic batch:
// all persons first, then all families, inside a single store transaction.
// If any write fails, no partial import remains visible.
func Import(st store.Store, text string, opts ImportOptions) (ImportStats, error) {
	persons, families := Decode(text)

	err := st.Transact(func(tx store.Store) error {
		for _, p := range persons {
			if err := tx.CreatePerson(p); err != nil {
				return err
			}
		}
		for _, f := range families {
			if err := tx.CreateFamily(f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}

	stats := ImportStats{Persons: len(persons), Families: len(families)}
	if opts.Logger != nil {
		opts.Logger.Info("imported GEDCOM",
			"persons", stats.Persons,
			"families", stats.Families)
	}
	return stats, nil
}

// Export reads all non-deleted persons and families from the store and
// returns the serialized GEDCOM document.
func Export(st store.Store) (string, error) {
	persons, err := st.Persons(false)
	if err != nil {
		return "", err
	}
	families, err := st.Families(false)
	if err != nil {
		return "", err
	}
	return Encode(persons, families), nil
}
