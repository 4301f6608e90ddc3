// Package engine wires the pager, B+ tree, transaction manager, planner
// and statistics blob into the single-table database described in
// spec.md, exposing the statement-level operations the shell drives.
package engine

import (
	"fmt"
	"io"

	"pagedb/internal/btree"
	"pagedb/internal/predicate"
	"pagedb/internal/row"
	"pagedb/internal/stats"
	"pagedb/internal/storage"
	"pagedb/internal/txn"
)

// Database is one open session over a single database file.
type Database struct {
	pager *storage.Pager
	tree  *btree.Tree
	txn   *txn.Manager
}

// Open opens (creating if needed) the database file at path.
func Open(path string, pageSize uint32, cacheSlots int) (*Database, error) {
	pager, err := storage.Open(path, pageSize, cacheSlots)
	if err != nil {
		return nil, fmt.Errorf("engine: open %s: %w", path, err)
	}
	return &Database{
		pager: pager,
		tree:  btree.New(pager),
		txn:   txn.NewManager(pager),
	}, nil
}

// Close flushes and closes the underlying file.
func (db *Database) Close() error {
	return db.pager.Close()
}

// Begin opens an explicit transaction.
func (db *Database) Begin() error { return db.txn.Begin() }

// Commit persists the open transaction.
func (db *Database) Commit() error { return db.txn.Commit() }

// Rollback discards the open transaction.
func (db *Database) Rollback() error { return db.txn.Rollback() }

// InTransaction reports whether an explicit transaction is open.
func (db *Database) InTransaction() bool { return db.txn.Open() }

// Insert adds a new row, failing with btree.ErrDuplicateKey if id exists.
func (db *Database) Insert(id uint32, username, email string) error {
	r, err := row.New(id, username, email)
	if err != nil {
		return err
	}
	return db.txn.RunAutoCommit(func() error {
		if err := db.tree.Insert(id, r); err != nil {
			return err
		}
		stats.OnInsert(db.pager.Header(), id)
		return nil
	})
}

// UpdateByID replaces the row with the given id wholesale, failing with
// btree.ErrNotFound if it doesn't exist. The id itself never changes.
func (db *Database) UpdateByID(id uint32, username, email string) error {
	r, err := row.New(id, username, email)
	if err != nil {
		return err
	}
	return db.txn.RunAutoCommit(func() error {
		return db.tree.Update(id, r)
	})
}

// DeleteByID removes the row with the given id, failing with
// btree.ErrNotFound if it doesn't exist.
func (db *Database) DeleteByID(id uint32) error {
	return db.txn.RunAutoCommit(func() error {
		if err := db.tree.Delete(id); err != nil {
			return err
		}
		stats.OnDelete(db.pager.Header(), id)
		return nil
	})
}

// Select returns every row matching expr (nil means every row), in
// ascending id order.
func (db *Database) Select(expr predicate.Expr) ([]row.Row, error) {
	return db.collectMatches(expr)
}

// UpdateWhere bulk-updates every row matching expr, applying "-" as "keep
// this field", in ascending key order per spec.md §4.5.
func (db *Database) UpdateWhere(expr predicate.Expr, username, email string) (int, error) {
	matches, err := db.collectMatches(expr)
	if err != nil {
		return 0, err
	}
	n := 0
	err = db.txn.RunAutoCommit(func() error {
		for _, m := range matches {
			newUsername := m.Username
			if username != "-" {
				newUsername = username
			}
			newEmail := m.Email
			if email != "-" {
				newEmail = email
			}
			nr, err := row.New(m.ID, newUsername, newEmail)
			if err != nil {
				return err
			}
			if err := db.tree.Update(m.ID, nr); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

// DeleteWhere bulk-deletes every row matching expr, in ascending key
// order per spec.md §4.5.
func (db *Database) DeleteWhere(expr predicate.Expr) (int, error) {
	matches, err := db.collectMatches(expr)
	if err != nil {
		return 0, err
	}
	n := 0
	err = db.txn.RunAutoCommit(func() error {
		for _, m := range matches {
			if err := db.tree.Delete(m.ID); err != nil {
				return err
			}
			stats.OnDelete(db.pager.Header(), m.ID)
			n++
		}
		return nil
	})
	return n, err
}

// Analyze full-recomputes the statistics blob.
func (db *Database) Analyze() error {
	return db.txn.RunAutoCommit(func() error {
		return stats.Analyze(db.pager.Header(), db.tree)
	})
}

// Stats returns the current statistics blob.
func (db *Database) Stats() stats.Snapshot {
	return stats.Read(db.pager.Header())
}

// Constants returns the derived page/cell size constants for `.constants`.
func (db *Database) Constants() btree.Constants {
	return btree.ComputeConstants(db.pager.PageSize())
}

// DumpTree writes the `.btree` diagnostic dump.
func (db *Database) DumpTree(w io.Writer) error {
	return db.tree.Dump(w)
}
