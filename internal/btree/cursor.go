package btree

import (
	"pagedb/internal/row"
	"pagedb/internal/storage"
)

// Cursor walks leaf cells in ascending key order, following the leaf
// chain's next_leaf_page_id links rather than re-descending the tree for
// every step, per spec.md §4.3's range-scan design.
type Cursor struct {
	tree *Tree
	leaf storage.PageID
	idx  int
	end  bool
}

// SeekStart returns a cursor positioned at the smallest key in the tree.
func (t *Tree) SeekStart() (*Cursor, error) {
	id := t.root()
	for {
		p, err := t.pager.Get(id)
		if err != nil {
			return nil, err
		}
		if getNodeType(p) == NodeLeaf {
			return t.cursorAt(id, 0), nil
		}
		_, children := internalEntries(p)
		id = children[0]
	}
}

// SeekFirstGE returns a cursor positioned at the first cell with key >=
// the given key (used for range scans with a lower bound).
func (t *Tree) SeekFirstGE(key uint32) (*Cursor, error) {
	path, err := t.descend(key)
	if err != nil {
		return nil, err
	}
	leafID := path[len(path)-1]
	leaf, err := t.pager.Get(leafID)
	if err != nil {
		return nil, err
	}
	idx, _ := leafFind(leaf, key)
	return t.cursorAt(leafID, idx), nil
}

// SeekKey returns a cursor positioned exactly at key, or an ended cursor
// if the key isn't present.
func (t *Tree) SeekKey(key uint32) (*Cursor, error) {
	path, err := t.descend(key)
	if err != nil {
		return nil, err
	}
	leafID := path[len(path)-1]
	leaf, err := t.pager.Get(leafID)
	if err != nil {
		return nil, err
	}
	idx, found := leafFind(leaf, key)
	if !found {
		return &Cursor{tree: t, end: true}, nil
	}
	return t.cursorAt(leafID, idx), nil
}

// cursorAt builds a cursor at (leaf, idx), normalizing an index that runs
// off the end of a leaf by hopping to the next leaf's first cell.
func (t *Tree) cursorAt(leaf storage.PageID, idx int) *Cursor {
	c := &Cursor{tree: t, leaf: leaf, idx: idx}
	c.normalize()
	return c
}

func (c *Cursor) normalize() {
	for {
		if c.end {
			return
		}
		p, err := c.tree.pager.Get(c.leaf)
		if err != nil {
			c.end = true
			return
		}
		if c.idx < getNumCells(p) {
			return
		}
		next := getNextLeaf(p)
		if next == storage.NoPage {
			c.end = true
			return
		}
		c.leaf = next
		c.idx = 0
	}
}

// End reports whether the cursor has advanced past the last cell.
func (c *Cursor) End() bool { return c.end }

// Key returns the key at the cursor's current position.
func (c *Cursor) Key() (uint32, error) {
	p, err := c.tree.pager.Get(c.leaf)
	if err != nil {
		return 0, err
	}
	return leafCellKey(p, c.idx), nil
}

// Row returns the row at the cursor's current position.
func (c *Cursor) Row() (row.Row, error) {
	p, err := c.tree.pager.Get(c.leaf)
	if err != nil {
		return row.Row{}, err
	}
	return leafCellRow(p, c.idx)
}

// Advance moves the cursor to the next cell, following the leaf chain.
func (c *Cursor) Advance() {
	if c.end {
		return
	}
	c.idx++
	c.normalize()
}
