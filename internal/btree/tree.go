// Package btree implements the on-disk B+ tree described in spec.md §4.2:
// ordered insert, point lookup, range scan, update and delete over pages
// supplied by a storage.Pager, with splits, merges and redistribution
// keeping every non-root node between MinCells and the page's max cell
// count.
//
// Split and merge propagation walks an explicit descent stack rather than
// following persisted parent pointers (spec.md §9 allows either); the
// parent_page_id field is still maintained on every node for fidelity to
// the on-disk format, but the tree never reads it to navigate.
package btree

import (
	"fmt"
	"log/slog"

	"pagedb/internal/row"
	"pagedb/internal/storage"
)

// Tree is a B+ tree rooted at whatever page the pager's header names as
// root_page_id.
type Tree struct {
	pager *storage.Pager

	leafMax     int
	internalMax int
	minLeaf     int
	minInternal int
}

func New(pager *storage.Pager) *Tree {
	leafMax := LeafMaxCells(pager.PageSize())
	internalMax := InternalMaxKeys(pager.PageSize())
	return &Tree{
		pager:       pager,
		leafMax:     leafMax,
		internalMax: internalMax,
		minLeaf:     MinCells(leafMax),
		minInternal: MinCells(internalMax),
	}
}

func (t *Tree) root() storage.PageID { return t.pager.Header().RootPageID() }

// descend returns the path of page ids from the root to the leaf that
// would hold key, inclusive of both endpoints.
func (t *Tree) descend(key uint32) ([]storage.PageID, error) {
	path := []storage.PageID{t.root()}
	for {
		id := path[len(path)-1]
		p, err := t.pager.Get(id)
		if err != nil {
			return nil, err
		}
		if getNodeType(p) == NodeLeaf {
			return path, nil
		}
		child := chooseChild(p, key)
		path = append(path, child)
	}
}

// chooseChild implements spec.md §4.2's traversal rule: descend the
// smallest-keyed cell whose key is >= the search key, else the right
// child.
func chooseChild(p *storage.Page, key uint32) storage.PageID {
	n := getNumKeys(p)
	for i := 0; i < n; i++ {
		if key <= internalCellKey(p, i) {
			return internalCellChild(p, i)
		}
	}
	return getRightChild(p)
}

// leafFind binary-searches a leaf's cells for key, returning the
// insertion/match index and whether it was found.
func leafFind(p *storage.Page, key uint32) (int, bool) {
	lo, hi := 0, getNumCells(p)
	for lo < hi {
		mid := (lo + hi) / 2
		k := leafCellKey(p, mid)
		switch {
		case k == key:
			return mid, true
		case k < key:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false
}

// Search performs a point lookup.
func (t *Tree) Search(key uint32) (row.Row, bool, error) {
	path, err := t.descend(key)
	if err != nil {
		return row.Row{}, false, err
	}
	leaf, err := t.pager.Get(path[len(path)-1])
	if err != nil {
		return row.Row{}, false, err
	}
	idx, found := leafFind(leaf, key)
	if !found {
		return row.Row{}, false, nil
	}
	r, err := leafCellRow(leaf, idx)
	return r, err == nil, err
}

// Insert adds (key, r) to the tree, splitting nodes as needed.
func (t *Tree) Insert(key uint32, r row.Row) error {
	path, err := t.descend(key)
	if err != nil {
		return err
	}
	leafID := path[len(path)-1]
	leaf, err := t.pager.GetMut(leafID)
	if err != nil {
		return err
	}
	idx, found := leafFind(leaf, key)
	if found {
		return ErrDuplicateKey
	}

	n := getNumCells(leaf)
	if n < t.leafMax {
		shiftLeafCellsRight(leaf, idx, n)
		setLeafCell(leaf, idx, key, r)
		setNumCells(leaf, n+1)
		return t.fixupAncestorSeparators(path)
	}

	return t.splitLeafAndInsert(path, idx, key, r)
}

func shiftLeafCellsRight(p *storage.Page, from, n int) {
	for i := n; i > from; i-- {
		key := leafCellKey(p, i-1)
		r, _ := leafCellRow(p, i-1)
		setLeafCell(p, i, key, r)
	}
}

// splitLeafAndInsert splits the full leaf at the end of path, distributes
// the MAX+1 cells (existing plus the new one) across the two halves per
// spec.md §4.2 step 2 (left keeps the extra cell on a tie), and pushes the
// new separator up into the parent.
func (t *Tree) splitLeafAndInsert(path []storage.PageID, insertIdx int, key uint32, r row.Row) error {
	leafID := path[len(path)-1]
	leaf, err := t.pager.GetMut(leafID)
	if err != nil {
		return err
	}

	total := t.leafMax + 1
	keys := make([]uint32, total)
	rows := make([]row.Row, total)
	{
		src := 0
		for dst := 0; dst < total; dst++ {
			if dst == insertIdx {
				keys[dst], rows[dst] = key, r
				continue
			}
			keys[dst] = leafCellKey(leaf, src)
			rows[dst], _ = leafCellRow(leaf, src)
			src++
		}
	}

	leftCount := (total + 1) / 2 // ceil((MAX+1)/2): left gets the extra cell on a tie
	rightID, err := t.pager.Allocate()
	if err != nil {
		return err
	}
	right, err := t.pager.GetMut(rightID)
	if err != nil {
		return err
	}

	wasRoot := getIsRoot(leaf)
	parent := getParent(leaf)
	oldNext := getNextLeaf(leaf)

	initLeaf(leaf, false, parent)
	for i := 0; i < leftCount; i++ {
		setLeafCell(leaf, i, keys[i], rows[i])
	}
	setNumCells(leaf, leftCount)
	setNextLeaf(leaf, rightID)

	initLeaf(right, false, parent)
	for i := leftCount; i < total; i++ {
		setLeafCell(right, i-leftCount, keys[i], rows[i])
	}
	setNumCells(right, total-leftCount)
	setNextLeaf(right, oldNext)

	leftMax := keys[leftCount-1]

	if wasRoot {
		return t.createNewRoot(leafID, rightID, leftMax)
	}
	return t.insertIntoParent(path[:len(path)-1], leafID, leftMax, rightID)
}

// createNewRoot builds a fresh internal root over left/right when the
// node that just split had no parent.
func (t *Tree) createNewRoot(left, right storage.PageID, leftMax uint32) error {
	newRootID, err := t.pager.Allocate()
	if err != nil {
		return err
	}
	newRoot, err := t.pager.GetMut(newRootID)
	if err != nil {
		return err
	}
	initInternal(newRoot, true, storage.NoPage)
	writeInternalEntries(newRoot, []uint32{leftMax}, []storage.PageID{left, right})

	if err := t.setParentOf(left, newRootID); err != nil {
		return err
	}
	if err := t.setParentOf(right, newRootID); err != nil {
		return err
	}

	if _, err := t.pager.GetMut(storage.HeaderPageID); err != nil {
		return err
	}
	t.pager.Header().SetRootPageID(newRootID)
	slog.Debug("btree.new_root", "root", newRootID, "left", left, "right", right)
	return nil
}

func (t *Tree) setParentOf(id storage.PageID, parent storage.PageID) error {
	p, err := t.pager.GetMut(id)
	if err != nil {
		return err
	}
	setParent(p, parent)
	return nil
}

// insertIntoParent inserts (newKey=leftMax, newChild=rightID) next to
// splitChildID in whichever ancestor (named by the last element of
// ancestors) currently owns it, splitting that internal node in turn if
// it overflows. ancestors is path with the just-split node removed from
// the tail.
func (t *Tree) insertIntoParent(ancestors []storage.PageID, splitChildID storage.PageID, newKeyForSplitChild uint32, newChildID storage.PageID) error {
	parentID := ancestors[len(ancestors)-1]
	parent, err := t.pager.GetMut(parentID)
	if err != nil {
		return err
	}

	keys, children := internalEntries(parent)
	idx := indexOfChild(children, splitChildID)
	if idx < 0 {
		return fmt.Errorf("btree: internal corruption: child %d not found in parent %d", splitChildID, parentID)
	}

	var newKeys []uint32
	var newChildren []storage.PageID
	if idx < len(keys) {
		// splitChildID was a keyed cell: shrink its bound, insert the new
		// sibling right after carrying the old bound forward.
		oldKey := keys[idx]
		newKeys = append(append(append([]uint32{}, keys[:idx]...), newKeyForSplitChild, oldKey), keys[idx+1:]...)
		newChildren = append(append(append([]storage.PageID{}, children[:idx+1]...), newChildID), children[idx+1:]...)
	} else {
		// splitChildID was the unbounded right child: it becomes keyed,
		// and the new sibling takes over as right child.
		newKeys = append(append([]uint32{}, keys...), newKeyForSplitChild)
		newChildren = append(append([]storage.PageID{}, children[:len(children)-1]...), splitChildID, newChildID)
	}

	if len(newKeys) <= t.internalMax {
		writeInternalEntries(parent, newKeys, newChildren)
		if err := t.setParentOf(newChildID, parentID); err != nil {
			return err
		}
		return t.fixupAncestorSeparators(ancestors)
	}

	return t.splitInternal(ancestors, newKeys, newChildren)
}

// splitInternal splits an overflowing internal node (identified by the
// last element of ancestors) whose new, oversized entry set is
// (keys, children), promoting the median key to ancestors' parent.
func (t *Tree) splitInternal(ancestors []storage.PageID, keys []uint32, children []storage.PageID) error {
	nodeID := ancestors[len(ancestors)-1]
	node, err := t.pager.GetMut(nodeID)
	if err != nil {
		return err
	}

	mid := len(keys) / 2
	leftKeys, leftChildren := keys[:mid], children[:mid+1]
	rightKeys, rightChildren := keys[mid+1:], children[mid+1:]
	medianKey := keys[mid]

	wasRoot := getIsRoot(node)
	parent := getParent(node)

	rightID, err := t.pager.Allocate()
	if err != nil {
		return err
	}
	right, err := t.pager.GetMut(rightID)
	if err != nil {
		return err
	}

	initInternal(node, false, parent)
	writeInternalEntries(node, leftKeys, leftChildren)

	initInternal(right, false, parent)
	writeInternalEntries(right, rightKeys, rightChildren)

	for _, c := range leftChildren {
		if err := t.setParentOf(c, nodeID); err != nil {
			return err
		}
	}
	for _, c := range rightChildren {
		if err := t.setParentOf(c, rightID); err != nil {
			return err
		}
	}

	if wasRoot {
		return t.createNewRoot(nodeID, rightID, medianKey)
	}
	return t.insertIntoParent(ancestors[:len(ancestors)-1], nodeID, medianKey, rightID)
}

// fixupAncestorSeparators recomputes the separator key each ancestor
// stores for its descendant along path, in case an insert changed the
// descendant's max key without changing the tree's shape. Most inserts
// don't change any ancestor's stored max (an insert only changes the max
// of a subtree when it lands after the previous maximum), so this is a
// cheap walk that's a no-op unless the new key is the new tree maximum of
// some prefix of the path.
func (t *Tree) fixupAncestorSeparators(path []storage.PageID) error {
	for i := len(path) - 1; i > 0; i-- {
		child := path[i]
		parent := path[i-1]
		cp, err := t.pager.Get(parent)
		if err != nil {
			return err
		}
		_, children := internalEntries(cp)
		idx := indexOfChild(children, child)
		if idx < 0 || idx == len(children)-1 {
			continue // unbounded (right child): nothing stored to fix
		}
		max, err := t.subtreeMax(child)
		if err != nil {
			return err
		}
		mp, err := t.pager.GetMut(parent)
		if err != nil {
			return err
		}
		if internalCellKey(mp, idx) != max {
			setInternalCell(mp, idx, child, max)
		}
	}
	return nil
}

func (t *Tree) subtreeMax(id storage.PageID) (uint32, error) {
	p, err := t.pager.Get(id)
	if err != nil {
		return 0, err
	}
	if getNodeType(p) == NodeLeaf {
		if getNumCells(p) == 0 {
			return 0, nil
		}
		return maxKeyInLeaf(p), nil
	}
	_, children := internalEntries(p)
	return t.subtreeMax(children[len(children)-1])
}

// Update replaces the row stored at key in place. The key itself never
// changes, so no ancestor separator is affected.
func (t *Tree) Update(key uint32, r row.Row) error {
	path, err := t.descend(key)
	if err != nil {
		return err
	}
	leaf, err := t.pager.GetMut(path[len(path)-1])
	if err != nil {
		return err
	}
	idx, found := leafFind(leaf, key)
	if !found {
		return ErrNotFound
	}
	setLeafCell(leaf, idx, key, r)
	return nil
}
