package btree

import "pagedb/internal/storage"

// Delete removes key from the tree, redistributing from a sibling or
// merging underflowing nodes as spec.md §4.2 step 3 requires. Deleting a
// key that isn't present returns ErrNotFound.
func (t *Tree) Delete(key uint32) error {
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
	if !found {
		return ErrNotFound
	}
	n := getNumCells(leaf)
	removeLeafCell(leaf, idx, n)
	setNumCells(leaf, n-1)

	if getIsRoot(leaf) {
		return nil
	}
	if n-1 >= t.minLeaf {
		return t.fixupAncestorSeparators(path)
	}
	return t.fixLeafUnderflow(path)
}

func removeLeafCell(p *storage.Page, idx, n int) {
	for i := idx; i < n-1; i++ {
		k := leafCellKey(p, i+1)
		r, _ := leafCellRow(p, i+1)
		setLeafCell(p, i, k, r)
	}
}

// removeEntry drops the child at idx from an internal node's (keys,
// children) pair after that child has been merged into its left
// neighbor. The merged node now spans up to idx's old separator, so
// it's the left neighbor's separator (keys[idx-1]) that goes stale and
// falls away — keys[idx] survives as the merged node's new separator
// (or, if idx is the unbounded right child, there is no keys[idx] and
// keys[idx-1] was the only key bounding it, which correctly disappears
// as the merged node becomes the new unbounded right child).
func removeEntry(keys []uint32, children []storage.PageID, idx int) ([]uint32, []storage.PageID) {
	keyIdx := idx - 1
	newKeys := append(append([]uint32{}, keys[:keyIdx]...), keys[keyIdx+1:]...)
	newChildren := append(append([]storage.PageID{}, children[:idx]...), children[idx+1:]...)
	return newKeys, newChildren
}

// fixupSeparator overwrites the stored key for childID in parent if
// childID is a keyed cell; it is a no-op for the unbounded right child,
// which has nothing stored to update.
func fixupSeparator(parent *storage.Page, childID storage.PageID, newMax uint32) {
	_, children := internalEntries(parent)
	idx := indexOfChild(children, childID)
	if idx >= 0 && idx < getNumKeys(parent) {
		setInternalCell(parent, idx, childID, newMax)
	}
}

// fixLeafUnderflow repairs a leaf that dropped below minLeaf cells by
// borrowing from a sibling with room to spare, or merging with one.
func (t *Tree) fixLeafUnderflow(path []storage.PageID) error {
	leafID := path[len(path)-1]
	parentID := path[len(path)-2]
	parent, err := t.pager.GetMut(parentID)
	if err != nil {
		return err
	}
	_, children := internalEntries(parent)
	pos := indexOfChild(children, leafID)

	if pos > 0 {
		leftID := children[pos-1]
		left, err := t.pager.GetMut(leftID)
		if err != nil {
			return err
		}
		if getNumCells(left) > t.minLeaf {
			return t.redistributeLeafFromLeft(parent, leafID, leftID)
		}
	}
	if pos < len(children)-1 {
		rightID := children[pos+1]
		right, err := t.pager.GetMut(rightID)
		if err != nil {
			return err
		}
		if getNumCells(right) > t.minLeaf {
			return t.redistributeLeafFromRight(parent, leafID, rightID)
		}
	}
	if pos > 0 {
		return t.mergeLeaves(path, children[pos-1], leafID)
	}
	return t.mergeLeaves(path, leafID, children[pos+1])
}

func (t *Tree) redistributeLeafFromLeft(parent *storage.Page, leafID, leftID storage.PageID) error {
	leaf, err := t.pager.GetMut(leafID)
	if err != nil {
		return err
	}
	left, err := t.pager.GetMut(leftID)
	if err != nil {
		return err
	}
	n := getNumCells(leaf)
	leftN := getNumCells(left)

	shiftLeafCellsRight(leaf, 0, n)
	movedKey := leafCellKey(left, leftN-1)
	movedRow, _ := leafCellRow(left, leftN-1)
	setLeafCell(leaf, 0, movedKey, movedRow)
	setNumCells(leaf, n+1)
	setNumCells(left, leftN-1)

	newLeftMax, err := t.subtreeMax(leftID)
	if err != nil {
		return err
	}
	fixupSeparator(parent, leftID, newLeftMax)
	return nil
}

func (t *Tree) redistributeLeafFromRight(parent *storage.Page, leafID, rightID storage.PageID) error {
	leaf, err := t.pager.GetMut(leafID)
	if err != nil {
		return err
	}
	right, err := t.pager.GetMut(rightID)
	if err != nil {
		return err
	}
	n := getNumCells(leaf)
	rightN := getNumCells(right)

	movedKey := leafCellKey(right, 0)
	movedRow, _ := leafCellRow(right, 0)
	setLeafCell(leaf, n, movedKey, movedRow)
	setNumCells(leaf, n+1)
	removeLeafCell(right, 0, rightN)
	setNumCells(right, rightN-1)

	fixupSeparator(parent, leafID, movedKey)
	return nil
}

// mergeLeaves folds right's cells into left, drops right's entry from the
// parent named by the second-to-last element of path, and propagates any
// resulting parent underflow upward.
func (t *Tree) mergeLeaves(path []storage.PageID, leftID, rightID storage.PageID) error {
	left, err := t.pager.GetMut(leftID)
	if err != nil {
		return err
	}
	right, err := t.pager.GetMut(rightID)
	if err != nil {
		return err
	}
	leftN := getNumCells(left)
	rightN := getNumCells(right)
	for i := 0; i < rightN; i++ {
		k := leafCellKey(right, i)
		r, _ := leafCellRow(right, i)
		setLeafCell(left, leftN+i, k, r)
	}
	setNumCells(left, leftN+rightN)
	setNextLeaf(left, getNextLeaf(right))

	parentID := path[len(path)-2]
	parent, err := t.pager.GetMut(parentID)
	if err != nil {
		return err
	}
	keys, children := internalEntries(parent)
	idx := indexOfChild(children, rightID)
	newKeys, newChildren := removeEntry(keys, children, idx)
	writeInternalEntries(parent, newKeys, newChildren)

	return t.fixInternalUnderflowOrRoot(path[:len(path)-1])
}

// fixInternalUnderflowOrRoot checks the node named by the last element of
// path (an internal node whose child set just shrank): if it's the root,
// it collapses to its sole remaining child when empty of keys; otherwise
// it borrows from or merges with a sibling when it has dropped below
// minInternal keys.
func (t *Tree) fixInternalUnderflowOrRoot(path []storage.PageID) error {
	nodeID := path[len(path)-1]
	node, err := t.pager.GetMut(nodeID)
	if err != nil {
		return err
	}
	if getIsRoot(node) {
		keys, children := internalEntries(node)
		if len(keys) == 0 {
			return t.collapseRoot(children[0])
		}
		return nil
	}
	if getNumKeys(node) >= t.minInternal {
		return t.fixupAncestorSeparators(path)
	}
	return t.fixInternalNodeUnderflow(path)
}

func (t *Tree) collapseRoot(newRootID storage.PageID) error {
	newRoot, err := t.pager.GetMut(newRootID)
	if err != nil {
		return err
	}
	setIsRoot(newRoot, true)
	setParent(newRoot, storage.NoPage)
	if _, err := t.pager.GetMut(storage.HeaderPageID); err != nil {
		return err
	}
	t.pager.Header().SetRootPageID(newRootID)
	return nil
}

func (t *Tree) fixInternalNodeUnderflow(path []storage.PageID) error {
	nodeID := path[len(path)-1]
	parentID := path[len(path)-2]
	parent, err := t.pager.GetMut(parentID)
	if err != nil {
		return err
	}
	_, children := internalEntries(parent)
	pos := indexOfChild(children, nodeID)

	if pos > 0 {
		leftID := children[pos-1]
		left, err := t.pager.GetMut(leftID)
		if err != nil {
			return err
		}
		if getNumKeys(left) > t.minInternal {
			return t.redistributeInternalFromLeft(parent, leftID, nodeID)
		}
	}
	if pos < len(children)-1 {
		rightID := children[pos+1]
		right, err := t.pager.GetMut(rightID)
		if err != nil {
			return err
		}
		if getNumKeys(right) > t.minInternal {
			return t.redistributeInternalFromRight(parent, pos, nodeID, rightID)
		}
	}
	if pos > 0 {
		return t.mergeInternal(path, children[pos-1], nodeID)
	}
	return t.mergeInternal(path, nodeID, children[pos+1])
}

func (t *Tree) redistributeInternalFromLeft(parent *storage.Page, leftID, nodeID storage.PageID) error {
	left, err := t.pager.GetMut(leftID)
	if err != nil {
		return err
	}
	node, err := t.pager.GetMut(nodeID)
	if err != nil {
		return err
	}
	leftKeys, leftChildren := internalEntries(left)
	nodeKeys, nodeChildren := internalEntries(node)

	parentKeys, parentChildren := internalEntries(parent)
	leftPos := indexOfChild(parentChildren, leftID)
	oldSep := parentKeys[leftPos]

	movedChild := leftChildren[len(leftChildren)-1]
	newLeftKeys := leftKeys[:len(leftKeys)-1]
	newLeftChildren := leftChildren[:len(leftChildren)-1]
	writeInternalEntries(left, newLeftKeys, newLeftChildren)

	newNodeKeys := append([]uint32{oldSep}, nodeKeys...)
	newNodeChildren := append([]storage.PageID{movedChild}, nodeChildren...)
	writeInternalEntries(node, newNodeKeys, newNodeChildren)

	if err := t.setParentOf(movedChild, nodeID); err != nil {
		return err
	}

	newLeftMax, err := t.subtreeMax(leftID)
	if err != nil {
		return err
	}
	fixupSeparator(parent, leftID, newLeftMax)
	return nil
}

func (t *Tree) redistributeInternalFromRight(parent *storage.Page, pos int, nodeID, rightID storage.PageID) error {
	node, err := t.pager.GetMut(nodeID)
	if err != nil {
		return err
	}
	right, err := t.pager.GetMut(rightID)
	if err != nil {
		return err
	}
	nodeKeys, nodeChildren := internalEntries(node)
	rightKeys, rightChildren := internalEntries(right)

	parentKeys, _ := internalEntries(parent)
	oldSep := parentKeys[pos]

	movedChild := rightChildren[0]
	newRightKeys := append([]uint32{}, rightKeys[1:]...)
	newRightChildren := append([]storage.PageID{}, rightChildren[1:]...)
	writeInternalEntries(right, newRightKeys, newRightChildren)

	newNodeKeys := append(append([]uint32{}, nodeKeys...), oldSep)
	newNodeChildren := append(append([]storage.PageID{}, nodeChildren...), movedChild)
	writeInternalEntries(node, newNodeKeys, newNodeChildren)

	if err := t.setParentOf(movedChild, nodeID); err != nil {
		return err
	}

	newNodeMax, err := t.subtreeMax(nodeID)
	if err != nil {
		return err
	}
	fixupSeparator(parent, nodeID, newNodeMax)
	return nil
}

// mergeInternal folds right's (keys, children) into left using the
// parent's separator for left as the connecting key, drops right's entry
// from the parent, and propagates any resulting underflow upward.
func (t *Tree) mergeInternal(path []storage.PageID, leftID, rightID storage.PageID) error {
	left, err := t.pager.GetMut(leftID)
	if err != nil {
		return err
	}
	right, err := t.pager.GetMut(rightID)
	if err != nil {
		return err
	}
	leftKeys, leftChildren := internalEntries(left)
	rightKeys, rightChildren := internalEntries(right)

	parentID := path[len(path)-2]
	parent, err := t.pager.GetMut(parentID)
	if err != nil {
		return err
	}
	pkeys, pchildren := internalEntries(parent)
	leftPos := indexOfChild(pchildren, leftID)
	connectingKey := pkeys[leftPos]

	mergedKeys := append(append(append([]uint32{}, leftKeys...), connectingKey), rightKeys...)
	mergedChildren := append(append([]storage.PageID{}, leftChildren...), rightChildren...)
	writeInternalEntries(left, mergedKeys, mergedChildren)
	for _, c := range rightChildren {
		if err := t.setParentOf(c, leftID); err != nil {
			return err
		}
	}

	idx := indexOfChild(pchildren, rightID)
	newPKeys, newPChildren := removeEntry(pkeys, pchildren, idx)
	writeInternalEntries(parent, newPKeys, newPChildren)

	return t.fixInternalUnderflowOrRoot(path[:len(path)-1])
}
