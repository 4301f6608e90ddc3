package btree

import (
	"pagedb/internal/row"
	"pagedb/internal/storage"
)

type NodeType uint8

const (
	NodeLeaf NodeType = iota
	NodeInternal
)

// Common header offsets, shared by leaf and internal nodes.
const (
	offNodeType   = 0
	offIsRoot     = 1
	offParentPage = 2
)

// Leaf-only header offsets.
const (
	offNextLeaf = offParentPage + 4
	offNumCells = offNextLeaf + 4
	leafCellsStart = offNumCells + 4
)

// Internal-only header offsets.
const (
	offNumKeys    = offParentPage + 4
	offRightChild = offNumKeys + 4
	internalCellsStart = offRightChild + 4
)

func getNodeType(p *storage.Page) NodeType { return NodeType(p.Buf[offNodeType]) }
func setNodeType(p *storage.Page, t NodeType) { p.Buf[offNodeType] = byte(t) }

func getIsRoot(p *storage.Page) bool { return p.Buf[offIsRoot] != 0 }
func setIsRoot(p *storage.Page, v bool) {
	if v {
		p.Buf[offIsRoot] = 1
	} else {
		p.Buf[offIsRoot] = 0
	}
}

func getParent(p *storage.Page) storage.PageID {
	return storage.PageID(storage.GetU32(p.Buf, offParentPage))
}
func setParent(p *storage.Page, id storage.PageID) {
	storage.PutU32(p.Buf, offParentPage, uint32(id))
}

// ---- leaf ----

func getNextLeaf(p *storage.Page) storage.PageID {
	return storage.PageID(storage.GetU32(p.Buf, offNextLeaf))
}
func setNextLeaf(p *storage.Page, id storage.PageID) {
	storage.PutU32(p.Buf, offNextLeaf, uint32(id))
}

func getNumCells(p *storage.Page) int { return int(storage.GetU32(p.Buf, offNumCells)) }
func setNumCells(p *storage.Page, n int) { storage.PutU32(p.Buf, offNumCells, uint32(n)) }

func leafCellOffset(i int) int { return leafCellsStart + i*LeafNodeCellSize }

func leafCellKey(p *storage.Page, i int) uint32 {
	return storage.GetU32(p.Buf, leafCellOffset(i))
}

func leafCellRow(p *storage.Page, i int) (row.Row, error) {
	off := leafCellOffset(i) + 4
	return row.Decode(p.Buf[off : off+row.Size])
}

func setLeafCell(p *storage.Page, i int, key uint32, r row.Row) {
	off := leafCellOffset(i)
	storage.PutU32(p.Buf, off, key)
	copy(p.Buf[off+4:off+LeafNodeCellSize], r.Encode())
}

func initLeaf(p *storage.Page, isRoot bool, parent storage.PageID) {
	setNodeType(p, NodeLeaf)
	setIsRoot(p, isRoot)
	setParent(p, parent)
	setNextLeaf(p, storage.NoPage)
	setNumCells(p, 0)
}

// ---- internal ----

func getNumKeys(p *storage.Page) int { return int(storage.GetU32(p.Buf, offNumKeys)) }
func setNumKeys(p *storage.Page, n int) { storage.PutU32(p.Buf, offNumKeys, uint32(n)) }

func getRightChild(p *storage.Page) storage.PageID {
	return storage.PageID(storage.GetU32(p.Buf, offRightChild))
}
func setRightChild(p *storage.Page, id storage.PageID) {
	storage.PutU32(p.Buf, offRightChild, uint32(id))
}

func internalCellOffset(i int) int { return internalCellsStart + i*InternalNodeCellSize }

func internalCellChild(p *storage.Page, i int) storage.PageID {
	return storage.PageID(storage.GetU32(p.Buf, internalCellOffset(i)))
}
func internalCellKey(p *storage.Page, i int) uint32 {
	return storage.GetU32(p.Buf, internalCellOffset(i)+4)
}
func setInternalCell(p *storage.Page, i int, child storage.PageID, key uint32) {
	off := internalCellOffset(i)
	storage.PutU32(p.Buf, off, uint32(child))
	storage.PutU32(p.Buf, off+4, key)
}

func initInternal(p *storage.Page, isRoot bool, parent storage.PageID) {
	setNodeType(p, NodeInternal)
	setIsRoot(p, isRoot)
	setParent(p, parent)
	setNumKeys(p, 0)
	setRightChild(p, storage.NoPage)
}

// internalEntries returns an internal node's keys and the children they bound,
// with the implicit right_child appended as the last (unbounded) entry.
// len(children) == len(keys)+1.
func internalEntries(p *storage.Page) (keys []uint32, children []storage.PageID) {
	n := getNumKeys(p)
	keys = make([]uint32, n)
	children = make([]storage.PageID, n+1)
	for i := 0; i < n; i++ {
		children[i] = internalCellChild(p, i)
		keys[i] = internalCellKey(p, i)
	}
	children[n] = getRightChild(p)
	return keys, children
}

// writeInternalEntries encodes keys/children (len(children)==len(keys)+1)
// back into the page, preserving its parent/is_root flags.
func writeInternalEntries(p *storage.Page, keys []uint32, children []storage.PageID) {
	setNumKeys(p, len(keys))
	for i, k := range keys {
		setInternalCell(p, i, children[i], k)
	}
	setRightChild(p, children[len(children)-1])
}

func indexOfChild(children []storage.PageID, id storage.PageID) int {
	for i, c := range children {
		if c == id {
			return i
		}
	}
	return -1
}

// maxKeyInLeaf returns the largest key on a leaf with at least one cell.
func maxKeyInLeaf(p *storage.Page) uint32 {
	return leafCellKey(p, getNumCells(p)-1)
}
