package storage

// PageID addresses a page within a database file. Page 0 is always the
// header page.
type PageID uint32

// NoPage is the sentinel used for "no sibling"/"no parent" links.
const NoPage PageID = 0xFFFFFFFF

// Page is a fixed-size buffer holding the raw bytes of one page. The
// interpretation of those bytes (header, leaf node, internal node) is up
// to the btree package; storage only moves bytes between the cache and
// the file.
type Page struct {
	ID   PageID
	Buf  []byte
	Dirty bool
}

func newPage(id PageID, size int) *Page {
	return &Page{ID: id, Buf: make([]byte, size)}
}

// Raw common/leaf node header offsets, mirrored from btree's node layout
// (spec.md §3). A zeroed page decodes as a leaf with is_root=false, which
// is wrong for the root page Open bootstraps on a fresh file, so the
// pager writes a real empty-leaf-root header directly rather than
// depending on btree (which imports storage, not the other way around).
const (
	rawOffIsRoot     = 1
	rawOffParentPage = 2
	rawOffNextLeaf   = 6
	rawOffNumCells   = 10
)

// initEmptyLeafRoot writes the header of a freshly allocated, empty leaf
// node that is also the tree's root: node_type=leaf(0), is_root=true,
// parent=NoPage, next_leaf=NoPage, num_cells=0.
func initEmptyLeafRoot(p *Page) {
	p.Buf[rawOffIsRoot] = 1
	PutU32(p.Buf, rawOffParentPage, uint32(NoPage))
	PutU32(p.Buf, rawOffNextLeaf, uint32(NoPage))
	PutU32(p.Buf, rawOffNumCells, 0)
}

// Clone returns a deep copy of the page buffer, used by the transaction
// manager to take shadow copies before a page's first modification in a
// transaction.
func (p *Page) Clone() *Page {
	cp := &Page{ID: p.ID, Buf: make([]byte, len(p.Buf))}
	copy(cp.Buf, p.Buf)
	return cp
}
