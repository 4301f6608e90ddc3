package storage

import (
	"container/list"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

// Pager maps a flat file into fixed-size pages, caches them in memory
// bounded by a slot table, and writes dirty pages back on demand. Page 0
// (the header) is pinned: it always lives in the cache and is never a
// candidate for eviction.
//
// Grounded on the cache/frame bookkeeping of a CLOCK buffer pool, but
// implements least-recently-used eviction as spec.md §4.1 requires.
type Pager struct {
	file     *os.File
	pageSize int

	numPages atomic.Uint32

	mu        sync.Mutex
	header    *Page
	cacheCap  int
	frames    map[PageID]*list.Element // PageID -> lru element (nil for header)
	lru       *list.List               // front = most recently used
	fileSize  int64

	txnActive      bool
	shadows        map[PageID][]byte
	preTxnNumPages uint32
}

type lruEntry struct {
	id   PageID
	page *Page
}

// Open opens path, creating a fresh database (header page + one empty
// leaf root) if the file is empty. cacheSlots bounds the number of
// non-header pages kept resident; DefaultCacheSlots is used if <= 0.
func Open(path string, pageSize uint32, cacheSlots int) (*Pager, error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if cacheSlots <= 0 {
		cacheSlots = DefaultCacheSlots
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: stat %s: %v", ErrIO, path, err)
	}

	p := &Pager{
		file:     f,
		pageSize: int(pageSize),
		cacheCap: cacheSlots,
		frames:   make(map[PageID]*list.Element, cacheSlots),
		lru:      list.New(),
		fileSize: fi.Size(),
	}

	if fi.Size() == 0 {
		p.header = newPage(HeaderPageID, p.pageSize)
		initHeader(p.header, pageSize)
		p.header.Dirty = true
		p.numPages.Store(2)

		root := newPage(RootPageIDInit, p.pageSize)
		initEmptyLeafRoot(root)
		root.Dirty = true
		p.cachePut(root)

		if err := p.Flush(); err != nil {
			_ = f.Close()
			return nil, err
		}
		slog.Info("storage.pager.created", "path", path, "pageSize", pageSize)
		return p, nil
	}

	hdr, err := p.readPageFromFile(HeaderPageID)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	p.header = hdr
	h := Header{Page: hdr}
	if !h.CheckMagic() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: bad magic in %s", ErrCorruption, path)
	}
	if h.PageSize() != pageSize {
		_ = f.Close()
		return nil, fmt.Errorf("%w: page size mismatch in %s: file=%d requested=%d",
			ErrCorruption, path, h.PageSize(), pageSize)
	}
	p.numPages.Store(h.NumPages())
	slog.Info("storage.pager.opened", "path", path, "numPages", h.NumPages())
	return p, nil
}

func (p *Pager) PageSize() int     { return p.pageSize }
func (p *Pager) NumPages() uint32  { return p.numPages.Load() }
func (p *Pager) Header() *Header   { return &Header{Page: p.header} }

// SetNumPages is used by the transaction manager to roll the allocation
// counter back to its pre-transaction value on ROLLBACK.
func (p *Pager) SetNumPages(n uint32) {
	p.numPages.Store(n)
	h := Header{Page: p.header}
	h.SetNumPages(n)
}

// Get returns a read view of page id, faulting it in from the cache or
// the file. The returned buffer must not be retained across a subsequent
// mutating tree operation (spec §5): copy out what you need first.
func (p *Pager) Get(id PageID) (*Page, error) {
	return p.get(id, false)
}

// GetMut returns a page for mutation and marks it dirty immediately: the
// pager assumes the caller will write into Buf.
func (p *Pager) GetMut(id PageID) (*Page, error) {
	return p.get(id, true)
}

func (p *Pager) get(id PageID, mut bool) (*Page, error) {
	if id == HeaderPageID {
		if mut {
			p.shadow(id, p.header.Buf)
			p.header.Dirty = true
		}
		return p.header, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if el, ok := p.frames[id]; ok {
		p.lru.MoveToFront(el)
		pg := el.Value.(*lruEntry).page
		if mut {
			p.shadow(id, pg.Buf)
			pg.Dirty = true
		}
		return pg, nil
	}

	if uint32(id) >= p.numPages.Load() {
		return nil, fmt.Errorf("%w: page %d", ErrPageOutOfRange, id)
	}

	pg, err := p.readPageFromFile(id)
	if err != nil {
		return nil, err
	}
	if mut {
		p.shadow(id, pg.Buf)
		pg.Dirty = true
	}
	p.cachePutLocked(pg)
	return pg, nil
}

// Allocate reserves a new page id, installs a zeroed dirty page for it in
// the cache, and returns the id. It does not grow the file until Flush.
func (p *Pager) Allocate() (PageID, error) {
	id := PageID(p.numPages.Load())
	p.numPages.Add(1)
	h := Header{Page: p.header}
	h.SetNumPages(p.numPages.Load())
	p.header.Dirty = true

	pg := newPage(id, p.pageSize)
	pg.Dirty = true

	p.mu.Lock()
	p.cachePutLocked(pg)
	p.mu.Unlock()

	slog.Debug("storage.pager.allocate", "pageID", id)
	return id, nil
}

// cachePut installs a page without needing to hold p.mu (used during Open
// before the pager is shared).
func (p *Pager) cachePut(pg *Page) {
	p.mu.Lock()
	p.cachePutLocked(pg)
	p.mu.Unlock()
}

func (p *Pager) cachePutLocked(pg *Page) {
	if el, ok := p.frames[pg.ID]; ok {
		el.Value.(*lruEntry).page = pg
		p.lru.MoveToFront(el)
		return
	}
	for p.lru.Len() >= p.cacheCap && p.evictOneLocked() {
	}
	el := p.lru.PushFront(&lruEntry{id: pg.ID, page: pg})
	p.frames[pg.ID] = el
}

// evictOneLocked evicts the least-recently-used evictable page, skipping
// over any page that's shadowed in an active transaction (§5: shadowed
// pages must not be written back to disk before COMMIT). It reports
// whether it evicted anything; if every resident page is shadowed, the
// cache is allowed to temporarily exceed cacheCap.
func (p *Pager) evictOneLocked() bool {
	for el := p.lru.Back(); el != nil; el = el.Prev() {
		entry := el.Value.(*lruEntry)
		if p.txnActive {
			if _, shadowed := p.shadows[entry.id]; shadowed {
				continue
			}
		}
		p.evictEntryLocked(el, entry)
		return true
	}
	return false
}

func (p *Pager) evictEntryLocked(el *list.Element, entry *lruEntry) {
	if entry.page.Dirty {
		if err := p.writePageToFile(entry.page); err != nil {
			slog.Error("storage.pager.evict_flush_failed", "pageID", entry.id, "err", err)
		} else {
			entry.page.Dirty = false
		}
	}
	p.lru.Remove(el)
	delete(p.frames, entry.id)
	slog.Debug("storage.pager.evict", "pageID", entry.id)
}

// Flush writes every dirty page (including the header, written last) back
// to the file.
func (p *Pager) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for el := p.lru.Back(); el != nil; el = el.Prev() {
		entry := el.Value.(*lruEntry)
		if !entry.page.Dirty {
			continue
		}
		if err := p.writePageToFile(entry.page); err != nil {
			return err
		}
		entry.page.Dirty = false
	}

	if p.header.Dirty {
		if err := p.writePageToFile(p.header); err != nil {
			return err
		}
		p.header.Dirty = false
	}
	return nil
}

// Close flushes, then closes the underlying file, aggregating both
// possible failures instead of discarding the second.
func (p *Pager) Close() error {
	flushErr := p.Flush()
	closeErr := p.file.Close()
	return multierr.Combine(flushErr, closeErr)
}

// RestorePage overwrites the cached contents of id with buf and clears its
// dirty flag, without touching the file. Used by the transaction manager
// to undo a shadowed page on ROLLBACK.
func (p *Pager) RestorePage(id PageID, buf []byte) {
	if id == HeaderPageID {
		copy(p.header.Buf, buf)
		p.header.Dirty = false
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if el, ok := p.frames[id]; ok {
		pg := el.Value.(*lruEntry).page
		copy(pg.Buf, buf)
		pg.Dirty = false
		return
	}
	// Not resident: install the restored copy directly, clean.
	pg := newPage(id, p.pageSize)
	copy(pg.Buf, buf)
	p.cachePutLocked(pg)
}

func (p *Pager) readPageFromFile(id PageID) (*Page, error) {
	pg := newPage(id, p.pageSize)
	offset := int64(id) * int64(p.pageSize)

	if offset >= p.fileSize {
		return pg, nil // allocated but never written: zero page
	}

	n, err := p.file.ReadAt(pg.Buf, offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: read page %d: %v", ErrIO, id, err)
	}
	for i := n; i < len(pg.Buf); i++ {
		pg.Buf[i] = 0 // partial trailing page is zero-filled
	}
	return pg, nil
}

func (p *Pager) writePageToFile(pg *Page) error {
	offset := int64(pg.ID) * int64(p.pageSize)
	if _, err := p.file.WriteAt(pg.Buf, offset); err != nil {
		return fmt.Errorf("%w: write page %d: %v", ErrIO, pg.ID, err)
	}
	if end := offset + int64(p.pageSize); end > p.fileSize {
		p.fileSize = end
	}
	return nil
}
