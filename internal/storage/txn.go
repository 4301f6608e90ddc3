package storage

// Shadow-paging support for the transaction manager (spec.md §4.6): while
// a transaction is active, the first mutation to any page snapshots its
// pre-transaction bytes; ROLLBACK restores every snapshot and resets the
// allocation counter instead of writing anything to disk.

func (p *Pager) BeginShadowing() {
	p.txnActive = true
	p.shadows = make(map[PageID][]byte)
	p.preTxnNumPages = p.numPages.Load()
	p.shadow(HeaderPageID, p.header.Buf)
}

// EndShadowing stops recording shadows, leaving the cache as-is (used by
// COMMIT, which flushes separately).
func (p *Pager) EndShadowing() {
	p.txnActive = false
	p.shadows = nil
}

// Rollback restores every shadowed page's pre-transaction bytes and resets
// num_pages, undoing everything touched since BeginShadowing.
func (p *Pager) Rollback() {
	for id, buf := range p.shadows {
		p.RestorePage(id, buf)
	}
	p.SetNumPages(p.preTxnNumPages)
	p.txnActive = false
	p.shadows = nil
}

// shadow records id's current bytes the first time it's touched during a
// transaction. No-op outside a transaction or on a page already shadowed.
func (p *Pager) shadow(id PageID, buf []byte) {
	if !p.txnActive {
		return
	}
	if _, ok := p.shadows[id]; ok {
		return
	}
	cp := make([]byte, len(buf))
	copy(cp, buf)
	p.shadows[id] = cp
}
