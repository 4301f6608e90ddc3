package storage

const (
	offMagic       = 0
	offPageSize    = offMagic + MagicSize
	offRootPageID  = offPageSize + 4
	offNumPages    = offRootPageID + 4
	offStatsOffset = offNumPages + 4
	offStatsBlob   = offStatsOffset + 4

	// StatsBlobSize is six u32 fields: row_count, min_id, max_id,
	// distinct_username, distinct_email, last_analyze_epoch.
	StatsBlobSize = 6 * 4

	// HeaderPageID is always page 0.
	HeaderPageID PageID = 0

	// RootPageIDInit is the page id of the single empty leaf root created
	// when a database file is first opened.
	RootPageIDInit PageID = 1
)

// NoBound is the stats sentinel for "undefined" min/max id (spec I7).
const NoBound uint32 = 0xFFFFFFFF

// Header is a thin view over the page-0 buffer. Every accessor reads or
// writes directly into the backing page, so callers must mark the page
// dirty through the pager after any Set call.
type Header struct {
	Page *Page
}

func initHeader(p *Page, pageSize uint32) {
	copy(p.Buf[offMagic:offMagic+MagicSize], Magic[:])
	PutU32(p.Buf, offPageSize, pageSize)
	PutU32(p.Buf, offRootPageID, uint32(RootPageIDInit))
	PutU32(p.Buf, offNumPages, 2) // header page + initial leaf root
	PutU32(p.Buf, offStatsOffset, offStatsBlob)

	h := Header{Page: p}
	h.SetRowCount(0)
	h.SetMinID(NoBound)
	h.SetMaxID(NoBound)
	h.SetDistinctUsername(0)
	h.SetDistinctEmail(0)
	h.SetLastAnalyzeEpoch(0)
}

func (h Header) CheckMagic() bool {
	for i := 0; i < MagicSize; i++ {
		if h.Page.Buf[offMagic+i] != Magic[i] {
			return false
		}
	}
	return true
}

func (h Header) PageSize() uint32      { return GetU32(h.Page.Buf, offPageSize) }
func (h Header) RootPageID() PageID    { return PageID(GetU32(h.Page.Buf, offRootPageID)) }
func (h Header) SetRootPageID(id PageID) { PutU32(h.Page.Buf, offRootPageID, uint32(id)) }
func (h Header) NumPages() uint32      { return GetU32(h.Page.Buf, offNumPages) }
func (h Header) SetNumPages(n uint32)  { PutU32(h.Page.Buf, offNumPages, n) }
func (h Header) StatsOffset() uint32   { return GetU32(h.Page.Buf, offStatsOffset) }

func (h Header) RowCount() uint32     { return GetU32(h.Page.Buf, offStatsBlob+0) }
func (h Header) SetRowCount(v uint32) { PutU32(h.Page.Buf, offStatsBlob+0, v) }
func (h Header) MinID() uint32        { return GetU32(h.Page.Buf, offStatsBlob+4) }
func (h Header) SetMinID(v uint32)    { PutU32(h.Page.Buf, offStatsBlob+4, v) }
func (h Header) MaxID() uint32        { return GetU32(h.Page.Buf, offStatsBlob+8) }
func (h Header) SetMaxID(v uint32)    { PutU32(h.Page.Buf, offStatsBlob+8, v) }
func (h Header) DistinctUsername() uint32     { return GetU32(h.Page.Buf, offStatsBlob+12) }
func (h Header) SetDistinctUsername(v uint32) { PutU32(h.Page.Buf, offStatsBlob+12, v) }
func (h Header) DistinctEmail() uint32        { return GetU32(h.Page.Buf, offStatsBlob+16) }
func (h Header) SetDistinctEmail(v uint32)    { PutU32(h.Page.Buf, offStatsBlob+16, v) }
func (h Header) LastAnalyzeEpoch() uint32     { return GetU32(h.Page.Buf, offStatsBlob+20) }
func (h Header) SetLastAnalyzeEpoch(v uint32) { PutU32(h.Page.Buf, offStatsBlob+20, v) }
