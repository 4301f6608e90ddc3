// Package stats implements the statistics blob described in spec.md §4.7:
// a header-resident summary of row_count, min/max id, and distinct
// string-column estimates, kept current incrementally and by full
// recompute on ANALYZE.
package stats

import (
	"time"

	"pagedb/internal/btree"
	"pagedb/internal/storage"
)

// Snapshot is a read-only copy of the statistics blob, suitable for
// printing via `.stats` or handing to the planner.
type Snapshot struct {
	RowCount             uint32
	MinID                uint32
	HasMinID             bool
	MaxID                uint32
	HasMaxID             bool
	DistinctUsernameEst  uint32
	DistinctEmailEst     uint32
	LastAnalyzeEpoch     uint32
}

// Read copies the current blob out of the header.
func Read(h *storage.Header) Snapshot {
	s := Snapshot{
		RowCount:            h.RowCount(),
		DistinctUsernameEst: h.DistinctUsername(),
		DistinctEmailEst:    h.DistinctEmail(),
		LastAnalyzeEpoch:    h.LastAnalyzeEpoch(),
	}
	if min := h.MinID(); min != storage.NoBound {
		s.MinID, s.HasMinID = min, true
	}
	if max := h.MaxID(); max != storage.NoBound {
		s.MaxID, s.HasMaxID = max, true
	}
	return s
}

// OnInsert adjusts row_count and min/max after a successful insert of id.
func OnInsert(h *storage.Header, id uint32) {
	h.SetRowCount(h.RowCount() + 1)
	if h.MinID() == storage.NoBound || id < h.MinID() {
		h.SetMinID(id)
	}
	if h.MaxID() == storage.NoBound || id > h.MaxID() {
		h.SetMaxID(id)
	}
}

// OnDelete adjusts row_count after a successful delete of id, and
// invalidates min/max if the deleted key was either extreme — the next
// ANALYZE or insert repairs it, and the planner treats the sentinel as
// "no bound known" in the meantime (spec I7).
func OnDelete(h *storage.Header, id uint32) {
	if h.RowCount() > 0 {
		h.SetRowCount(h.RowCount() - 1)
	}
	if h.MinID() == id {
		h.SetMinID(storage.NoBound)
	}
	if h.MaxID() == id {
		h.SetMaxID(storage.NoBound)
	}
}

// Analyze full-scans the tree and recomputes every field from scratch.
func Analyze(h *storage.Header, tree *btree.Tree) error {
	cur, err := tree.SeekStart()
	if err != nil {
		return err
	}

	var rowCount uint32
	var minID, maxID uint32
	hasBounds := false
	usernames := make(map[string]struct{})
	emails := make(map[string]struct{})

	for !cur.End() {
		r, err := cur.Row()
		if err != nil {
			return err
		}
		rowCount++
		if !hasBounds {
			minID, maxID = r.ID, r.ID
			hasBounds = true
		} else {
			if r.ID < minID {
				minID = r.ID
			}
			if r.ID > maxID {
				maxID = r.ID
			}
		}
		usernames[r.Username] = struct{}{}
		emails[r.Email] = struct{}{}
		cur.Advance()
	}

	h.SetRowCount(rowCount)
	if hasBounds {
		h.SetMinID(minID)
		h.SetMaxID(maxID)
	} else {
		h.SetMinID(storage.NoBound)
		h.SetMaxID(storage.NoBound)
	}
	h.SetDistinctUsername(uint32(len(usernames)))
	h.SetDistinctEmail(uint32(len(emails)))
	h.SetLastAnalyzeEpoch(uint32(time.Now().Unix()))
	return nil
}
