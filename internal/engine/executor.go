package engine

import (
	"pagedb/internal/btree"
	"pagedb/internal/planner"
	"pagedb/internal/predicate"
	"pagedb/internal/row"
)

// collectMatches drives the cursor according to the planner's chosen
// access path and copies every matching row into a buffer, per spec.md
// §4.5: reads must finish scanning before any later mutation, so the
// buffer is fully materialized here rather than streamed.
func (db *Database) collectMatches(expr predicate.Expr) ([]row.Row, error) {
	plan := planner.Build(expr, db.plannerStats())

	switch plan.Kind {
	case planner.PointLookup:
		return db.collectPointLookup(plan)
	case planner.RangeScan:
		return db.collectRangeScan(plan)
	default:
		return db.collectFullScan(plan)
	}
}

func (db *Database) plannerStats() planner.Stats {
	snap := db.Stats()
	return planner.Stats{
		HasMinID: snap.HasMinID,
		MinID:    snap.MinID,
		HasMaxID: snap.HasMaxID,
		MaxID:    snap.MaxID,
	}
}

func (db *Database) collectPointLookup(plan planner.Plan) ([]row.Row, error) {
	r, found, err := db.tree.Search(plan.PointKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	ok, err := matches(plan.Full, r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return []row.Row{r}, nil
}

func (db *Database) collectRangeScan(plan planner.Plan) ([]row.Row, error) {
	if plan.HasLo && plan.HasHi && plan.Lo > plan.Hi {
		return nil, nil // trivially empty range
	}

	cur, err := db.seekRangeStart(plan)
	if err != nil {
		return nil, err
	}

	var out []row.Row
	for !cur.End() {
		key, err := cur.Key()
		if err != nil {
			return nil, err
		}
		if plan.HasHi && key > plan.Hi {
			break
		}
		r, err := cur.Row()
		if err != nil {
			return nil, err
		}
		ok, err := matches(plan.Full, r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
		cur.Advance()
	}
	return out, nil
}

func (db *Database) seekRangeStart(plan planner.Plan) (*btree.Cursor, error) {
	if plan.HasLo {
		return db.tree.SeekFirstGE(plan.Lo)
	}
	return db.tree.SeekStart()
}

func (db *Database) collectFullScan(plan planner.Plan) ([]row.Row, error) {
	cur, err := db.tree.SeekStart()
	if err != nil {
		return nil, err
	}
	var out []row.Row
	for !cur.End() {
		r, err := cur.Row()
		if err != nil {
			return nil, err
		}
		ok, err := matches(plan.Full, r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
		cur.Advance()
	}
	return out, nil
}

func matches(expr predicate.Expr, r row.Row) (bool, error) {
	if expr == nil {
		return true, nil
	}
	return predicate.Eval(expr, r)
}
