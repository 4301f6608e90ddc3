package shell

import (
	"errors"
	"fmt"
	"io"

	"pagedb/internal/btree"
	"pagedb/internal/engine"
	"pagedb/internal/predicate"
	"pagedb/internal/storage"
)

// execResult reports what the REPL loop should do after one line.
type execResult struct {
	exit bool
}

// execute runs one parsed line against db, writing rows/output to w. A
// fatal error (corruption or I/O, spec.md §7) is returned for the caller
// to abort on; every other error is reported to w and swallowed so the
// session continues.
func execute(db *engine.Database, line string, w io.Writer) (execResult, error) {
	cmd, err := parseCommand(line)
	if err != nil {
		report(w, err)
		return execResult{}, nil
	}

	switch cmd.kind {
	case cmdExit:
		return execResult{exit: true}, nil

	case cmdBegin:
		return execResult{}, reportUnlessFatal(w, db.Begin())
	case cmdCommit:
		return execResult{}, reportUnlessFatal(w, db.Commit())
	case cmdRollback:
		return execResult{}, reportUnlessFatal(w, db.Rollback())

	case cmdAnalyze:
		return execResult{}, reportUnlessFatal(w, db.Analyze())

	case cmdStats:
		printStats(db, w)
		return execResult{}, nil

	case cmdBtree:
		return execResult{}, reportUnlessFatal(w, db.DumpTree(w))

	case cmdConstants:
		printConstants(db, w)
		return execResult{}, nil

	case cmdInsert:
		return execResult{}, reportUnlessFatal(w, db.Insert(cmd.id, cmd.username, cmd.email))

	case cmdSelectAll:
		return execResult{}, runSelect(db, nil, w)

	case cmdSelectWhere:
		expr, err := predicate.Parse(cmd.whereSrc)
		if err != nil {
			report(w, err)
			return execResult{}, nil
		}
		return execResult{}, runSelect(db, expr, w)

	case cmdUpdateByID:
		return execResult{}, reportUnlessFatal(w, db.UpdateByID(cmd.id, cmd.username, cmd.email))

	case cmdUpdateWhere:
		expr, err := predicate.Parse(cmd.whereSrc)
		if err != nil {
			report(w, err)
			return execResult{}, nil
		}
		_, err = db.UpdateWhere(expr, cmd.username, cmd.email)
		return execResult{}, reportUnlessFatal(w, err)

	case cmdDeleteByID:
		return execResult{}, reportUnlessFatal(w, db.DeleteByID(cmd.id))

	case cmdDeleteWhere:
		expr, err := predicate.Parse(cmd.whereSrc)
		if err != nil {
			report(w, err)
			return execResult{}, nil
		}
		_, err = db.DeleteWhere(expr)
		return execResult{}, reportUnlessFatal(w, err)
	}

	report(w, ErrBadCommand)
	return execResult{}, nil
}

func runSelect(db *engine.Database, expr predicate.Expr, w io.Writer) error {
	rows, err := db.Select(expr)
	if err != nil {
		return reportUnlessFatal(w, err)
	}
	for _, r := range rows {
		fmt.Fprintln(w, formatRow(r))
	}
	return nil
}

// reportUnlessFatal prints non-fatal errors to w and swallows them;
// corruption/I/O errors are returned for the caller to abort on.
func reportUnlessFatal(w io.Writer, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrIO) || errors.Is(err, storage.ErrCorruption) {
		return err
	}
	report(w, err)
	return nil
}

func report(w io.Writer, err error) {
	fmt.Fprintln(w, formatError(err))
}

func printStats(db *engine.Database, w io.Writer) {
	s := db.Stats()
	fmt.Fprintf(w, "row_count: %d\n", s.RowCount)
	if s.HasMinID {
		fmt.Fprintf(w, "min_id: %d\n", s.MinID)
	} else {
		fmt.Fprintln(w, "min_id: (none)")
	}
	if s.HasMaxID {
		fmt.Fprintf(w, "max_id: %d\n", s.MaxID)
	} else {
		fmt.Fprintln(w, "max_id: (none)")
	}
	fmt.Fprintf(w, "distinct_username_est: %d\n", s.DistinctUsernameEst)
	fmt.Fprintf(w, "distinct_email_est: %d\n", s.DistinctEmailEst)
	fmt.Fprintf(w, "last_analyze_epoch: %d\n", s.LastAnalyzeEpoch)
}

func printConstants(db *engine.Database, w io.Writer) {
	btree.DumpConstants(w, db.Constants())
}
