package shell

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"

	"pagedb/internal/engine"
	"pagedb/internal/storage"
)

// Run drives the interactive REPL against db until `.exit`, EOF, or a
// fatal error. It returns the process exit code (spec.md §6: 0 on
// `.exit`, non-zero on fatal I/O).
func Run(db *engine.Database, historyPath string) int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "pagedb> ",
		HistoryFile:     historyPath,
		InterruptPrompt: "^C",
		EOFPrompt:       ".exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "shell: readline: %v\n", err)
		return 1
	}
	defer func() { _ = rl.Close() }()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Println("^C")
			continue
		}
		if err != nil { // EOF
			fmt.Println()
			return 0
		}
		if line == "" {
			continue
		}

		res, err := execute(db, line, os.Stdout)
		if err != nil {
			if isFatal(err) {
				fmt.Fprintf(os.Stderr, "pagedb: %v\n", err)
				slog.Error("shell.fatal", "err", err)
				return 1
			}
			fmt.Fprintln(os.Stdout, formatError(err))
			continue
		}
		if res.exit {
			return 0
		}
	}
}

// isFatal reports whether err is a corruption or I/O failure that must
// terminate the session per spec.md §7, rather than a per-statement
// error that simply gets reported and skipped.
func isFatal(err error) bool {
	return errors.Is(err, storage.ErrIO) || errors.Is(err, storage.ErrCorruption)
}

// DefaultHistoryPath mirrors the teacher's client history convention: a
// dotfile in the user's home directory.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".pagedb_history"
	}
	return filepath.Join(home, ".pagedb_history")
}
