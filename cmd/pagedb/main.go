// Command pagedb opens a single-table database file and drives the
// line-oriented shell defined in internal/shell against it.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"pagedb/internal/config"
	"pagedb/internal/engine"
	"pagedb/internal/shell"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "", "path to YAML config file (optional)")
		pageSize   = flag.Int("page-size", 0, "override page size in bytes (0 = use config/default)")
		cacheSlots = flag.Int("cache-slots", 0, "override pager cache slots (0 = use config/default)")
		logLevel   = flag.String("log-level", "", "override log level: debug|info|warn|error")
		historyArg = flag.String("history", "", "shell history file path (default ~/.pagedb_history)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <db-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}
	dbPath := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pagedb: %v\n", err)
		return 1
	}
	if *pageSize > 0 {
		cfg.Storage.PageSize = *pageSize
	}
	if *cacheSlots > 0 {
		cfg.Storage.CacheSlots = *cacheSlots
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	})))

	db, err := engine.Open(dbPath, uint32(cfg.Storage.PageSize), cfg.Storage.CacheSlots)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pagedb: open %s: %v\n", dbPath, err)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("pagedb.close", "err", err)
		}
	}()

	historyPath := *historyArg
	if historyPath == "" {
		historyPath = shell.DefaultHistoryPath()
	}

	return shell.Run(db, historyPath)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
