package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"permit-history/internal/adapters/spreadsheet"
	"permit-history/internal/adapters/storage"
	"permit-history/internal/domain/history"
	"permit-history/internal/domain/permits"
	"permit-history/internal/platform/config"
	"permit-history/internal/platform/logger"
)

// snapshot-import añade uno o varios exports (.xlsx/.csv) como snapshots al store configurado.
//
//	snapshot-import [-captured-at 2026-01-12T09:00:00Z] [-mtime] export1.xlsx [export2.csv ...]
//
// Sin -captured-at, cada fichero usa su fecha de modificación si -mtime, o la hora actual.
func main() {
	capturedAt := flag.String("captured-at", "", "capture time (RFC3339) for all files")
	useMtime := flag.Bool("mtime", false, "use each file's modification time as capture time")
	flag.Parse()

	log := logger.NewFromEnv().With(map[string]any{"cmd": "snapshot-import"})
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: snapshot-import [-captured-at RFC3339] [-mtime] file.xlsx [file.csv ...]")
		os.Exit(2)
	}

	var at time.Time
	if *capturedAt != "" {
		t, err := time.Parse(time.RFC3339, *capturedAt)
		if err != nil {
			log.Error("invalid -captured-at", map[string]any{"error": err})
			os.Exit(2)
		}
		at = t.UTC()
	}

	if err := run(log, flag.Args(), at, *useMtime); err != nil {
		log.Error("import failed", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run(log logger.Logger, paths []string, at time.Time, useMtime bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	normalizer := permits.NewNormalizer()
	normalizer.Departments = cfg.Departments
	normalizer.Location = cfg.DayLocation
	svc := history.NewService(store, history.Options{Normalizer: normalizer, Logger: log})

	for _, path := range paths {
		snap, err := readFile(path)
		if err != nil {
			return err
		}

		snap.CapturedAt = at
		if at.IsZero() && useMtime {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			snap.CapturedAt = info.ModTime().UTC()
		}

		saved, err := svc.Ingest(ctx, snap)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		log.Info("imported", map[string]any{
			"file":        filepath.Base(path),
			"snapshot_id": saved.ID,
			"captured_at": saved.CapturedAt.Format(time.RFC3339),
			"rows":        len(saved.Rows),
		})
	}
	return nil
}

func readFile(path string) (permits.RawSnapshot, error) {
	format, err := spreadsheet.FormatOf(path)
	if err != nil {
		return permits.RawSnapshot{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return permits.RawSnapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	snap, err := spreadsheet.Read(f, format)
	if err != nil {
		return permits.RawSnapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	return snap, nil
}
