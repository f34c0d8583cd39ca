package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"mloc-go/internal/config"
)

// Builder walks a live filesystem and rebuilds the catalog from what it
// finds. Symlinks are not followed; entries that cannot be stat'ed are
// skipped rather than failing the scan.
type Builder struct {
	store *Store
	scan  config.ScanConfig
	skip  *SkipMatcher
	log   *slog.Logger

	// Progress, when set, is invoked with the running row count after each
	// flushed batch.
	Progress func(total int)
}

// NewBuilder creates a builder over store using the given scan settings.
func NewBuilder(store *Store, scan config.ScanConfig, log *slog.Logger) *Builder {
	if scan.BatchSize <= 0 {
		scan.BatchSize = config.DefaultBatchSize
	}
	return &Builder{
		store: store,
		scan:  scan,
		skip:  NewSkipMatcher(scan.Skip),
		log:   log,
	}
}

// Run replaces the catalog contents with a fresh scan of the configured
// root and returns the completed scan record.
func (b *Builder) Run(ctx context.Context) (*Scan, error) {
	scan, err := b.store.BeginScan(b.scan.Root)
	if err != nil {
		return nil, err
	}
	b.log.Info("catalog scan started", "root", b.scan.Root, "scan", scan.ID)

	var (
		batch = make([]FileRow, 0, b.scan.BatchSize)
		total int
		files int64
		dirs  int64
	)

	flush := func() error {
		if err := b.store.InsertBatch(batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		if b.Progress != nil {
			b.Progress(total)
		}
		return nil
	}

	walkErr := filepath.WalkDir(b.scan.Root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// Unreadable entries are logged and skipped; a scan must
			// produce what it can see.
			b.log.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}

		if b.skip.Match(path) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			row := FileRow{Path: path, Name: d.Name(), IsDir: true}
			if info, err := d.Info(); err == nil {
				row.MTime = mtimeSeconds(info)
			}
			batch = append(batch, row)
			dirs++
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				b.log.Warn("skipping unstatable file", "path", path, "error", err)
				return nil
			}
			batch = append(batch, FileRow{
				Path:  path,
				Name:  d.Name(),
				Size:  info.Size(),
				MTime: mtimeSeconds(info),
			})
			files++
		default:
			// Sockets, devices, symlinks: not cataloged.
			return nil
		}

		if len(batch) >= b.scan.BatchSize {
			return flush()
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", b.scan.Root, walkErr)
	}

	if err := flush(); err != nil {
		return nil, err
	}

	if err := b.store.FinishScan(scan.ID, files, dirs); err != nil {
		return nil, err
	}
	scan.FileCount = files
	scan.DirCount = dirs
	scan.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	b.log.Info("catalog scan finished", "scan", scan.ID, "files", files, "dirs", dirs)
	return scan, nil
}

func mtimeSeconds(info fs.FileInfo) float64 {
	t := info.ModTime()
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}
