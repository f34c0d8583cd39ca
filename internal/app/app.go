package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mloc-go/internal/catalog"
	"mloc-go/internal/config"
	"mloc-go/internal/mdb"
	"mloc-go/internal/source"
)

// App is the application layer between the CLI and the decoder/catalog
// packages. It constructs dependencies from config, exposes high-level
// operations that accept raw database references, and manages resource
// lifecycle on Close.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	logFile *os.File
	store   *catalog.Store
}

// NewApp creates an App from the given config. operation identifies the
// CLI command being run (e.g. "Search", "CatalogUpdate"). The caller must
// call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger = logger.With("operation", operation)

	return &App{
		cfg:     cfg,
		log:     logger,
		logFile: logFile,
	}, nil
}

// Logger returns the operation-scoped structured logger.
func (a *App) Logger() *slog.Logger { return a.log }

// OpenDatabase fetches the database image at ref (a local path or an
// s3://bucket/key URI) and decodes it. A truncated image yields both the
// partial database and an error satisfying errors.Is(err, mdb.ErrTruncated);
// callers decide whether truncation is fatal.
func (a *App) OpenDatabase(ctx context.Context, ref string) (*mdb.Database, error) {
	a.log.Info("fetching database image", "ref", ref)
	data, err := source.Fetch(ctx, a.cfg.Source, ref)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ref, err)
	}

	db, err := mdb.Decode(data)
	if err != nil {
		var te *mdb.TruncatedError
		if errors.As(err, &te) && db != nil {
			a.log.Warn("database truncated", "ref", ref, "offset", te.Offset, "records", te.Records)
			return db, err
		}
		return nil, err
	}

	a.log.Info("decoded database", "ref", ref, "records", db.Index.Len(), "root", db.Header.Root)
	return db, nil
}

// Catalog returns the local file catalog store, opening it on first use.
func (a *App) Catalog() (*catalog.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := catalog.NewStoreFromConfig(a.cfg.Catalog, a.cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	a.store = store
	return store, nil
}

// UpdateCatalog walks the configured scan root and rebuilds the catalog.
// root overrides the configured scan root when non-empty. progress, if
// non-nil, is called with the running total as the walk proceeds.
func (a *App) UpdateCatalog(ctx context.Context, root string, progress func(total int)) (*catalog.Scan, error) {
	store, err := a.Catalog()
	if err != nil {
		return nil, err
	}

	scanCfg := a.cfg.Scan
	if root != "" {
		scanCfg.Root = root
	}

	builder := catalog.NewBuilder(store, scanCfg, a.log)
	builder.Progress = progress
	return builder.Run(ctx)
}

// Close releases the catalog store and the log file.
func (a *App) Close() error {
	var firstErr error

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = fmt.Errorf("closing catalog: %w", err)
		}
	}

	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}

	return firstErr
}
