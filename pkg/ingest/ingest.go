// Package ingest runs the per-folder pipeline: load the document, build the
// resolver, then decode every referenced log on a bounded worker pool.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taskdata/pkg/catalog"
	"taskdata/pkg/ddi"
	"taskdata/pkg/logging"
	"taskdata/pkg/merge"
	"taskdata/pkg/metrics"
	"taskdata/pkg/tlg"
)

// ErrNoSources is returned by Run when none of the folders could be loaded.
var ErrNoSources = errors.New("ingest: no TaskData folder could be loaded")

type Options struct {
	// Workers bounds concurrent log decoders per folder; <1 means 1.
	Workers int
	Epoch   time.Time
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Backend tlg.Backend
	// SkipLogs loads metadata only.
	SkipLogs bool
}

// Tag derives a source tag from a folder path.
func Tag(dir string) string { return filepath.Base(filepath.Clean(dir)) }

// Run loads every folder in order. Folders that fail to load are logged and
// skipped; the error is ErrNoSources only when all of them fail. On
// cancellation the sources completed so far are returned with ctx.Err().
func Run(ctx context.Context, dirs []string, opts Options) ([]merge.Source, error) {
	log := logging.OrNop(opts.Logger)
	var (
		out  []merge.Source
		errs []error
	)
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		src, err := LoadSource(ctx, dir, Tag(dir), opts)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			log.Warn("folder skipped", zap.String("dir", dir), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		out = append(out, src)
	}
	if len(out) == 0 && len(dirs) > 0 {
		return nil, errors.Join(append([]error{ErrNoSources}, errs...)...)
	}
	return out, nil
}

// LoadSource loads one folder. Per-log failures are recorded on the TaskLog
// and never fail the source.
func LoadSource(ctx context.Context, dir, tag string, opts Options) (merge.Source, error) {
	log := logging.OrNop(opts.Logger).With(zap.String("source", tag))
	cat, err := catalog.Load(dir, catalog.WithLogger(log))
	if err != nil {
		opts.Metrics.SourceLoaded(false)
		return merge.Source{}, err
	}
	opts.Metrics.SourceLoaded(true)
	src := merge.Source{Tag: tag, Catalog: cat, Logs: map[string]merge.TaskLog{}}
	if opts.SkipLogs {
		return src, nil
	}

	res := ddi.Build(cat)
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	var mu sync.Mutex
	queued := map[string]bool{}
	for _, task := range cat.Tasks() {
		for _, logID := range task.LogRefs {
			if queued[logID] {
				continue
			}
			queued[logID] = true
			fallback := task.DeviceRef()
			g.Go(func() error {
				tl := decodeLog(gctx, cat, res, logID, fallback, tag, opts, log)
				mu.Lock()
				src.Logs[logID] = tl
				mu.Unlock()
				return gctx.Err()
			})
		}
	}
	if err := g.Wait(); err != nil {
		return src, err
	}
	log.Info("folder loaded",
		zap.Int("fields", len(cat.Fields())),
		zap.Int("tasks", len(cat.Tasks())),
		zap.Int("logs", len(src.Logs)))
	return src, nil
}

func decodeLog(ctx context.Context, cat *catalog.Catalog, res *ddi.Resolver, logID, fallback, tag string, opts Options, log *zap.Logger) merge.TaskLog {
	out := merge.TaskLog{LogID: logID}
	log = log.With(zap.String("log", logID))
	backend := opts.Backend
	if backend == nil {
		backend = tlg.SelectBackend()
	}
	began := time.Now()
	defer func() {
		opts.Metrics.LogDecoded(tag, backend.Name(), len(out.Records), out.Warnings, out.Truncated, out.Err, time.Since(began))
	}()

	schema, err := tlg.LoadSchema(cat.Dir(), logID)
	if err != nil {
		out.Err = err
		log.Warn("log header unusable", zap.Error(err))
		return out
	}
	path, err := cat.LogPath(logID)
	if err != nil {
		out.Err = err
		log.Warn("log file missing", zap.Error(err))
		return out
	}
	dec, err := tlg.Open(path, schema, res, tlg.Options{
		Epoch:          opts.Epoch,
		FallbackDevice: fallback,
		Logger:         log,
		Backend:        backend,
	})
	if err != nil {
		out.Err = err
		log.Warn("log unreadable", zap.Error(err))
		return out
	}
	defer dec.Close()

	out.Columns = dec.Columns()
	out.Static = dec.StaticColumns()
	out.GPSTime = dec.HasGPSTime()
	for dec.Next() {
		out.Records = append(out.Records, dec.Record())
		if ctx.Err() != nil {
			out.Err = fmt.Errorf("decode %s: %w", logID, ctx.Err())
			break
		}
	}
	if err := dec.Err(); err != nil {
		out.Err = err
		log.Warn("log read failed", zap.Int("records", len(out.Records)), zap.Error(err))
	}
	out.Warnings = dec.WarningCount()
	out.Truncated = dec.Truncated()
	return out
}
