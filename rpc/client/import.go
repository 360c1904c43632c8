package client

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/hightman/xunsearch/lib/datasource"
	"github.com/hightman/xunsearch/lib/document"
	"github.com/hightman/xunsearch/lib/metrics"
	"github.com/hightman/xunsearch/lib/xserror"
	gometrics "github.com/rcrowley/go-metrics"
)

// DefaultProgressEvery is the number of records between two progress logs
const DefaultProgressEvery = 10000

// ImportOptions configures a bulk import
type ImportOptions struct {
	Rebuild       bool // rebuild the database, replacing all documents
	Add           bool // add documents instead of replacing documents with the same key
	BufferMB      int  // send buffer size, default DefaultBufferMB
	ProgressEvery int  // default DefaultProgressEvery

	// Charset of the records, default the charset reported by the source or
	// the default charset of the project
	Charset string
}

// ImportStats summarizes a bulk import
type ImportStats struct {
	Imported int
	Failed   int
	Invalid  int
	Flushed  bool
	Duration time.Duration
}

// Import indexes every record of src. Records that can not be indexed are
// counted and skipped. Afterwards the rebuild is finished or the index is
// flushed, and cached counts are dropped.
func (idx *Index) Import(ctx context.Context, src datasource.Source, opts ImportOptions) (*ImportStats, error) {
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	if opts.BufferMB <= 0 {
		opts.BufferMB = DefaultBufferMB
	}
	charset := opts.Charset
	if charset == "" {
		charset = src.Charset()
	}
	if charset == "" {
		charset = idx.xs.DefaultCharset()
	}

	m := metrics.Default()
	meter := gometrics.NewMeter()
	defer meter.Stop()
	start := time.Now()
	stats := &ImportStats{}

	if opts.Rebuild {
		if err := idx.BeginRebuild(); err != nil {
			return nil, err
		}
		Logger.Infof("Rebuilding database of %s", idx.xs.Name())
	}

	// records of an acknowledging source must reach the server before the ack
	acker, acking := src.(datasource.Acker)
	if !acking {
		if err := idx.OpenBuffer(opts.BufferMB); err != nil {
			return nil, err
		}
	}

	var runErr error
	for {
		if runErr = ctx.Err(); runErr != nil {
			break
		}
		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			runErr = err
			break
		}

		doc := document.NewWithFields(rec, charset)
		err = idx.update(doc, opts.Add)
		switch {
		case err == nil:
			stats.Imported++
		case errors.Is(err, xserror.ErrReplica):
			Logger.Warningf("Document %q not indexed on every replica: %v", doc.Get(idx.xs.Scheme().FieldID().Name), err)
			stats.Imported++
		case errors.Is(err, xserror.ErrTransport):
			runErr = err
		default:
			Logger.Warningf("Skipping document %q: %v", doc.Get(idx.xs.Scheme().FieldID().Name), err)
			stats.Failed++
			m.DocsFailedTotal.Inc()
		}
		if runErr != nil {
			break
		}
		if err == nil || errors.Is(err, xserror.ErrReplica) {
			meter.Mark(1)
			m.DocsImportedTotal.Inc()
		}

		if acking {
			if runErr = acker.Ack(ctx); runErr != nil {
				break
			}
		}
		if n := stats.Imported + stats.Failed; n%opts.ProgressEvery == 0 {
			Logger.Infof("Processed %d records, %d failed (%.1f docs/s)", n, stats.Failed, meter.Rate1())
		}
	}

	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	if !acking {
		if err := idx.CloseBuffer(); err != nil {
			errs = append(errs, err)
		}
	}
	if opts.Rebuild {
		if err := idx.EndRebuild(); err != nil {
			errs = append(errs, err)
		}
	} else if len(errs) == 0 {
		flushed, err := idx.FlushIndex()
		switch {
		case err != nil:
			m.IndexFlushesTotal.WithLabelValues("error").Inc()
			errs = append(errs, err)
		case flushed:
			m.IndexFlushesTotal.WithLabelValues("ok").Inc()
		default:
			m.IndexFlushesTotal.WithLabelValues("busy").Inc()
		}
		stats.Flushed = flushed
	}

	if counts := idx.xs.opts.counts; counts != nil {
		if _, err := counts.Invalidate(ctx); err != nil {
			Logger.Warningf("Failed to drop cached counts: %v", err)
		}
	}

	stats.Invalid = src.Invalid()
	stats.Duration = time.Since(start)
	m.InvalidItemsTotal.Add(float64(stats.Invalid))
	m.ImportDuration.Observe(stats.Duration.Seconds())
	Logger.Infof("Imported %d documents into %s in %s (%.1f docs/s), %d failed, %d invalid",
		stats.Imported, idx.xs.Name(), stats.Duration.Round(time.Millisecond), meter.RateMean(), stats.Failed, stats.Invalid)

	return stats, errors.Join(errs...)
}
