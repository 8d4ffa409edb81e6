// Package ingest runs the offline indexing pipeline: load transcripts,
// chunk them, and upsert the chunks into the vector store in rate-limited
// batches. It is a single-writer batch job, not a daemon.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/podsage/podsage/engine/corpus"
	"github.com/podsage/podsage/engine/domain"
	"github.com/podsage/podsage/engine/semantic"
	"github.com/podsage/podsage/pkg/fn"
	"github.com/podsage/podsage/pkg/resilience"
)

const (
	// DefaultBatchSize is the number of chunks embedded and upserted per call.
	DefaultBatchSize = 50
	// DefaultMaxRetries bounds attempts per batch when the embedder throttles.
	DefaultMaxRetries = 5
	// DefaultRetryBase is the first backoff wait; waits double per attempt.
	DefaultRetryBase = 2 * time.Second
)

// Upserter is what the ingester needs from the vector store.
type Upserter interface {
	Upsert(ctx context.Context, records []semantic.Record) error
	Count(ctx context.Context) (uint64, error)
}

// Options tunes the pipeline. Zero values fall back to the defaults above.
type Options struct {
	ChunkSize  int
	BatchSize  int
	MaxRetries int
	RetryBase  time.Duration
	// Limiter, if set, paces batch submissions against the provider quota.
	Limiter *resilience.Limiter
}

// Summary reports what one run did.
type Summary struct {
	Documents      int
	Skipped        int
	Chunks         int
	BatchesSkipped int
	IndexCount     uint64
}

// Ingester drives one corpus through chunking and into the store.
type Ingester struct {
	store Upserter
	log   *slog.Logger
	opts  Options
}

// New creates an Ingester.
func New(store Upserter, log *slog.Logger, opts Options) *Ingester {
	if log == nil {
		log = slog.Default()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = domain.DefaultChunkSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = DefaultRetryBase
	}
	return &Ingester{store: store, log: log, opts: opts}
}

// Run ingests every transcript under root. Malformed documents were already
// skipped by the loader; a batch that keeps hitting rate limits after all
// retries is skipped and counted, while any other store failure aborts the
// run. The returned Summary is valid even on error.
func (ing *Ingester) Run(ctx context.Context, root string) (Summary, error) {
	var sum Summary

	docs, skipped, err := corpus.LoadDocuments(root, ing.log)
	if err != nil {
		return sum, err
	}
	sum.Documents = len(docs)
	sum.Skipped = skipped

	chunk := fn.TracedStage("ingest.chunk", fn.MapStage(func(d document) []domain.Chunk {
		chunks := corpus.ChunkDocument(d.doc, ing.opts.ChunkSize)
		for i := range chunks {
			chunks[i].ID = chunkID(d.doc.Meta.Guest, d.ordinal, i)
		}
		return chunks
	}))

	var records []semantic.Record
	for i, doc := range docs {
		chunks, _ := chunk(ctx, document{doc: doc, ordinal: i}).Unwrap()
		for _, c := range chunks {
			records = append(records, semantic.Record{
				ID:       c.ID,
				Text:     c.Text,
				Index:    c.Index,
				Meta:     c.Meta,
				Speakers: c.Speakers,
			})
		}
		ing.log.Info("ingest: chunked", "folder", doc.Meta.Folder, "chunks", len(chunks))
	}
	sum.Chunks = len(records)

	retry := ing.retryOpts()

	for start := 0; start < len(records); start += ing.opts.BatchSize {
		end := min(start+ing.opts.BatchSize, len(records))
		batch := records[start:end]

		if ing.opts.Limiter != nil {
			if err := ing.opts.Limiter.Wait(ctx); err != nil {
				return sum, err
			}
		}

		result := fn.RetryIf(ctx, retry, isRateLimited, func(ctx context.Context) fn.Result[int] {
			if err := ing.store.Upsert(ctx, batch); err != nil {
				return fn.Err[int](err)
			}
			return fn.Ok(len(batch))
		})
		if _, err := result.Unwrap(); err != nil {
			if isRateLimited(err) {
				ing.log.Warn("ingest: batch skipped after retries", "offset", start, "size", len(batch), "error", err)
				sum.BatchesSkipped++
				continue
			}
			return sum, fmt.Errorf("ingest: batch at offset %d: %w", start, err)
		}
		ing.log.Info("ingest: batch stored", "offset", start, "size", len(batch))
	}

	count, err := ing.store.Count(ctx)
	if err != nil {
		ing.log.Warn("ingest: count unavailable", "error", err)
	} else {
		sum.IndexCount = count
	}
	return sum, nil
}

// retryOpts derives the batch backoff schedule from the configured budget:
// waits start at RetryBase, double per attempt, and cap at the wait the
// final attempt would use.
func (ing *Ingester) retryOpts() fn.RetryOpts {
	return fn.RetryOpts{
		MaxAttempts: ing.opts.MaxRetries,
		InitialWait: ing.opts.RetryBase,
		MaxWait:     ing.opts.RetryBase << (ing.opts.MaxRetries - 1),
	}
}

type document struct {
	doc     domain.Document
	ordinal int
}

// chunkID builds {guest}_{document-ordinal}_{chunk-ordinal}. The loader's
// Unknown display default folds to lowercase here so ids stay stable whether
// or not the front matter named a guest.
func chunkID(guest string, docOrdinal, chunkOrdinal int) string {
	g := strings.TrimSpace(guest)
	if g == "" || g == "Unknown" {
		g = "unknown"
	}
	return fmt.Sprintf("%s_%d_%d", g, docOrdinal, chunkOrdinal)
}

func isRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
