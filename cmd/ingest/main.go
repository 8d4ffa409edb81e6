// Command ingest loads a transcript corpus from disk, chunks it, and
// indexes the chunks into Qdrant with OpenAI embeddings. It runs to
// completion and exits; re-running after adding episodes is the intended
// update path, since chunk ids make upserts idempotent.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/podsage/podsage/engine/ingest"
	"github.com/podsage/podsage/engine/semantic"
	"github.com/podsage/podsage/pkg/metrics"
	"github.com/podsage/podsage/pkg/openai"
	"github.com/podsage/podsage/pkg/resilience"
)

var met = metrics.New()

var (
	mDocsTotal      = met.Counter("podsage_ingest_docs_total", "Documents loaded from the corpus")
	mDocsSkipped    = met.Counter("podsage_ingest_docs_skipped_total", "Documents skipped as malformed")
	mChunksTotal    = met.Counter("podsage_ingest_chunks_total", "Chunks produced")
	mBatchesSkipped = met.Counter("podsage_ingest_batches_skipped_total", "Batches dropped after rate-limit retries")
	mRunDur         = met.Histogram("podsage_ingest_run_duration_seconds", "Full run time", []float64{1, 5, 15, 60, 300, 900, 3600})
)

func main() {
	var (
		corpusDir   = flag.String("corpus", "./transcripts", "corpus root, one episode directory per transcript")
		qdrantAddr  = flag.String("qdrant", "localhost:6334", "Qdrant gRPC address")
		collection  = flag.String("collection", "podcast_transcripts", "Qdrant collection name")
		chunkSize   = flag.Int("chunk-size", 0, "chunk budget in words (0 = default)")
		batchSize   = flag.Int("batch-size", 0, "chunks per embedding batch (0 = default)")
		embedModel  = flag.String("embed-model", "", "embedding model (default "+openai.DefaultEmbedModel+")")
		baseURL     = flag.String("base-url", "", "OpenAI-compatible API base URL")
		metricsPort = flag.Int("metrics-port", 9091, "port for /metrics")
	)
	flag.Parse()

	godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	met.ServeAsync(*metricsPort, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := openai.New(openai.Config{
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		BaseURL:    *baseURL,
		EmbedModel: *embedModel,
	})
	if err != nil {
		log.Error("openai client failed", "error", err)
		os.Exit(1)
	}

	store, err := semantic.New(*qdrantAddr, *collection, client)
	if err != nil {
		log.Error("qdrant connect failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.EnsureCollection(ctx, openai.EmbedDims); err != nil {
		log.Error("qdrant ensure collection failed", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Qdrant", "collection", *collection, "dims", openai.EmbedDims)

	// One batch every two seconds keeps well inside the embedding quota.
	limiter := resilience.NewLimiter(resilience.LimiterOpts{Rate: 0.5, Burst: 1})

	ing := ingest.New(store, log, ingest.Options{
		ChunkSize: *chunkSize,
		BatchSize: *batchSize,
		Limiter:   limiter,
	})

	start := time.Now()
	sum, err := ing.Run(ctx, *corpusDir)
	mRunDur.Since(start)

	mDocsTotal.Add(int64(sum.Documents))
	mDocsSkipped.Add(int64(sum.Skipped))
	mChunksTotal.Add(int64(sum.Chunks))
	mBatchesSkipped.Add(int64(sum.BatchesSkipped))

	if err != nil {
		log.Error("ingest failed", "error", err,
			"documents", sum.Documents, "chunks", sum.Chunks)
		os.Exit(1)
	}
	log.Info("ingest complete",
		"documents", sum.Documents,
		"skipped", sum.Skipped,
		"chunks", sum.Chunks,
		"batches_skipped", sum.BatchesSkipped,
		"index_count", sum.IndexCount,
		"duration", time.Since(start),
	)
}
