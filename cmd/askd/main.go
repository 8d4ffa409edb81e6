// Command askd serves question answering over the indexed transcript
// corpus: POST a question, get a synthesized answer with citations back.
// Answered questions are kept in memory for markdown export.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/podsage/podsage/engine/domain"
	"github.com/podsage/podsage/engine/rag"
	"github.com/podsage/podsage/engine/semantic"
	"github.com/podsage/podsage/pkg/metrics"
	"github.com/podsage/podsage/pkg/mid"
	"github.com/podsage/podsage/pkg/openai"
	"github.com/podsage/podsage/pkg/resilience"
)

// Retrieval width requested per ask, clamped server-side.
const (
	minTopK = 5
	maxTopK = 20
)

const historySize = 100

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	var (
		port        = flag.String("port", envOr("PORT", "8080"), "listen port")
		qdrantAddr  = flag.String("qdrant", envOr("QDRANT_URL", "localhost:6334"), "Qdrant gRPC address")
		collection  = flag.String("collection", envOr("QDRANT_COLLECTION", "podcast_transcripts"), "Qdrant collection name")
		baseURL     = flag.String("base-url", envOr("OPENAI_BASE_URL", ""), "OpenAI-compatible API base URL")
		embedModel  = flag.String("embed-model", envOr("EMBED_MODEL", ""), "embedding model")
		chatModel   = flag.String("chat-model", envOr("CHAT_MODEL", ""), "chat model")
		topK        = flag.Int("top-k", domain.DefaultTopK, "default chunks retrieved per question")
		metricsPort = flag.Int("metrics-port", 9092, "port for /metrics")
	)
	flag.Parse()

	godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	client, err := openai.New(openai.Config{
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		BaseURL:    *baseURL,
		EmbedModel: *embedModel,
		ChatModel:  *chatModel,
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

	svc := rag.New(store, client, log, rag.Options{TopK: *topK})
	hist := rag.NewHistory(historySize)

	met := metrics.New()
	met.ServeAsync(*metricsPort, log)
	mAsks := met.Counter("podsage_asks_total", "Questions answered")
	mAskErrors := met.Counter("podsage_ask_errors_total", "Questions that failed")

	mux := http.NewServeMux()
	mux.HandleFunc("/api/ask", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		k := req.K
		if k != 0 {
			k = min(max(k, minTopK), maxTopK)
		}

		res, err := svc.Ask(r.Context(), req.Question, k)
		if err != nil {
			mAskErrors.Inc()
			status, msg := askErrorStatus(err)
			log.Error("ask failed", "status", status, "error", err)
			writeError(w, status, msg)
			return
		}
		mAsks.Inc()
		hist.Add(res)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	})

	mux.HandleFunc("/api/export", func(w http.ResponseWriter, r *http.Request) {
		i, err := strconv.Atoi(r.URL.Query().Get("i"))
		if err != nil {
			i = 0
		}
		entry, ok := hist.At(i)
		if !ok {
			writeError(w, http.StatusNotFound, "no such history entry")
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(rag.ToMarkdown(entry.Result)))
	})

	mux.HandleFunc("/api/count", func(w http.ResponseWriter, r *http.Request) {
		count, err := store.Count(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "index unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]uint64{"count": count})
	})

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	handler := mid.Chain(mux,
		mid.Recover(log),
		mid.Logger(log),
		mid.Metrics(met),
		mid.CORS("*"),
		mid.OTel("askd"),
	)

	srv := &http.Server{Addr: ":" + *port, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("askd starting", "port", *port, "collection", *collection)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}

type askRequest struct {
	Question string `json:"question"`
	K        int    `json:"k"`
}

// askErrorStatus maps pipeline failures onto HTTP statuses.
func askErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		return http.StatusBadRequest, "question is required"
	case errors.Is(err, domain.ErrQueryTooLong):
		return http.StatusBadRequest, "question too long"
	case errors.Is(err, domain.ErrIndexUnavailable):
		return http.StatusServiceUnavailable, "index unavailable, run ingest first"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "upstream rate limited, retry shortly"
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, domain.ErrGenerationService):
		return http.StatusBadGateway, "answer generation failed"
	}
	return http.StatusInternalServerError, "internal error"
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
