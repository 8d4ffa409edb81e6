// Package rag orchestrates one question through retrieval and synthesis:
// embed the question, pull the nearest transcript chunks, and have the chat
// model answer from those chunks alone.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/podsage/podsage/engine/domain"
	"github.com/podsage/podsage/engine/semantic"
	"github.com/podsage/podsage/pkg/fn"
	"github.com/podsage/podsage/pkg/resilience"
)

// Searcher retrieves the k most similar chunks for a question.
type Searcher interface {
	Query(ctx context.Context, text string, k int) ([]semantic.SearchResult, error)
}

// Generator produces the synthesized answer from a fully rendered prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options tunes retrieval width and citation output.
type Options struct {
	// TopK is how many chunks to retrieve when the caller doesn't say.
	TopK int
	// CitationCap bounds how many retrieved chunks become citations.
	CitationCap int
}

// Service answers questions over the indexed corpus.
type Service struct {
	search  Searcher
	gen     Generator
	breaker *resilience.Breaker
	log     *slog.Logger
	opts    Options
}

// New creates a Service. Generation calls run through a circuit breaker so a
// failing model upstream degrades to fast errors instead of stacked timeouts.
func New(search Searcher, gen Generator, log *slog.Logger, opts Options) *Service {
	if log == nil {
		log = slog.Default()
	}
	if opts.TopK <= 0 {
		opts.TopK = domain.DefaultTopK
	}
	if opts.CitationCap <= 0 {
		opts.CitationCap = domain.DefaultCitationCap
	}
	return &Service{
		search:  search,
		gen:     gen,
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		log:     log,
		opts:    opts,
	}
}

// insufficientAnswer is returned without a generation call when retrieval
// comes back empty, so an unindexed corpus costs nothing.
const insufficientAnswer = "The indexed transcripts don't contain enough information to answer that question."

// Ask runs the full pipeline for one question. k <= 0 means Options.TopK.
// NSources counts every retrieved chunk fed to the model; Citations is
// capped separately and the two diverge when k exceeds the cap.
func (s *Service) Ask(ctx context.Context, query string, k int) (domain.QueryResult, error) {
	if err := domain.ValidateQuery(query); err != nil {
		return domain.QueryResult{}, err
	}
	if k <= 0 {
		k = s.opts.TopK
	}

	results, err := s.search.Query(ctx, query, k)
	if err != nil {
		if errors.Is(err, domain.ErrIndexUnavailable) {
			return domain.QueryResult{}, fmt.Errorf("rag: index unavailable, run ingest first: %w", err)
		}
		return domain.QueryResult{}, fmt.Errorf("rag: search: %w", err)
	}
	s.log.Info("rag: retrieved", "query_len", len(query), "k", k, "hits", len(results))

	if len(results) == 0 {
		// Citations stays an empty slice so the JSON shape matches the
		// populated path (an array, not null).
		return domain.QueryResult{
			Query:     query,
			Answer:    insufficientAnswer,
			Citations: []domain.Citation{},
		}, nil
	}

	prompt := buildPrompt(query, formatContext(results))
	answer, err := resilience.CallResult(s.breaker, ctx, func(ctx context.Context) fn.Result[string] {
		return fn.FromPair(s.gen.Complete(ctx, prompt))
	}).Unwrap()
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("rag: synthesize: %w", err)
	}

	n := min(s.opts.CitationCap, len(results))
	citations := make([]domain.Citation, n)
	for i := 0; i < n; i++ {
		citations[i] = domain.NewCitation(results[i].Meta, results[i].Text)
	}

	return domain.QueryResult{
		Query:     query,
		Answer:    answer,
		Citations: citations,
		NSources:  len(results),
	}, nil
}

// formatContext renders retrieved chunks as numbered sources for the prompt.
func formatContext(results []semantic.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf(
			"[Source %d]\nGuest: %s\nEpisode: %s\nContent:\n%s\n",
			i+1, r.Meta.Guest, r.Meta.Title, r.Text,
		)
	}
	return strings.Join(parts, "\n---\n\n")
}

func buildPrompt(query, context string) string {
	return fmt.Sprintf(`You are an expert at analyzing podcast transcripts from interviews with world-class product leaders and growth experts.

A user has asked a question. Your job is to answer it using ONLY information from the provided transcript excerpts. Be specific and cite your sources.

USER QUESTION:
%s

TRANSCRIPT EXCERPTS:
%s

INSTRUCTIONS:
1. Answer the question comprehensively using the transcript excerpts
2. If multiple guests discuss the topic, synthesize their perspectives
3. Always include direct quotes when possible (use quotation marks)
4. Reference sources by guest name and episode title
5. If the excerpts don't contain enough information, say so
6. Format your answer in markdown

ANSWER:`, query, context)
}
