package semantic

import "github.com/podsage/podsage/engine/domain"

// Record is a single chunk to persist: text plus metadata. The embedding is
// computed inside the store at upsert time; callers never see vectors.
type Record struct {
	// ID is the chunk identifier {guest}_{doc-ordinal}_{chunk-ordinal}. It
	// is the logical primary key: re-upserting the same ID overwrites.
	ID       string
	Text     string
	Index    int
	Meta     domain.DocumentMeta
	Speakers string
}

// SearchResult is a single similarity hit, most similar first. Score is the
// store's native cosine similarity; the orchestrator never re-ranks.
type SearchResult struct {
	ChunkID  string
	Text     string
	Index    int
	Meta     domain.DocumentMeta
	Speakers string
	Score    float32
}
