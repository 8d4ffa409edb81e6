// Package semantic owns all Qdrant operations: the durable collection that
// maps chunk id to text, metadata, and embedding, plus nearest-neighbor
// search over it. Embedding dimensionality and index structure stay opaque
// to the rest of the engine.
package semantic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/podsage/podsage/engine/domain"
)

// Embedder turns text into vectors. The store owns embedding, so callers
// deal only in text; the production implementation is pkg/openai.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the sole owner of all Qdrant operations for one collection.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	embedder    Embedder
}

// New creates a Store connected to Qdrant at the given gRPC address.
func New(addr, collection string, embedder Embedder) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		embedder:    embedder,
	}, nil
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist.
func (s *Store) EnsureCollection(ctx context.Context, dims int) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", s.collection, err)
	}
	return nil
}

// Upsert embeds and stores chunk records. Idempotent by chunk id: the point
// id is a UUID derived deterministically from it, so re-ingestion with the
// same ordinal scheme overwrites instead of duplicating. Rate-limit errors
// from the embedder pass through unwrapped for the caller's backoff.
func (s *Store) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("semantic: embed %d chunks: %w", len(records), err)
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(r.ID)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vectors[i]},
				},
			},
			Payload: payloadFromRecord(r),
		}
	}

	wait := true
	_, err = s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(points), err)
	}
	return nil
}

// Query embeds the question and returns up to k hits in the store's native
// similarity order. Fewer than k hits is fine; an absent or unreachable
// collection maps to domain.ErrIndexUnavailable.
func (s *Store) Query(ctx context.Context, text string, k int) ([]SearchResult, error) {
	vectors, err := s.embedder.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("semantic: embed query: %w", err)
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vectors[0],
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, mapQdrantErr("search", err)
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, hit := range resp.GetResult() {
		results[i] = resultFromPayload(hit.GetPayload(), hit.GetScore())
	}
	return results, nil
}

// Count returns the number of indexed chunks. Diagnostics only.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, mapQdrantErr("count", err)
	}
	return resp.GetResult().GetCount(), nil
}

// PointID derives the stable Qdrant point UUID for a chunk id.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}

// mapQdrantErr translates query-time transport failures into the
// ErrIndexUnavailable taxonomy so the orchestrator can attach guidance.
func mapQdrantErr(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound, codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("semantic: %s: %v: %w", op, err, domain.ErrIndexUnavailable)
	}
	return fmt.Errorf("semantic: %s: %w", op, err)
}

func payloadFromRecord(r Record) map[string]*pb.Value {
	return map[string]*pb.Value{
		"chunk_id":       stringValue(r.ID),
		"content":        stringValue(r.Text),
		"chunk_index":    {Kind: &pb.Value_IntegerValue{IntegerValue: int64(r.Index)}},
		"guest":          stringValue(r.Meta.Guest),
		"title":          stringValue(r.Meta.Title),
		"youtube_url":    stringValue(r.Meta.YouTubeURL),
		"publish_date":   stringValue(r.Meta.PublishDate),
		"episode_folder": stringValue(r.Meta.Folder),
		"speakers":       stringValue(r.Speakers),
	}
}

func resultFromPayload(payload map[string]*pb.Value, score float32) SearchResult {
	res := SearchResult{Score: score}
	res.ChunkID = payload["chunk_id"].GetStringValue()
	res.Text = payload["content"].GetStringValue()
	res.Index = int(payload["chunk_index"].GetIntegerValue())
	res.Speakers = payload["speakers"].GetStringValue()
	res.Meta = domain.DocumentMeta{
		Guest:       payload["guest"].GetStringValue(),
		Title:       payload["title"].GetStringValue(),
		YouTubeURL:  payload["youtube_url"].GetStringValue(),
		PublishDate: payload["publish_date"].GetStringValue(),
		Folder:      payload["episode_folder"].GetStringValue(),
	}
	return res
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}
