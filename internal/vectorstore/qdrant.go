package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"ragserver/internal/storage"
)

// QdrantStore mirrors fragment embeddings into a Qdrant collection and
// answers similarity queries against it. Each point's ID is the fragment's
// numeric ID; the payload carries what Search needs to respond without a
// round trip to Postgres.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	vectorSize int
}

func NewQdrantStore(host string, port int, collection string, vectorSize int) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return &QdrantStore{
		client:     client,
		collection: collection,
		vectorSize: vectorSize,
	}, nil
}

func (s *QdrantStore) EnsureReady(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection %q: %w", s.collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %q: %w", s.collection, err)
	}
	return nil
}

func (s *QdrantStore) IndexFragments(ctx context.Context, doc *storage.Document, fragments []*storage.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(fragments))
	for _, f := range fragments {
		if f.Embedding == nil {
			return fmt.Errorf("fragment %d has no embedding", f.ID)
		}
		payload := map[string]any{
			"document_id": doc.ID.String(),
			"title":       doc.Title,
			"version":     doc.Version,
			"valid":       doc.Valid,
			"chunk_index": f.ChunkIndex,
			"content":     f.Content,
		}
		if doc.Metadata != nil {
			payload["metadata"] = doc.Metadata
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(f.ID)),
			Vectors: qdrant.NewVectors(f.Embedding.Slice()...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

func (s *QdrantStore) RemoveDocument(ctx context.Context, documentID uuid.UUID) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentID.String()),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("delete points for document %s: %w", documentID, err)
	}
	return nil
}

func (s *QdrantStore) SetDocumentValidity(ctx context.Context, documentID uuid.UUID, valid bool) error {
	_, err := s.client.SetPayload(ctx, &qdrant.SetPayloadPoints{
		CollectionName: s.collection,
		Payload:        qdrant.NewValueMap(map[string]any{"valid": valid}),
		PointsSelector: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentID.String()),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("set validity for document %s: %w", documentID, err)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error) {
	must := []*qdrant.Condition{
		qdrant.NewMatchBool("valid", true),
	}
	if opts.DocumentID != nil {
		must = append(must, qdrant.NewMatch("document_id", opts.DocumentID.String()))
	}

	limit := uint64(opts.Limit)
	req := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         &qdrant.Filter{Must: must},
	}
	if opts.Threshold > 0 {
		threshold := float32(opts.Threshold)
		req.ScoreThreshold = &threshold
	}

	points, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("query collection %q: %w", s.collection, err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		r, err := resultFromPoint(point)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// resultFromPoint rebuilds a SearchResult from a scored point's payload.
func resultFromPoint(point *qdrant.ScoredPoint) (SearchResult, error) {
	payload := point.GetPayload()

	docID, err := uuid.Parse(payload["document_id"].GetStringValue())
	if err != nil {
		return SearchResult{}, fmt.Errorf("point %d: bad document_id payload: %w", point.GetId().GetNum(), err)
	}

	r := SearchResult{
		FragmentID: int64(point.GetId().GetNum()),
		DocumentID: docID,
		Title:      payload["title"].GetStringValue(),
		Version:    int(payload["version"].GetIntegerValue()),
		ChunkIndex: int(payload["chunk_index"].GetIntegerValue()),
		Content:    payload["content"].GetStringValue(),
		Similarity: roundSimilarity(float64(point.GetScore())),
	}
	if meta := payload["metadata"].GetStructValue(); meta != nil {
		r.Metadata = structToMap(meta)
	}
	return r, nil
}

func structToMap(s *qdrant.Struct) map[string]any {
	out := make(map[string]any, len(s.GetFields()))
	for key, value := range s.GetFields() {
		out[key] = valueToAny(value)
	}
	return out
}

func valueToAny(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_StructValue:
		return structToMap(kind.StructValue)
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		out := make([]any, 0, len(values))
		for _, item := range values {
			out = append(out, valueToAny(item))
		}
		return out
	default:
		return nil
	}
}
