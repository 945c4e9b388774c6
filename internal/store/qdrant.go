// Package store persists design-rationale records in Qdrant for semantic
// search.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// RationaleCollection is the collection holding per-function design
// rationale records.
const RationaleCollection = "architecture_decisions"

// Record is one stored rationale: why a function exists and the design
// choices visible in it.
type Record struct {
	ChunkID   string
	Name      string
	File      string
	Rationale string
	CreatedAt string
	Score     float32
}

// QdrantStore handles rationale storage in Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore connects to a Qdrant instance.
func NewQdrantStore(host string) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	return &QdrantStore{client: client}, nil
}

// Close closes the Qdrant connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// EnsureCollection creates the collection if it doesn't exist.
func (s *QdrantStore) EnsureCollection(ctx context.Context, name string, vectorSize int) error {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

// Upsert writes records with their vectors. Point IDs derive from the
// chunk ID, so re-extracting a function overwrites its old record.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, records []Record, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("got %d records but %d vectors", len(records), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		payload := map[string]interface{}{
			"chunk_id":   rec.ChunkID,
			"name":       rec.Name,
			"file":       rec.File,
			"rationale":  rec.Rationale,
			"created_at": rec.CreatedAt,
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(pointID(rec.ChunkID)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
	})

	return err
}

// Search performs vector similarity search over stored rationales.
func (s *QdrantStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]Record, error) {
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(results))
	for i, r := range results {
		records[i] = payloadToRecord(r.Payload)
		records[i].Score = r.Score
	}

	return records, nil
}

// pointID maps a chunk ID onto a stable numeric Qdrant point ID.
func pointID(chunkID string) uint64 {
	sum := sha256.Sum256([]byte(chunkID))
	return binary.BigEndian.Uint64(sum[:8])
}

func payloadToRecord(payload map[string]*qdrant.Value) Record {
	getString := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}

	return Record{
		ChunkID:   getString("chunk_id"),
		Name:      getString("name"),
		File:      getString("file"),
		Rationale: getString("rationale"),
		CreatedAt: getString("created_at"),
	}
}
