// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

// Package qdrant provides a Qdrant-backed memory.VectorStore over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/aidekit/aide/pkg/memory"
)

// metadata payload keys are prefixed to keep them apart from the
// reserved text/created_at keys.
const metaPrefix = "meta."

// Store implements memory.VectorStore against a Qdrant collection.
type Store struct {
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New connects to Qdrant at addr and binds the store to a collection.
func New(addr, collection string) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect failed: %w", err)
	}
	return &Store{
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// EnsureCollection creates the collection with cosine distance if it does
// not already exist.
func (s *Store) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	exists, err := s.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{
		CollectionName: s.collection,
	})
	if err == nil && exists.GetResult().GetExists() {
		return nil
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Upsert stores a record as a Qdrant point with its text, creation time,
// and metadata in the payload.
func (s *Store) Upsert(ctx context.Context, rec memory.Record) error {
	payload := map[string]*pb.Value{
		"text":       {Kind: &pb.Value_StringValue{StringValue: rec.Text}},
		"created_at": {Kind: &pb.Value_IntegerValue{IntegerValue: rec.CreatedAt.UnixNano()}},
	}
	for k, v := range rec.Metadata {
		if pv := toValue(v); pv != nil {
			payload[metaPrefix+k] = pv
		}
	}

	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points: []*pb.PointStruct{{
			Id: &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: rec.ID}},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: rec.Vector}},
			},
			Payload: payload,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

// Query searches the collection, applying the metadata filter as must
// conditions. Qdrant orders by score; equal scores keep index order, so
// the recency tie-break is only approximate for this backend.
func (s *Store) Query(ctx context.Context, vector []float32, k int, filter map[string]any) ([]memory.Hit, error) {
	if k <= 0 {
		return nil, nil
	}

	req := &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	}
	if len(filter) > 0 {
		conditions := make([]*pb.Condition, 0, len(filter))
		for key, value := range filter {
			cond := matchCondition(metaPrefix+key, value)
			if cond == nil {
				continue
			}
			conditions = append(conditions, cond)
		}
		req.Filter = &pb.Filter{Must: conditions}
	}

	resp, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	hits := make([]memory.Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, memory.Hit{
			Record: recordFromPayload(pointID(r.Id), r.Payload),
			Score:  r.Score,
		})
	}
	return hits, nil
}

// Delete removes a point by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}
	return nil
}

func toValue(v any) *pb.Value {
	switch val := v.(type) {
	case string:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: val}}
	case bool:
		return &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: val}}
	case int64:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: val}}
	case float64:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: val}}
	}
	return nil
}

func fromValue(v *pb.Value) any {
	switch kind := v.GetKind().(type) {
	case *pb.Value_StringValue:
		return kind.StringValue
	case *pb.Value_BoolValue:
		return kind.BoolValue
	case *pb.Value_IntegerValue:
		return kind.IntegerValue
	case *pb.Value_DoubleValue:
		return kind.DoubleValue
	}
	return nil
}

func matchCondition(key string, value any) *pb.Condition {
	var match *pb.Match
	switch val := value.(type) {
	case string:
		match = &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: val}}
	case bool:
		match = &pb.Match{MatchValue: &pb.Match_Boolean{Boolean: val}}
	case int64:
		match = &pb.Match{MatchValue: &pb.Match_Integer{Integer: val}}
	default:
		return nil
	}
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{Key: key, Match: match},
		},
	}
}

func recordFromPayload(id string, payload map[string]*pb.Value) memory.Record {
	rec := memory.Record{ID: id, Metadata: make(map[string]any)}
	for k, v := range payload {
		switch {
		case k == "text":
			rec.Text, _ = fromValue(v).(string)
		case k == "created_at":
			if nanos, ok := fromValue(v).(int64); ok {
				rec.CreatedAt = time.Unix(0, nanos).UTC()
			}
		case len(k) > len(metaPrefix) && k[:len(metaPrefix)] == metaPrefix:
			rec.Metadata[k[len(metaPrefix):]] = fromValue(v)
		}
	}
	return rec
}

func pointID(id *pb.PointId) string {
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return fmt.Sprintf("%d", id.GetNum())
}
