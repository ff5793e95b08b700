package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkordes/erj-report/internal/domain"
)

// docs maps one collection of a Store onto a Go type via encoding/json.
// The typed repos below are thin wrappers that supply the key.
type docs[T any] struct {
	store      Store
	collection string
}

func (d docs[T]) get(ctx context.Context, key string) (T, error) {
	var v T
	rec, err := d.store.Get(ctx, d.collection, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(rec.Body, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", d.collection, key, err)
	}
	return v, nil
}

func (d docs[T]) put(ctx context.Context, key string, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", d.collection, key, err)
	}
	return d.store.Put(ctx, d.collection, key, body)
}

func (d docs[T]) insert(ctx context.Context, key string, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", d.collection, key, err)
	}
	return d.store.Insert(ctx, d.collection, key, body)
}

func (d docs[T]) decodeAll(recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := json.Unmarshal(rec.Body, &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", d.collection, rec.Key, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (d docs[T]) list(ctx context.Context) ([]T, error) {
	recs, err := d.store.List(ctx, d.collection)
	if err != nil {
		return nil, err
	}
	return d.decodeAll(recs)
}

func (d docs[T]) listPaged(ctx context.Context, p domain.PaginationParams) ([]T, int64, error) {
	recs, total, err := d.store.ListPaged(ctx, d.collection, p)
	if err != nil {
		return nil, 0, err
	}
	out, err := d.decodeAll(recs)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (d docs[T]) delete(ctx context.Context, key string) error {
	return d.store.Delete(ctx, d.collection, key)
}
