package api

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
)

// record decodes a single T that may arrive bare or wrapped in {"data": ...}.
type record[T any] struct {
	value T
}

func (r *record[T]) UnmarshalJSON(data []byte) error {
	return unwrapRecord(data, &r.value)
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

// Resource is a flat REST collection addressed as <path> and <path>/{id}.
// T is the record type and D the draft sent on create and update.
type Resource[T any, D any] struct {
	client *Client
	path   string
}

// Path returns the collection path, e.g. "/colors".
func (r *Resource[T, D]) Path() string { return r.path }

// List returns every record in the collection.
func (r *Resource[T, D]) List(ctx context.Context) ([]T, error) {
	var out listEnvelope[T]
	if err := r.client.do(ctx, http.MethodGet, r.path, nil, nil, &out); err != nil {
		return nil, errors.Wrapf(err, "list %s", r.path)
	}
	if out.Data == nil {
		return []T{}, nil
	}
	return out.Data, nil
}

// Get returns one record. The error matches ErrNotFound when id is unknown.
func (r *Resource[T, D]) Get(ctx context.Context, id int64) (T, error) {
	var out record[T]
	if err := r.client.do(ctx, http.MethodGet, idPath(r.path, id), nil, nil, &out); err != nil {
		var zero T
		return zero, errors.Wrapf(err, "get %s", idPath(r.path, id))
	}
	return out.value, nil
}

// Create submits draft and returns the created record.
func (r *Resource[T, D]) Create(ctx context.Context, draft D) (T, error) {
	var out record[T]
	if err := r.client.do(ctx, http.MethodPost, r.path, nil, draft, &out); err != nil {
		var zero T
		return zero, errors.Wrapf(err, "create %s", r.path)
	}
	return out.value, nil
}

// Update replaces record id with draft and returns the updated record.
func (r *Resource[T, D]) Update(ctx context.Context, id int64, draft D) (T, error) {
	var out record[T]
	if err := r.client.do(ctx, http.MethodPut, idPath(r.path, id), nil, draft, &out); err != nil {
		var zero T
		return zero, errors.Wrapf(err, "update %s", idPath(r.path, id))
	}
	return out.value, nil
}

// Delete removes record id.
func (r *Resource[T, D]) Delete(ctx context.Context, id int64) error {
	if err := r.client.do(ctx, http.MethodDelete, idPath(r.path, id), nil, nil, nil); err != nil {
		return errors.Wrapf(err, "delete %s", idPath(r.path, id))
	}
	return nil
}
