package rest

import (
	"context"
	"net/url"

	"github.com/frahmantamala/campus-resources/internal/resource"
)

// API is the subset of the REST transport used by resource backends.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, body, out any) error
}

type idsBody struct {
	IDs    []int64 `json:"ids"`
	Status string  `json:"status,omitempty"`
}

type bulkCreateBody struct {
	Items []resource.Payload `json:"items"`
}

type bulkCreateResponse struct {
	Created int `json:"created"`
}

// Backend talks to /api/<resource> on the REST backend.
type Backend[T any] struct {
	api  API
	path string
}

// New builds a backend for path, e.g. "/api/facilities".
func New[T any](api API, path string) *Backend[T] {
	return &Backend[T]{api: api, path: path}
}

func (b *Backend[T]) List(ctx context.Context, params resource.ListParams) (resource.Page[T], error) {
	var page resource.Page[T]
	if err := b.api.Get(ctx, b.path, params.Query(), &page); err != nil {
		return resource.Page[T]{}, err
	}
	return page, nil
}

func (b *Backend[T]) Create(ctx context.Context, payload resource.Payload) (T, error) {
	var record T
	err := b.api.Post(ctx, b.path, payload, &record)
	return record, err
}

func (b *Backend[T]) Update(ctx context.Context, id int64, payload resource.Payload) (T, error) {
	var record T
	err := b.api.Put(ctx, b.path+"/"+resource.FormatID(id), payload, &record)
	return record, err
}

func (b *Backend[T]) Delete(ctx context.Context, ids []int64) error {
	return b.api.Delete(ctx, b.path+"/bulk-delete", idsBody{IDs: ids}, nil)
}

func (b *Backend[T]) BulkUpdateStatus(ctx context.Context, ids []int64, status string) error {
	return b.api.Put(ctx, b.path+"/bulk-update-status", idsBody{IDs: ids, Status: status}, nil)
}

func (b *Backend[T]) BulkCreate(ctx context.Context, items []resource.Payload) (int, error) {
	var resp bulkCreateResponse
	if err := b.api.Post(ctx, b.path+"/bulk-create", bulkCreateBody{Items: items}, &resp); err != nil {
		return 0, err
	}
	if resp.Created == 0 {
		resp.Created = len(items)
	}
	return resp.Created, nil
}
