package resource

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/campus-resources/internal"
)

// Backend is one integration path (REST or BaaS) for a single resource.
// It reports every failure; the boundary policy lives in Client.
type Backend[T any] interface {
	List(ctx context.Context, params ListParams) (Page[T], error)
	Create(ctx context.Context, payload Payload) (T, error)
	Update(ctx context.Context, id int64, payload Payload) (T, error)
	Delete(ctx context.Context, ids []int64) error
	BulkUpdateStatus(ctx context.Context, ids []int64, status string) error
	BulkCreate(ctx context.Context, items []Payload) (int, error)
}

// AlertFunc surfaces a failure to the user (toast, dialog, stderr line).
type AlertFunc func(ctx context.Context, resource, operation string, err error)

type ClientOption func(*clientOptions)

type clientOptions struct {
	alert    AlertFunc
	pageSize int
}

func WithAlert(fn AlertFunc) ClientOption {
	return func(o *clientOptions) { o.alert = fn }
}

// WithDefaultPageSize is used when a caller passes no page size.
func WithDefaultPageSize(n int) ClientOption {
	return func(o *clientOptions) { o.pageSize = n }
}

// Client applies the boundary policy over a Backend: list calls never fail
// and degrade to an empty page; mutations log, alert and return the error.
type Client[T any] struct {
	name    string
	backend Backend[T]
	opts    clientOptions
	logger  *slog.Logger
}

func NewClient[T any](name string, backend Backend[T], logger *slog.Logger, opts ...ClientOption) *Client[T] {
	o := clientOptions{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client[T]{
		name:    name,
		backend: backend,
		opts:    o,
		logger:  logger.With("resource", name),
	}
}

func (c *Client[T]) Name() string {
	return c.name
}

func (c *Client[T]) List(ctx context.Context, params ListParams) Page[T] {
	params = c.params(params)
	page, err := c.fetch(ctx, params)
	if err != nil {
		c.fail(ctx, "list", err, "page", params.Page, "page_size", params.PageSize)
		return EmptyPage[T](params.Page)
	}
	return page
}

// Fetch is List without the empty-page fallback, for callers that must not
// mistake a failed call for an empty dataset.
func (c *Client[T]) Fetch(ctx context.Context, params ListParams) (Page[T], error) {
	params = c.params(params)
	page, err := c.fetch(ctx, params)
	if err != nil {
		c.logger.Error("resource call failed", "operation", "list", "error", err, "page", params.Page, "page_size", params.PageSize)
		return Page[T]{}, err
	}
	return page, nil
}

// FetchAll walks every page and fails as a whole if any page fails.
func (c *Client[T]) FetchAll(ctx context.Context, params ListParams) ([]T, error) {
	params = c.params(params)
	params.Page = 1

	rows := []T{}
	for {
		page, err := c.Fetch(ctx, params)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page.Data...)
		if len(page.Data) == 0 || params.Page >= page.TotalPages {
			return rows, nil
		}
		params.Page++
	}
}

func (c *Client[T]) params(params ListParams) ListParams {
	if params.PageSize < 1 {
		params.PageSize = c.opts.pageSize
	}
	return params.Normalize()
}

func (c *Client[T]) fetch(ctx context.Context, params ListParams) (Page[T], error) {
	page, err := c.backend.List(ctx, params)
	if err != nil {
		return Page[T]{}, err
	}

	if page.Data == nil {
		page.Data = []T{}
	}
	if page.Page == 0 {
		page.Page = params.Page
	}
	if page.TotalPages == 0 && page.Total > 0 {
		page.TotalPages = TotalPages(page.Total, params.PageSize)
	}
	return page, nil
}

func (c *Client[T]) Create(ctx context.Context, payload Payload) (T, error) {
	record, err := c.backend.Create(ctx, payload)
	if err != nil {
		c.fail(ctx, "create", err)
		var zero T
		return zero, err
	}
	c.logger.Info("record created")
	return record, nil
}

func (c *Client[T]) Update(ctx context.Context, id int64, payload Payload) (T, error) {
	record, err := c.backend.Update(ctx, id, payload)
	if err != nil {
		c.fail(ctx, "update", err, "id", id)
		var zero T
		return zero, err
	}
	c.logger.Info("record updated", "id", id)
	return record, nil
}

// Delete removes all ids in one call.
func (c *Client[T]) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return internal.ErrEmptySelection
	}
	if err := c.backend.Delete(ctx, ids); err != nil {
		c.fail(ctx, "delete", err, "count", len(ids))
		return err
	}
	c.logger.Info("records deleted", "count", len(ids))
	return nil
}

func (c *Client[T]) BulkUpdateStatus(ctx context.Context, ids []int64, status string) error {
	if len(ids) == 0 {
		return internal.ErrEmptySelection
	}
	if status == "" {
		return internal.NewValidationFieldError("status", "status is required", internal.ErrCodeRequiredField)
	}
	if err := c.backend.BulkUpdateStatus(ctx, ids, status); err != nil {
		c.fail(ctx, "bulk-update-status", err, "count", len(ids), "status", status)
		return err
	}
	c.logger.Info("record status updated", "count", len(ids), "status", status)
	return nil
}

// BulkCreate inserts previewed rows in one call and returns how many were created.
func (c *Client[T]) BulkCreate(ctx context.Context, items []Payload) (int, error) {
	if len(items) == 0 {
		return 0, internal.ErrEmptySelection
	}
	created, err := c.backend.BulkCreate(ctx, items)
	if err != nil {
		c.fail(ctx, "bulk-create", err, "count", len(items))
		return 0, err
	}
	c.logger.Info("records imported", "count", created)
	return created, nil
}

func (c *Client[T]) fail(ctx context.Context, op string, err error, attrs ...any) {
	args := append([]any{"operation", op, "error", err}, attrs...)
	c.logger.Error("resource call failed", args...)
	if c.opts.alert != nil {
		c.opts.alert(ctx, c.name, op, err)
	}
}
