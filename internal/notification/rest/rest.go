package rest

import (
	"context"
	"net/url"

	"github.com/frahmantamala/campus-resources/internal/notification"
	"github.com/frahmantamala/campus-resources/internal/resource"
)

const (
	path     = "/api/notifications"
	pageSize = 100
)

type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

// Store reads and decides notifications through the REST backend.
type Store struct {
	api API
}

func NewStore(api API) *Store {
	return &Store{api: api}
}

// ListPending walks every page of pending notifications. A failed page fails
// the whole call so the feed never shows a partial list.
func (s *Store) ListPending(ctx context.Context) ([]notification.Notification, error) {
	params := resource.ListParams{
		Page:     1,
		PageSize: pageSize,
		Filters:  map[string]string{"status": string(notification.StatusPending)},
	}

	items := []notification.Notification{}
	for {
		var page resource.Page[notification.Notification]
		if err := s.api.Get(ctx, path, params.Query(), &page); err != nil {
			return nil, err
		}
		items = append(items, page.Data...)

		totalPages := page.TotalPages
		if totalPages == 0 {
			totalPages = resource.TotalPages(page.Total, pageSize)
		}
		if len(page.Data) == 0 || params.Page >= totalPages {
			return items, nil
		}
		params.Page++
	}
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status notification.Status) error {
	body := map[string]string{"status": string(status)}
	return s.api.Put(ctx, path+"/"+resource.FormatID(id)+"/status", body, nil)
}
