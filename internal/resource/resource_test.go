package resource_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/resource"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

func TestResource(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Resource Suite")
}

// fakeBackend records calls and fails when err is set.
type fakeBackend struct {
	page       resource.Page[resource.Facility]
	err        error
	pages      map[int]resource.Page[resource.Facility]
	failPage   int
	lastParams resource.ListParams
	listCalls  int
	deleted    [][]int64
	statuses   map[string][]int64
}

func (f *fakeBackend) List(_ context.Context, params resource.ListParams) (resource.Page[resource.Facility], error) {
	f.lastParams = params
	f.listCalls++
	if f.failPage != 0 && params.Page == f.failPage {
		return resource.Page[resource.Facility]{}, f.err
	}
	if f.pages != nil {
		return f.pages[params.Page], nil
	}
	return f.page, f.err
}

func (f *fakeBackend) Create(_ context.Context, payload resource.Payload) (resource.Facility, error) {
	if f.err != nil {
		return resource.Facility{}, f.err
	}
	return resource.Facility{ID: 1, Name: payload["name"].(string)}, nil
}

func (f *fakeBackend) Update(_ context.Context, id int64, _ resource.Payload) (resource.Facility, error) {
	return resource.Facility{ID: id}, f.err
}

func (f *fakeBackend) Delete(_ context.Context, ids []int64) error {
	f.deleted = append(f.deleted, ids)
	return f.err
}

func (f *fakeBackend) BulkUpdateStatus(_ context.Context, ids []int64, status string) error {
	if f.statuses == nil {
		f.statuses = map[string][]int64{}
	}
	f.statuses[status] = ids
	return f.err
}

func (f *fakeBackend) BulkCreate(_ context.Context, items []resource.Payload) (int, error) {
	return len(items), f.err
}

var _ = Describe("ListParams", func() {
	It("should normalize page and size", func() {
		p := resource.ListParams{}.Normalize()
		Expect(p.Page).To(Equal(1))
		Expect(p.PageSize).To(Equal(resource.DefaultPageSize))
	})

	It("should compute the offset", func() {
		Expect(resource.ListParams{Page: 3, PageSize: 10}.Offset()).To(Equal(20))
	})

	It("should encode filters and skip empty ones", func() {
		q := resource.ListParams{Page: 2, PageSize: 5, Filters: map[string]string{"status": "Available", "building": ""}}.Query()
		Expect(q.Encode()).To(Equal("page=2&page_size=5&status=Available"))
	})
})

var _ = Describe("Client", func() {
	var (
		backend *fakeBackend
		client  *resource.Client[resource.Facility]
		alerts  []string
	)

	BeforeEach(func() {
		alerts = nil
		backend = &fakeBackend{}
		client = resource.NewClient[resource.Facility]("facilities", backend, logger.Discard(),
			resource.WithDefaultPageSize(25),
			resource.WithAlert(func(_ context.Context, name, op string, err error) {
				alerts = append(alerts, name+" "+op)
			}))
	})

	Describe("List", func() {
		It("should apply the default page size", func() {
			client.List(context.Background(), resource.ListParams{Page: 2})
			Expect(backend.lastParams.PageSize).To(Equal(25))
		})

		It("should fill in total pages the backend left out", func() {
			backend.page = resource.Page[resource.Facility]{Data: []resource.Facility{{ID: 1}}, Total: 51}
			page := client.List(context.Background(), resource.ListParams{Page: 1})
			Expect(page.TotalPages).To(Equal(3))
			Expect(page.Page).To(Equal(1))
		})

		It("should degrade to an empty page and alert on failure", func() {
			backend.err = internal.NewHTTPError(500, "Internal Server Error")
			page := client.List(context.Background(), resource.ListParams{Page: 4})
			Expect(page.Data).To(BeEmpty())
			Expect(page.Data).NotTo(BeNil())
			Expect(page.Total).To(BeZero())
			Expect(page.Page).To(Equal(4))
			Expect(alerts).To(Equal([]string{"facilities list"}))
		})
	})

	Describe("Fetch", func() {
		It("should return the failure instead of an empty page", func() {
			backend.err = internal.NewHTTPError(503, "Service Unavailable")
			_, err := client.Fetch(context.Background(), resource.ListParams{Page: 1})
			Expect(err).To(MatchError("Service Unavailable"))
			Expect(backend.lastParams.PageSize).To(Equal(25))
			Expect(alerts).To(BeEmpty())
		})

		It("should collect every page", func() {
			backend.pages = map[int]resource.Page[resource.Facility]{
				1: {Data: []resource.Facility{{ID: 1}, {ID: 2}}, Total: 3, TotalPages: 2},
				2: {Data: []resource.Facility{{ID: 3}}, Total: 3, TotalPages: 2},
			}
			rows, err := client.FetchAll(context.Background(), resource.ListParams{Page: 7, PageSize: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			Expect(rows[2].ID).To(Equal(int64(3)))
			Expect(backend.listCalls).To(Equal(2))
		})

		It("should fail as a whole when a later page fails", func() {
			backend.pages = map[int]resource.Page[resource.Facility]{
				1: {Data: []resource.Facility{{ID: 1}, {ID: 2}}, Total: 4, TotalPages: 2},
			}
			backend.failPage = 2
			backend.err = internal.NewHTTPError(500, "Internal Server Error")

			rows, err := client.FetchAll(context.Background(), resource.ListParams{PageSize: 2})
			Expect(err).To(HaveOccurred())
			Expect(rows).To(BeNil())
		})
	})

	Describe("mutations", func() {
		It("should refuse an empty selection without calling the backend", func() {
			Expect(client.Delete(context.Background(), nil)).To(MatchError(internal.ErrEmptySelection))
			Expect(backend.deleted).To(BeEmpty())
		})

		It("should require a status for bulk updates", func() {
			err := client.BulkUpdateStatus(context.Background(), []int64{1}, "")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeRequiredField))
		})

		It("should pass every id in one call", func() {
			Expect(client.BulkUpdateStatus(context.Background(), []int64{4, 5, 6}, "Occupied")).To(Succeed())
			Expect(backend.statuses).To(HaveKeyWithValue("Occupied", []int64{4, 5, 6}))
		})

		It("should return and alert on mutation failures", func() {
			backend.err = errors.New("conflict")
			_, err := client.Create(context.Background(), resource.Payload{"name": "Gym"})
			Expect(err).To(MatchError("conflict"))
			Expect(alerts).To(Equal([]string{"facilities create"}))
		})
	})
})
