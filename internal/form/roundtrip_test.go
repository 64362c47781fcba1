package form_test

import (
	"context"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/campus-resources/internal/apiclient"
	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/internal/core/events"
	"github.com/frahmantamala/campus-resources/internal/form"
	"github.com/frahmantamala/campus-resources/internal/resource"
	resourcerest "github.com/frahmantamala/campus-resources/internal/resource/rest"
	"github.com/frahmantamala/campus-resources/internal/session"
	"github.com/frahmantamala/campus-resources/internal/transport/rest"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

var _ = Describe("Modal against the backend", func() {
	var (
		client *resource.Client[resource.Facility]
		modal  *form.Modal[resource.Facility]
		ctx    context.Context
	)

	refetch := func(id int64) resource.Facility {
		page := client.List(ctx, resource.ListParams{Page: 1, PageSize: 100})
		for _, row := range page.Data {
			if row.ID == id {
				return row
			}
		}
		Fail("facility not returned by list")
		return resource.Facility{}
	}

	BeforeEach(func() {
		ctx = context.Background()

		stub := rest.NewStubServer(rest.StubOptions{Secret: "test-secret", TokenTTL: time.Hour, Logger: logger.Discard()})
		Expect(stub.Store.AddUser("admin@campus.edu", "admin123", "admin", bcrypt.MinCost)).To(Succeed())
		server := httptest.NewServer(stub)
		DeferCleanup(server.Close)

		sessions := session.NewStore(session.NewMemoryPersister(""), logger.Discard())
		Expect(sessions.Init()).To(Succeed())
		api := apiclient.New(server.URL, sessions, logger.Discard())
		_, err := auth.NewService(api, sessions, logger.Discard()).Login(ctx, auth.LoginDTO{Email: "admin@campus.edu", Password: "admin123"})
		Expect(err).NotTo(HaveOccurred())

		client = resource.NewClient[resource.Facility]("facilities", resourcerest.New[resource.Facility](api, "/api/facilities"), logger.Discard())
		modal = form.NewModal[resource.Facility]("facilities", client, events.NewEventBus(logger.Discard()), logger.Discard())
	})

	It("should read back what was created and then edited", func() {
		modal.Open(resource.Facility{})
		Expect(modal.Set("name", "  Main Hall ")).To(Succeed())
		Expect(modal.Set("facility_type", "Auditorium")).To(Succeed())
		Expect(modal.Set("building", "Admin Block")).To(Succeed())
		Expect(modal.Set("capacity", "150")).To(Succeed())
		Expect(modal.Set("status", resource.FacilityStatusAvailable)).To(Succeed())
		submitted := modal.Draft()
		Expect(modal.Submit(ctx)).To(Succeed())

		page := client.List(ctx, resource.ListParams{Page: 1, PageSize: 10, Filters: map[string]string{"facility_type": "Auditorium"}})
		Expect(page.Data).To(HaveLen(1))
		created := page.Data[0]
		Expect(created.ID).To(BeNumerically(">", 0))
		Expect(created.Name).To(Equal(submitted.Name))
		Expect(created.FacilityType).To(Equal(submitted.FacilityType))
		Expect(created.Building).To(Equal(submitted.Building))
		Expect(created.Capacity).To(Equal(150))
		Expect(created.Status).To(Equal(submitted.Status))
		Expect(created.CreatedAt).NotTo(BeNil())

		modal.Open(created)
		Expect(modal.Set("capacity", 175)).To(Succeed())
		Expect(modal.Set("status", resource.FacilityStatusMaintenance)).To(Succeed())
		Expect(modal.Set("remarks", "stage lights out")).To(Succeed())
		Expect(modal.Submit(ctx)).To(Succeed())

		edited := refetch(created.ID)
		Expect(edited.Name).To(Equal("  Main Hall "))
		Expect(edited.Capacity).To(Equal(175))
		Expect(edited.Status).To(Equal(resource.FacilityStatusMaintenance))
		Expect(edited.Remarks).To(Equal("stage lights out"))
		Expect(edited.CreatedAt.Equal(*created.CreatedAt)).To(BeTrue())
	})
})
