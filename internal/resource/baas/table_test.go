package baas_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/core/datamodel/inventory"
	"github.com/frahmantamala/campus-resources/internal/resource"
	"github.com/frahmantamala/campus-resources/internal/resource/baas"
	"github.com/frahmantamala/campus-resources/internal/session"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

func signedInStore(token string) *session.Store {
	store := session.NewStore(session.NewMemoryPersister(token), logger.Discard())
	Expect(store.Init()).To(Succeed())
	return store
}

func TestBaaS(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "BaaS Suite")
}

var _ = Describe("Table", func() {
	var (
		db     *gorm.DB
		tokens *session.Store
		table  *baas.Table[resource.Facility, inventory.Facility]
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&inventory.Facility{}, &inventory.Equipment{})).To(Succeed())

		tokens = signedInStore("opaque-session-token")
		table, err = baas.NewFacilityTable(db, tokens, logger.Discard())
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()

		for i, status := range []string{"Available", "Occupied", "Available", "Available", "Under Maintenance"} {
			Expect(db.Create(&inventory.Facility{
				Name:         "Room " + string(rune('A'+i)),
				FacilityType: "Classroom",
				Status:       status,
				Capacity:     30,
			}).Error).To(Succeed())
		}
	})

	Describe("List", func() {
		It("should page by id", func() {
			page, err := table.List(ctx, resource.ListParams{Page: 2, PageSize: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(5))
			Expect(page.TotalPages).To(Equal(3))
			Expect(page.Data).To(HaveLen(2))
			Expect(page.Data[0].Name).To(Equal("Room C"))
			Expect(page.Data[0].CreatedAt).NotTo(BeNil())
		})

		It("should apply equality filters", func() {
			page, err := table.List(ctx, resource.ListParams{Page: 1, PageSize: 10, Filters: map[string]string{"status": "Available"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(3))
		})

		It("should refuse filters on unknown columns", func() {
			_, err := table.List(ctx, resource.ListParams{Filters: map[string]string{"1=1; --": "x"}})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUnknownField))
		})
	})

	Describe("writes", func() {
		It("should create a row from a payload", func() {
			created, err := table.Create(ctx, resource.Payload{"name": "Gym", "facility_type": "Sports", "status": "Available", "capacity": 200})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(BeNumerically(">", 5))
			Expect(created.Capacity).To(Equal(200))
		})

		It("should update only the columns named in the payload", func() {
			updated, err := table.Update(ctx, 1, resource.Payload{"status": "Occupied", "id": 99, "nonsense": true})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ID).To(Equal(int64(1)))
			Expect(updated.Status).To(Equal("Occupied"))
			Expect(updated.Name).To(Equal("Room A"))
			Expect(updated.Capacity).To(Equal(30))
		})

		It("should report a missing row as not found", func() {
			_, err := table.Update(ctx, 404, resource.Payload{"status": "Occupied"})
			Expect(err).To(MatchError(ContainSubstring("facilities 404 not found")))
		})

		It("should reject payloads of the wrong shape", func() {
			_, err := table.Create(ctx, resource.Payload{"capacity": "lots"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should delete and bulk update by id", func() {
			Expect(table.Delete(ctx, []int64{1, 2})).To(Succeed())
			Expect(table.BulkUpdateStatus(ctx, []int64{3, 4}, "Under Maintenance")).To(Succeed())

			page, err := table.List(ctx, resource.ListParams{Page: 1, PageSize: 10, Filters: map[string]string{"status": "Under Maintenance"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(3))

			all, err := table.List(ctx, resource.ListParams{Page: 1, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(all.Total).To(Equal(3))
		})

		It("should bulk create rows", func() {
			n, err := table.BulkCreate(ctx, []resource.Payload{
				{"name": "Lab 1", "facility_type": "Laboratory", "status": "Available"},
				{"name": "Lab 2", "facility_type": "Laboratory", "status": "Available"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))

			page, err := table.List(ctx, resource.ListParams{Page: 1, PageSize: 10, Filters: map[string]string{"facility_type": "Laboratory"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(2))
		})
	})

	It("should map equipment rows to records", func() {
		equipment, err := baas.NewEquipmentTable(db, tokens, logger.Discard())
		Expect(err).NotTo(HaveOccurred())

		facilityID := int64(2)
		Expect(db.Create(&inventory.Equipment{Name: "Projector", Category: "AV", Status: "Working", FacilityID: &facilityID}).Error).To(Succeed())

		page, err := equipment.List(ctx, resource.ListParams{Page: 1, PageSize: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Data).To(HaveLen(1))
		Expect(*page.Data[0].FacilityID).To(Equal(int64(2)))
		Expect(page.Data[0].Status).To(Equal(resource.EquipmentStatusWorking))
	})

	Describe("without a session", func() {
		BeforeEach(func() {
			Expect(tokens.Purge()).To(Succeed())
		})

		It("should fail every call before touching the table", func() {
			_, err := table.List(ctx, resource.ListParams{Page: 1, PageSize: 10})
			Expect(err).To(MatchError(internal.ErrMissingToken))
			_, err = table.Create(ctx, resource.Payload{"name": "Gym", "facility_type": "Sports", "status": "Available"})
			Expect(err).To(MatchError(internal.ErrMissingToken))
			_, err = table.Update(ctx, 1, resource.Payload{"status": "Occupied"})
			Expect(err).To(MatchError(internal.ErrMissingToken))
			Expect(table.Delete(ctx, []int64{1})).To(MatchError(internal.ErrMissingToken))
			Expect(table.BulkUpdateStatus(ctx, []int64{1}, "Occupied")).To(MatchError(internal.ErrMissingToken))
			_, err = table.BulkCreate(ctx, []resource.Payload{{"name": "Lab", "facility_type": "Laboratory", "status": "Available"}})
			Expect(err).To(MatchError(internal.ErrMissingToken))

			var count int64
			Expect(db.Model(&inventory.Facility{}).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(5)))

			var row inventory.Facility
			Expect(db.First(&row, 1).Error).To(Succeed())
			Expect(row.Status).To(Equal("Available"))
		})

		It("should give the list view an empty page and keep rows on delete", func() {
			client := resource.NewClient[resource.Facility]("facilities", table, logger.Discard())

			page := client.List(ctx, resource.ListParams{Page: 1, PageSize: 10})
			Expect(page.Data).To(BeEmpty())
			Expect(page.Total).To(BeZero())
			Expect(client.Delete(ctx, []int64{1})).To(MatchError(internal.ErrMissingToken))

			var count int64
			Expect(db.Model(&inventory.Facility{}).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(5)))
		})
	})
})
