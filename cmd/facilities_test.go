package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/apiclient"
	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/internal/backendstub"
	"github.com/frahmantamala/campus-resources/internal/resource"
	"github.com/frahmantamala/campus-resources/internal/transport/rest"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

var _ = Describe("commands against the stub backend", func() {
	var (
		stub *rest.StubServer
		app  *App
		dir  string
		ctx  context.Context
		day  time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		dir = GinkgoT().TempDir()

		stub = rest.NewStubServer(rest.StubOptions{Secret: "test-secret", TokenTTL: time.Hour, Logger: logger.Discard()})
		Expect(stub.Store.AddUser("admin@campus.edu", "admin123", "admin", bcrypt.MinCost)).To(Succeed())
		server := httptest.NewServer(stub)
		DeferCleanup(server.Close)

		docs := make([]backendstub.Doc, 150)
		for i := range docs {
			docs[i] = backendstub.Doc{"name": "Room", "facility_type": "Classroom", "status": "Available", "capacity": int64(30)}
		}
		_, err := stub.Store.CreateMany("facilities", docs)
		Expect(err).NotTo(HaveOccurred())

		cfg := &internal.Config{
			API:     internal.APIConfig{BaseURL: server.URL},
			Session: internal.SessionConfig{Path: filepath.Join(dir, "session.json")},
		}
		cfg.ApplyDefaults()

		app, err = newApp(cfg, &bytes.Buffer{})
		Expect(err).NotTo(HaveOccurred())
		Expect(app.Init()).To(Succeed())
		DeferCleanup(func() { Expect(app.Teardown()).To(Succeed()) })

		_, err = app.Auth.Login(ctx, auth.LoginDTO{Email: "admin@campus.edu", Password: "admin123"})
		Expect(err).NotTo(HaveOccurred())
	})

	exported := func() []string {
		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		var names []string
		for _, e := range entries {
			if e.Name() != "session.json" {
				names = append(names, e.Name())
			}
		}
		return names
	}

	Describe("exportFacilities", func() {
		It("should write every page", func() {
			path, n, err := exportFacilities(ctx, app, "csv", dir, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(150))
			Expect(filepath.Base(path)).To(Equal("facilities_export_2026-03-02.csv"))

			content, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(string(content), "\n")).To(Equal(151))
		})

		It("should abort without writing a file when the backend fails", func() {
			stub.Faults.Fail(http.MethodGet, "/api/facilities", http.StatusServiceUnavailable, "maintenance window")

			_, _, err := exportFacilities(ctx, app, "xlsx", dir, day)
			Expect(err).To(MatchError(ContainSubstring("facilities export aborted")))
			Expect(apiclient.StatusOf(err)).To(Equal(http.StatusServiceUnavailable))
			Expect(exported()).To(BeEmpty())
		})
	})

	Describe("find", func() {
		var view *typedView[resource.Facility]

		BeforeEach(func() {
			view = &typedView[resource.Facility]{app: app, client: app.Facilities}
		})

		It("should find a record past the first page", func() {
			row, err := view.find(ctx, 140)
			Expect(err).NotTo(HaveOccurred())
			Expect(row.ID).To(Equal(int64(140)))
		})

		It("should report an unknown id as not found", func() {
			_, err := view.find(ctx, 999)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})

		It("should report the backend failure instead of not found", func() {
			stub.Faults.Fail(http.MethodGet, "/api/facilities", http.StatusInternalServerError, "database unavailable")

			_, err := view.find(ctx, 3)
			Expect(err).To(MatchError(ContainSubstring("failed to look up facilities 3")))
			Expect(err).To(MatchError(ContainSubstring("database unavailable")))
			Expect(apiclient.StatusOf(err)).To(Equal(http.StatusInternalServerError))
		})
	})
})
