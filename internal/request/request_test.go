package request_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/apiclient"
	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/internal/backendstub"
	"github.com/frahmantamala/campus-resources/internal/bulk"
	"github.com/frahmantamala/campus-resources/internal/listview"
	"github.com/frahmantamala/campus-resources/internal/request"
	"github.com/frahmantamala/campus-resources/internal/resource"
	resourcerest "github.com/frahmantamala/campus-resources/internal/resource/rest"
	"github.com/frahmantamala/campus-resources/internal/session"
	"github.com/frahmantamala/campus-resources/internal/transport/rest"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

func TestRequest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Request Suite")
}

var _ = Describe("Kind", func() {
	It("should derive paths and body keys", func() {
		Expect(request.KindBorrowing.Path()).To(Equal("/api/borrowing"))
		Expect(request.KindBooking.IDsField()).To(Equal("booking_ids"))
		Expect(request.KindAcquiring.IDField()).To(Equal("acquiring_id"))
		Expect(request.Kind("loans").Valid()).To(BeFalse())
	})
})

var _ = Describe("Requests against the backend", func() {
	var (
		stub        *rest.StubServer
		server      *httptest.Server
		api         *apiclient.Client
		borrowing   *resource.Client[request.Borrowing]
		booking     *resource.Client[request.Booking]
		acquiring   *resource.Client[request.Acquiring]
		transitions *request.Transitions
		loader      *request.Loader
	)

	BeforeEach(func() {
		stub = rest.NewStubServer(rest.StubOptions{Secret: "test-secret", TokenTTL: time.Hour, Logger: logger.Discard()})
		Expect(stub.Store.AddUser("admin@campus.edu", "admin123", "admin", bcrypt.MinCost)).To(Succeed())
		server = httptest.NewServer(stub)
		DeferCleanup(server.Close)

		sessions := session.NewStore(session.NewMemoryPersister(""), logger.Discard())
		Expect(sessions.Init()).To(Succeed())
		api = apiclient.New(server.URL, sessions, logger.Discard())
		authService := auth.NewService(api, sessions, logger.Discard())
		_, err := authService.Login(context.Background(), auth.LoginDTO{Email: "admin@campus.edu", Password: "admin123"})
		Expect(err).NotTo(HaveOccurred())
		stub.Recorder.Reset()

		borrowing = resource.NewClient[request.Borrowing]("borrowing", resourcerest.New[request.Borrowing](api, request.KindBorrowing.Path()), logger.Discard())
		booking = resource.NewClient[request.Booking]("booking", resourcerest.New[request.Booking](api, request.KindBooking.Path()), logger.Discard())
		acquiring = resource.NewClient[request.Acquiring]("acquiring", resourcerest.New[request.Acquiring](api, request.KindAcquiring.Path()), logger.Discard())
		transitions = request.NewTransitions(api, logger.Discard())
		loader = request.NewLoader(authService, borrowing, booking, acquiring, logger.Discard())
	})

	seedBorrowing := func(n int) {
		docs := make([]backendstub.Doc, n)
		for i := range docs {
			docs[i] = backendstub.Doc{
				"equipment_id":   int64(1),
				"equipment_name": "Projector",
				"requester_name": fmt.Sprintf("Borrower %d", i+1),
				"status":         request.StatusApproved,
			}
		}
		_, err := stub.Store.CreateMany("borrowing", docs)
		Expect(err).NotTo(HaveOccurred())
	}

	Describe("Loader", func() {
		It("should verify once and load the three lists", func() {
			seedBorrowing(2)
			snap, err := loader.LoadAll(context.Background(), resource.ListParams{Page: 1, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())

			Expect(snap.Identity.Role).To(Equal("admin"))
			Expect(snap.Borrowing.Total).To(Equal(2))
			Expect(snap.Booking.Data).To(BeEmpty())
			Expect(snap.Acquiring.Data).To(BeEmpty())
			Expect(stub.Recorder.CallsTo(http.MethodGet, "/api/auth/verify")).To(HaveLen(1))
			Expect(stub.Recorder.Calls()).To(HaveLen(4))
		})

		It("should degrade one failing list without touching the others", func() {
			seedBorrowing(1)
			stub.Faults.Fail(http.MethodGet, "/api/booking", http.StatusInternalServerError, "database unavailable")

			snap, err := loader.LoadAll(context.Background(), resource.ListParams{Page: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Booking.Data).To(BeEmpty())
			Expect(snap.Borrowing.Total).To(Equal(1))
		})

		It("should stop before listing when verify fails", func() {
			stub.Faults.Fail(http.MethodGet, "/api/auth/verify", http.StatusUnauthorized, "Could not validate credentials")

			_, err := loader.LoadAll(context.Background(), resource.ListParams{Page: 1})
			Expect(internal.IsUnauthenticated(err)).To(BeTrue())
			Expect(stub.Recorder.Calls()).To(HaveLen(1))
		})
	})

	Describe("marking the last page of borrowings returned", func() {
		It("should send one call with the page ids and the receiver, then re-fetch", func() {
			seedBorrowing(23)

			snap, err := loader.LoadAll(context.Background(), resource.ListParams{Page: 3, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Borrowing.Data).To(HaveLen(3))

			table := listview.NewTable[request.Borrowing](10, listview.ScopePage)
			table.GoTo(3)
			table.SetWindow(snap.Borrowing.Data, snap.Borrowing.Total)
			table.ToggleAll()
			Expect(table.Header()).To(Equal(listview.HeaderChecked))

			refetched := 0
			ctl := bulk.NewController(table, func(ctx context.Context) error {
				refetched++
				page := borrowing.List(ctx, resource.ListParams{Page: 3, PageSize: 10})
				table.SetWindow(page.Data, page.Total)
				return nil
			}, logger.Discard())

			outcome, err := ctl.Perform(context.Background(), bulk.Action{
				Name: "Mark returned",
				Run: func(ctx context.Context, ids []int64) error {
					return transitions.MarkReturned(ctx, ids, "J. Cruz")
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(bulk.OutcomeApplied))

			calls := stub.Recorder.CallsTo(http.MethodPost, "/api/borrowing/mark-returned")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].Body).To(Equal(map[string]any{
				"borrowing_ids": []any{21.0, 22.0, 23.0},
				"receiver_name": "J. Cruz",
			}))

			Expect(table.Selected()).To(BeEmpty())
			Expect(refetched).To(Equal(1))
			for _, row := range table.Visible() {
				Expect(row.Status).To(Equal(request.StatusReturned))
				Expect(row.ReceiverName).To(Equal("J. Cruz"))
			}
		})
	})

	Describe("Transitions", func() {
		It("should approve through bulk-update-status", func() {
			seedBorrowing(2)
			Expect(transitions.Approve(context.Background(), request.KindBorrowing, []int64{1, 2})).To(Succeed())

			calls := stub.Recorder.CallsTo(http.MethodPut, "/api/borrowing/bulk-update-status")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].Body).To(HaveKeyWithValue("status", request.StatusApproved))
		})

		It("should require a receiver before calling the backend", func() {
			err := transitions.MarkReturned(context.Background(), []int64{1}, "  ")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeRequiredField))
			Expect(stub.Recorder.Calls()).To(BeEmpty())
		})

		It("should only mark bookings and acquisitions done", func() {
			Expect(transitions.MarkDone(context.Background(), request.KindBorrowing, []int64{1})).To(HaveOccurred())
			Expect(stub.Recorder.Calls()).To(BeEmpty())
		})

		It("should confirm and revert reported returns", func() {
			seedBorrowing(1)
			Expect(stub.Store.UpdateMany("borrowing", []int64{1}, backendstub.Doc{"return_requested": true})).To(Succeed())

			Expect(transitions.RevertReturn(context.Background(), 1)).To(Succeed())
			doc, err := stub.Store.Get("borrowing", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc["return_requested"]).To(BeFalse())
			Expect(doc["status"]).To(Equal(request.StatusApproved))

			Expect(transitions.ConfirmReturn(context.Background(), 1)).To(Succeed())
			doc, err = stub.Store.Get("borrowing", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc["status"]).To(Equal(request.StatusReturned))
		})

		It("should refuse an empty selection", func() {
			Expect(transitions.Reject(context.Background(), request.KindBooking, nil)).To(MatchError(internal.ErrEmptySelection))
		})
	})
})
