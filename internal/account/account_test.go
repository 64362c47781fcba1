package account_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/account"
	"github.com/frahmantamala/campus-resources/internal/apiclient"
	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/internal/backendstub"
	"github.com/frahmantamala/campus-resources/internal/session"
	"github.com/frahmantamala/campus-resources/internal/transport/rest"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

func TestAccount(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Account Suite")
}

var _ = Describe("MapRoleToSystemRole", func() {
	DescribeTable("maps requested roles",
		func(requested, expected string) {
			Expect(account.MapRoleToSystemRole(requested)).To(Equal(expected))
		},
		Entry("admin", "Administrator", account.RoleAdmin),
		Entry("faculty", " Professor ", account.RoleFaculty),
		Entry("department head", "Department Head", account.RoleFaculty),
		Entry("staff", "Property Custodian", account.RoleStaff),
		Entry("student", "student", account.RoleStudent),
		Entry("unknown falls back to student", "astronaut", account.RoleStudent),
		Entry("empty falls back to student", "", account.RoleStudent),
	)
})

var _ = Describe("Approvals", func() {
	var (
		stub      *rest.StubServer
		approvals *account.Approvals
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		stub = rest.NewStubServer(rest.StubOptions{Secret: "test-secret", TokenTTL: time.Hour, Logger: logger.Discard()})
		Expect(stub.Store.AddUser("admin@campus.edu", "admin123", "admin", bcrypt.MinCost)).To(Succeed())
		server := httptest.NewServer(stub)
		DeferCleanup(server.Close)

		sessions := session.NewStore(session.NewMemoryPersister(""), logger.Discard())
		api := apiclient.New(server.URL, sessions, logger.Discard())
		_, err := auth.NewService(api, sessions, logger.Discard()).Login(ctx, auth.LoginDTO{Email: "admin@campus.edu", Password: "admin123"})
		Expect(err).NotTo(HaveOccurred())
		approvals = account.NewApprovals(api, logger.Discard())

		_, err = stub.Store.CreateMany("account-requests", []backendstub.Doc{
			{"email": "ana@campus.edu", "first_name": "Ana", "last_name": "Reyes", "department": "Physics", "requested_role": "Instructor", "status": "Pending"},
			{"email": "ben@campus.edu", "first_name": "Ben", "last_name": "Cruz", "department": "Registrar", "requested_role": "Clerk", "status": "Pending"},
		})
		Expect(err).NotTo(HaveOccurred())
		stub.Recorder.Reset()
	})

	It("should approve every selected request in one call with mapped roles", func() {
		requests := []account.AccountRequest{
			{ID: 1, RequestedRole: "Instructor"},
			{ID: 2, RequestedRole: "Clerk"},
		}
		Expect(approvals.Approve(ctx, requests)).To(Succeed())

		calls := stub.Recorder.CallsTo(http.MethodPost, "/api/account-requests/approve")
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].Body).To(Equal(map[string]any{"approvals": []any{
			map[string]any{"id": 1.0, "approved_acc_role": "faculty"},
			map[string]any{"id": 2.0, "approved_acc_role": "student"},
		}}))

		approved, err := stub.Store.Get("account-requests", 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(approved["approved_acc_role"]).To(Equal("faculty"))

		users, total, err := stub.Store.List("users", 1, 10, map[string]string{"email": "ana@campus.edu"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(1))
		Expect(users[0]["status"]).To(Equal("Active"))
	})

	It("should reject by id", func() {
		Expect(approvals.Reject(ctx, []int64{2})).To(Succeed())
		rejected, err := stub.Store.Get("account-requests", 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(rejected.String("status")).To(Equal(account.RequestStatusRejected))
	})

	It("should not call the backend for an empty selection", func() {
		Expect(approvals.Approve(ctx, nil)).To(MatchError(internal.ErrEmptySelection))
		Expect(approvals.Reject(ctx, nil)).To(MatchError(internal.ErrEmptySelection))
		Expect(stub.Recorder.Calls()).To(BeEmpty())
	})

	It("should surface unknown request ids", func() {
		err := approvals.Approve(ctx, []account.AccountRequest{{ID: 99, RequestedRole: "staff"}})
		Expect(apiclient.StatusOf(err)).To(Equal(http.StatusNotFound))
	})
})
